package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/domain"
)

// Status returns the current view of a search by id: the full result when
// it completed, the stored error when it failed, and a bare status
// acknowledgment while it is still in flight.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error) {
	if cached := s.cachedByID(ctx, id); cached != nil {
		return cached, nil
	}

	search, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get search: %w", err)
	}

	switch search.Status {
	case domain.SearchStatusCompleted:
		// The row carries the normalized request, so the cache key can be
		// rebuilt for the by-key projection.
		searchKey := domain.BuildSearchKey(domain.SearchRequest{
			Topic:      search.Topic,
			Tags:       search.Tags,
			TimeRange:  search.TimeRange,
			MinUpvotes: search.MinUpvotes,
			SortBy:     search.SortBy,
		})
		return s.assembleAndCache(ctx, id, searchKey)

	case domain.SearchStatusFailed:
		msg := ""
		if search.ErrorMessage != nil {
			msg = *search.ErrorMessage
		}
		return domain.NewFailedResult(search, msg), nil

	default:
		return domain.NewPendingResult(search), nil
	}
}
