package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/domain"
)

// waitForResult polls a search until it reaches a terminal state or maxWait
// elapses. It returns (result, terminal status, nil) on a terminal outcome,
// (nil, last observed status, nil) when the budget ran out with the search
// still in flight, and a non-nil error only for infrastructure failures or
// a row that vanished mid-poll.
//
// Each iteration consults the cache before the database, so a result
// materialized by a concurrent submission is picked up without touching
// the row. maxWait is a soft bound: the iteration in flight when it
// expires still runs to completion.
func (s *Service) waitForResult(ctx context.Context, search *domain.Search, searchKey string, maxWait time.Duration) (*domain.SearchResult, domain.SearchStatus, error) {
	deadline := time.Now().Add(maxWait)
	lastStatus := search.Status

	for {
		if cached := s.cachedByID(ctx, search.ID); cached != nil {
			return cached, domain.SearchStatusCompleted, nil
		}

		row, err := s.repo.GetStatus(ctx, search.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, lastStatus, fmt.Errorf("search %s: %w", search.ID, domain.ErrNotFound)
			}
			return nil, lastStatus, fmt.Errorf("poll search status: %w", err)
		}
		lastStatus = row.Status

		switch row.Status {
		case domain.SearchStatusCompleted:
			result, err := s.assembleAndCache(ctx, search.ID, searchKey)
			if err != nil {
				return nil, lastStatus, err
			}
			return result, lastStatus, nil

		case domain.SearchStatusFailed:
			msg := ""
			if row.ErrorMessage != nil {
				msg = *row.ErrorMessage
			}
			return domain.NewFailedResult(search, msg), lastStatus, nil
		}

		if !time.Now().Add(s.cfg.PollInterval).Before(deadline) {
			return nil, lastStatus, nil
		}
		select {
		case <-ctx.Done():
			return nil, lastStatus, ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}
	}
}

// cachedByID returns the cached completed result for the id, or nil.
func (s *Service) cachedByID(ctx context.Context, id uuid.UUID) *domain.SearchResult {
	cached, err := s.cache.GetByID(ctx, id)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cache lookup failed",
			slog.String("search_id", id.String()),
			slog.String("error", err.Error()))
		return nil
	}
	if cached == nil || cached.Status != domain.SearchStatusCompleted {
		return nil
	}
	return cached
}

// assembleAndCache loads the full result for a completed search and writes
// it back to the cache. Failed results are never cached.
func (s *Service) assembleAndCache(ctx context.Context, id uuid.UUID, searchKey string) (*domain.SearchResult, error) {
	result, err := s.repo.AssembleResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("assemble result: %w", err)
	}

	if err := s.cache.Set(ctx, result, searchKey); err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "failed to cache result",
			slog.String("search_id", id.String()),
			slog.String("error", err.Error()))
	}
	return result, nil
}
