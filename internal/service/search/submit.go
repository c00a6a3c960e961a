package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/domain"
	"github.com/painradar/painradar-backend/pkg/ctxutil"
)

// reusableStatuses are the states in which an earlier search for the same
// key satisfies a new submission instead of spawning a duplicate job.
var reusableStatuses = []domain.SearchStatus{
	domain.SearchStatusPending,
	domain.SearchStatusProcessing,
	domain.SearchStatusCompleted,
}

// Submit runs one search request end to end: rate limiting, cache lookup,
// deduplication against recent searches, creation and worker hand-off when
// nothing is reusable, then a bounded wait for the outcome.
//
// The returned result is either a completed result (served from cache, an
// earlier search, or the worker finishing within the wait budget), a failed
// result carrying the stored error message, or an in-progress acknowledgment
// the caller can poll via Status.
func (s *Service) Submit(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	clientIP := ctxutil.ClientIPFromCtx(ctx)
	if clientIP == "" {
		clientIP = "unknown"
	}
	searchKey := domain.BuildSearchKey(req)

	if err := s.applyRateLimits(ctx, clientIP, searchKey); err != nil {
		return nil, err
	}

	if cached := s.cachedByKey(ctx, searchKey); cached != nil {
		s.log.LogAttrs(ctx, slog.LevelInfo, "search served from cache",
			slog.String("search_id", cached.SearchID.String()))
		return cached, nil
	}

	existing, err := s.findReusable(ctx, searchKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.reuseExisting(ctx, existing, searchKey)
	}

	return s.createAndWait(ctx, req, searchKey)
}

// cachedByKey returns the cached completed result for the key, or nil when
// there is none. Cache errors degrade to a miss.
func (s *Service) cachedByKey(ctx context.Context, searchKey string) *domain.SearchResult {
	cached, err := s.cache.GetByKey(ctx, searchKey)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cache lookup failed",
			slog.String("error", err.Error()))
		return nil
	}
	if cached == nil || cached.Status != domain.SearchStatusCompleted {
		return nil
	}
	return cached
}

// findReusable locates a recent non-failed search for the same key. It
// consults the cached key-to-id mapping first and falls back to the
// repository scan; a stale mapping pointing at a vanished row is ignored.
func (s *Service) findReusable(ctx context.Context, searchKey string) (*domain.Search, error) {
	since := time.Now().Add(-s.cfg.DedupWindow)

	if id, found, err := s.cache.SearchIDForKey(ctx, searchKey); err == nil && found {
		existing, err := s.repo.GetByID(ctx, id)
		switch {
		case err == nil:
			if !existing.CreatedAt.Before(since) && existing.Status != domain.SearchStatusFailed {
				return existing, nil
			}
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("load mapped search: %w", err)
		}
	}

	existing, err := s.repo.FindRecent(ctx, searchKey, reusableStatuses, since)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find recent search: %w", err)
	}
	return existing, nil
}

// reuseExisting serves a submission from an earlier search with the same
// key. A completed search is assembled under a short wait bound, since only
// the cache and result tables are involved. An in-flight one gets a
// re-trigger nudge, tolerated by the worker when the job is already
// running, and is acknowledged without waiting on it again.
func (s *Service) reuseExisting(ctx context.Context, existing *domain.Search, searchKey string) (*domain.SearchResult, error) {
	s.log.LogAttrs(ctx, slog.LevelInfo, "reusing recent search",
		slog.String("search_id", existing.ID.String()),
		slog.String("status", existing.Status.String()),
	)
	s.cache.SetSearchIDForKey(ctx, searchKey, existing.ID)

	if existing.Status != domain.SearchStatusCompleted {
		s.dispatchTrigger(ctx, existing.ID)
		return domain.NewPendingResult(existing), nil
	}

	result, lastStatus, err := s.waitForResult(ctx, existing, searchKey, s.cfg.ReusePollWait)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return s.acknowledge(existing, lastStatus), nil
}

// createAndWait inserts a new pending search, hands it to the worker without
// blocking on the hand-off, and waits out the poll budget for a terminal
// outcome.
func (s *Service) createAndWait(ctx context.Context, req domain.SearchRequest, searchKey string) (*domain.SearchResult, error) {
	created, err := s.repo.Insert(ctx, req, searchKey)
	if err != nil {
		return nil, fmt.Errorf("create search: %w", err)
	}
	s.log.LogAttrs(ctx, slog.LevelInfo, "search created",
		slog.String("search_id", created.ID.String()),
		slog.String("topic", created.Topic),
	)

	s.cache.SetSearchIDForKey(ctx, searchKey, created.ID)
	s.dispatchTrigger(ctx, created.ID)

	result, lastStatus, err := s.waitForResult(ctx, created, searchKey, s.cfg.PollMaxWait)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}
	return s.acknowledge(created, lastStatus), nil
}

// dispatchTrigger sends the search to the worker on a detached goroutine.
// The hand-off is fire-and-forget: delivery failure leaves the row pending
// for a later retry or cleanup, and is never surfaced to the submitter.
// Only a delivered trigger promotes the row to processing.
func (s *Service) dispatchTrigger(ctx context.Context, id uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		triggerCtx, cancel := context.WithTimeout(ctx, s.cfg.TriggerTimeout)
		defer cancel()
		if !s.trigger.Trigger(triggerCtx, id) {
			return
		}

		markCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := s.repo.MarkProcessing(markCtx, id); err != nil {
			s.log.LogAttrs(markCtx, slog.LevelError, "failed to mark search processing",
				slog.String("search_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// acknowledge builds the in-progress view returned when the wait budget ran
// out. lastStatus is the freshest status the poll observed; when the poll
// observed none, the row's stored status stands.
func (s *Service) acknowledge(existing *domain.Search, lastStatus domain.SearchStatus) *domain.SearchResult {
	view := *existing
	if lastStatus != "" {
		view.Status = lastStatus
	}
	return domain.NewPendingResult(&view)
}
