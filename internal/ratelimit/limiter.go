// Package ratelimit implements a fixed-window counter over the remote
// cache store. Windows are anchored at first use: the first hit creates
// the counter with a TTL equal to the window, later hits increment it,
// and the key expiring resets the window implicitly.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// store is the slice of the cache client the limiter consumes.
type store interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, bool, error)
}

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	TotalHits int
	ResetAt   time.Time
}

// Limiter produces allow/deny decisions. It owns no granularity knowledge:
// callers compose it at any granularity by choosing prefix, quota, and
// window per call.
type Limiter struct {
	store store
	log   *slog.Logger
}

// New creates a Limiter.
func New(store store, logger *slog.Logger) *Limiter {
	return &Limiter{
		store: store,
		log:   logger.With("component", "ratelimit"),
	}
}

// Apply records one hit against {prefix}:{identifier} and decides whether
// it fits within maxRequests per window.
//
// The first hit in a window is claimed with an atomic SETNX carrying the
// window TTL, so concurrent first-hits serialize on the store: exactly one
// caller observes creation, everyone else falls into INCR and the count
// stays exact under a thundering herd.
//
// When the store is unavailable the limiter fails closed: denying traffic
// during an outage is preferred over admitting unbounded traffic.
func (l *Limiter) Apply(ctx context.Context, identifier string, maxRequests int, window time.Duration, prefix string) Decision {
	key := prefix + ":" + identifier
	now := time.Now()

	created, err := l.store.SetNX(ctx, key, "1", window)
	if err != nil {
		return l.failClosed(ctx, key, window, now, err)
	}

	if created {
		return Decision{
			Allowed:   maxRequests >= 1,
			Remaining: max(0, maxRequests-1),
			TotalHits: 1,
			ResetAt:   now.Add(window),
		}
	}

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return l.failClosed(ctx, key, window, now, err)
	}

	// INCR can recreate a key after the SETNX'd one expired mid-flight,
	// leaving a counter without a TTL. Give it one so it cannot become
	// an immortal window.
	ttl, hasTTL, err := l.store.TTL(ctx, key)
	if err != nil || !hasTTL {
		if expErr := l.store.Expire(ctx, key, window); expErr != nil {
			return l.failClosed(ctx, key, window, now, expErr)
		}
		ttl = window
	}

	hits := int(count)
	return Decision{
		Allowed:   hits <= maxRequests,
		Remaining: max(0, maxRequests-hits),
		TotalHits: hits,
		ResetAt:   now.Add(ttl),
	}
}

func (l *Limiter) failClosed(ctx context.Context, key string, window time.Duration, now time.Time, cause error) Decision {
	l.log.WarnContext(ctx, "rate limit store unavailable, failing closed",
		slog.String("key", key),
		slog.String("error", cause.Error()),
	)
	return Decision{
		Allowed:   false,
		Remaining: 0,
		TotalHits: 0,
		ResetAt:   now.Add(window),
	}
}
