package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/painradar/painradar-backend/internal/config"
	"github.com/painradar/painradar-backend/internal/domain"
)

// Key prefixes keep the four limiter granularities in disjoint counter
// namespaces.
const (
	rlGlobalPrefix  = "rl:global"
	rlIPPrefix      = "rl:ip"
	rlIPDailyPrefix = "rl:ip:day"
	rlTopicPrefix   = "rl:topic"
)

// globalIdentifier is the single shared counter key for the global quota.
const globalIdentifier = "all"

// applyRateLimits runs the limiter chain for one submission: the shared
// global quota, then both per-client quotas, then the per-search-key quota.
// The first denial wins and later granularities are not consulted, so a
// denied request consumes budget only from the granularities checked before
// the denying one.
func (s *Service) applyRateLimits(ctx context.Context, clientIP, searchKey string) error {
	checks := []struct {
		scope      domain.RateLimitScope
		identifier string
		limit      config.LimitConfig
		prefix     string
	}{
		{domain.RateLimitScopeGlobal, globalIdentifier, s.limits.Global(), rlGlobalPrefix},
		{domain.RateLimitScopeIP, clientIP, s.limits.PerIP(), rlIPPrefix},
		{domain.RateLimitScopeIPDaily, clientIP, s.limits.PerIPDaily(), rlIPDailyPrefix},
		{domain.RateLimitScopeTopic, searchKey, s.limits.PerTopic(), rlTopicPrefix},
	}

	for _, c := range checks {
		d := s.limiter.Apply(ctx, c.identifier, c.limit.Max, c.limit.Window, c.prefix)
		if d.Allowed {
			continue
		}

		retryAfter := time.Until(d.ResetAt)
		if retryAfter < 0 {
			retryAfter = 0
		}
		s.log.LogAttrs(ctx, slog.LevelWarn, "rate limit exceeded",
			slog.String("scope", string(c.scope)),
			slog.Int("total_hits", d.TotalHits),
			slog.Duration("retry_after", retryAfter),
		)
		return &domain.RateLimitError{Scope: c.scope, RetryAfter: retryAfter}
	}
	return nil
}
