package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/config"
	"github.com/painradar/painradar-backend/internal/domain"
	"github.com/painradar/painradar-backend/internal/ratelimit"
)

// searchRepo is the persistence surface the service needs from the
// searches repository.
type searchRepo interface {
	Insert(ctx context.Context, req domain.SearchRequest, searchKey string) (*domain.Search, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Search, error)
	GetStatus(ctx context.Context, id uuid.UUID) (*domain.StatusRow, error)
	FindRecent(ctx context.Context, searchKey string, statuses []domain.SearchStatus, since time.Time) (*domain.Search, error)
	AssembleResult(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
}

// resultCache is the read-through cache surface for assembled results.
type resultCache interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SearchResult, error)
	GetByKey(ctx context.Context, searchKey string) (*domain.SearchResult, error)
	Set(ctx context.Context, result *domain.SearchResult, searchKey string) error
	SearchIDForKey(ctx context.Context, searchKey string) (uuid.UUID, bool, error)
	SetSearchIDForKey(ctx context.Context, searchKey string, id uuid.UUID)
}

type rateLimiter interface {
	Apply(ctx context.Context, identifier string, maxRequests int, window time.Duration, prefix string) ratelimit.Decision
}

// jobTrigger hands a search off to the analysis worker. The boolean
// reports delivery only; trigger failures never carry an error.
type jobTrigger interface {
	Trigger(ctx context.Context, id uuid.UUID) bool
}

type Service struct {
	log     *slog.Logger
	repo    searchRepo
	cache   resultCache
	limiter rateLimiter
	trigger jobTrigger

	cfg    config.SearchConfig
	limits config.RateLimitConfig
}

func NewService(
	log *slog.Logger,
	repo searchRepo,
	cache resultCache,
	limiter rateLimiter,
	trigger jobTrigger,
	cfg config.SearchConfig,
	limits config.RateLimitConfig,
) *Service {
	return &Service{
		log:     log.With("service", "search"),
		repo:    repo,
		cache:   cache,
		limiter: limiter,
		trigger: trigger,
		cfg:     cfg,
		limits:  limits,
	}
}
