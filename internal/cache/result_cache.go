// Package cache maps search ids and canonical search keys to validated
// result payloads. All entries are advisory projections of the durable
// rows in Postgres: they may be evicted or found corrupt at any time, and
// a corrupt entry is deleted on read so it never serves garbage twice.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/painradar/painradar-backend/internal/domain"
)

// Key prefixes for the three projections of a completed result.
const (
	resultByIDPrefix  = "search:result:id:"
	resultByKeyPrefix = "search:result:key:"
	idByKeyPrefix     = "search:id:key:"
)

// store is the narrow slice of the cache client the result cache consumes.
type store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ResultCache is the two-tier result cache: by opaque search id and by
// canonical search key, plus a lightweight key→id mapping.
type ResultCache struct {
	store store
	ttl   time.Duration
	log   *slog.Logger
}

// New creates a ResultCache. ttl bounds the staleness of every projection.
func New(store store, ttl time.Duration, logger *slog.Logger) *ResultCache {
	return &ResultCache{
		store: store,
		ttl:   ttl,
		log:   logger.With("component", "result_cache"),
	}
}

// GetByID returns the cached result for a search id, or nil on a miss.
// A corrupt or shape-violating payload counts as a miss and is deleted.
func (c *ResultCache) GetByID(ctx context.Context, searchID uuid.UUID) (*domain.SearchResult, error) {
	return c.get(ctx, resultByIDPrefix+searchID.String())
}

// GetByKey returns the cached result for a canonical search key, or nil
// on a miss, with the same self-healing behavior as GetByID.
func (c *ResultCache) GetByKey(ctx context.Context, searchKey string) (*domain.SearchResult, error) {
	return c.get(ctx, resultByKeyPrefix+searchKey)
}

func (c *ResultCache) get(ctx context.Context, key string) (*domain.SearchResult, error) {
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}

	var result domain.SearchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.heal(ctx, key, err)
		return nil, nil
	}
	if err := result.Validate(); err != nil {
		c.heal(ctx, key, err)
		return nil, nil
	}

	return &result, nil
}

// heal deletes an entry that failed deserialization or shape validation so
// subsequent reads do not repeatedly pay the parse cost or serve garbage.
func (c *ResultCache) heal(ctx context.Context, key string, cause error) {
	c.log.WarnContext(ctx, "corrupt cache entry, deleting",
		slog.String("key", key),
		slog.String("cause", cause.Error()),
	)
	if err := c.store.Del(ctx, key); err != nil {
		c.log.WarnContext(ctx, "delete corrupt cache entry failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Set validates the result and writes the by-id projection, and, when
// searchKey is non-empty, the by-key projection. The two writes are
// independent: one failing does not prevent or roll back the other.
// Only an invalid payload is an error; store failures are logged and
// swallowed because every projection is advisory.
func (c *ResultCache) Set(ctx context.Context, result *domain.SearchResult, searchKey string) error {
	if result == nil {
		return fmt.Errorf("cache set: nil result")
	}
	if err := result.Validate(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache set: marshal: %w", err)
	}

	c.write(ctx, resultByIDPrefix+result.SearchID.String(), string(raw))
	if searchKey != "" {
		c.write(ctx, resultByKeyPrefix+searchKey, string(raw))
	}
	return nil
}

func (c *ResultCache) write(ctx context.Context, key, value string) {
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.log.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// SearchIDForKey returns the in-flight search id recorded for a canonical
// key, avoiding a full result read when only the identity is needed.
func (c *ResultCache) SearchIDForKey(ctx context.Context, searchKey string) (uuid.UUID, bool, error) {
	raw, found, err := c.store.Get(ctx, idByKeyPrefix+searchKey)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("cache get id for key: %w", err)
	}
	if !found {
		return uuid.Nil, false, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		c.heal(ctx, idByKeyPrefix+searchKey, err)
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

// SetSearchIDForKey records the key→id mapping. Best-effort: a store
// failure is logged, never propagated.
func (c *ResultCache) SetSearchIDForKey(ctx context.Context, searchKey string, searchID uuid.UUID) {
	c.write(ctx, idByKeyPrefix+searchKey, searchID.String())
}
