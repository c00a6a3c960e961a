package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore simulates the remote cache with real SETNX/INCR atomicity.
type fakeStore struct {
	mu       sync.Mutex
	counts   map[string]int64
	ttls     map[string]time.Duration
	failing  bool
	noTTL    bool // simulate INCR-created keys without expiration
	expireCt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
	}
}

var errStoreDown = errors.New("connection refused")

func (f *fakeStore) SetNX(_ context.Context, key, _ string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return false, errStoreDown
	}
	if _, ok := f.counts[key]; ok {
		return false, nil
	}
	f.counts[key] = 1
	if !f.noTTL {
		f.ttls[key] = ttl
	}
	return true, nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errStoreDown
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStoreDown
	}
	f.expireCt++
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, false, errStoreDown
	}
	ttl, ok := f.ttls[key]
	return ttl, ok, nil
}

func testLimiter(store *fakeStore) *Limiter {
	return New(store, slog.New(slog.DiscardHandler))
}

func TestApply_QuotaExhaustion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	l := testLimiter(store)

	const quota = 5
	for i := 1; i <= quota; i++ {
		d := l.Apply(ctx, "203.0.113.7", quota, time.Minute, "rl:ip")
		assert.True(t, d.Allowed, "call %d within quota must be allowed", i)
		assert.Equal(t, quota-i, d.Remaining, "remaining after call %d", i)
		assert.Equal(t, i, d.TotalHits)
	}

	d := l.Apply(ctx, "203.0.113.7", quota, time.Minute, "rl:ip")
	assert.False(t, d.Allowed, "call over quota must be denied")
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, quota+1, d.TotalHits)
}

func TestApply_FirstHitSetsWindowTTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	l := testLimiter(store)

	before := time.Now()
	d := l.Apply(ctx, "global", 100, time.Minute, "rl:global")

	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.TotalHits)
	assert.Equal(t, time.Minute, store.ttls["rl:global:global"])
	assert.WithinDuration(t, before.Add(time.Minute), d.ResetAt, time.Second)
}

func TestApply_IndependentIdentifiersAndPrefixes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	l := testLimiter(store)

	a := l.Apply(ctx, "203.0.113.7", 1, time.Minute, "rl:ip")
	b := l.Apply(ctx, "203.0.113.8", 1, time.Minute, "rl:ip")
	c := l.Apply(ctx, "203.0.113.7", 1, 24*time.Hour, "rl:ip:day")

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed, "different identifier is a different window")
	assert.True(t, c.Allowed, "different prefix is a different window")
}

func TestApply_ConcurrentFirstHits_ExactCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	l := testLimiter(store)

	const callers = 32
	decisions := make([]Decision, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decisions[i] = l.Apply(ctx, "hot-key", callers, time.Minute, "rl:topic")
		}()
	}
	wg.Wait()

	firstHits := 0
	seen := make(map[int]bool)
	for _, d := range decisions {
		require.True(t, d.Allowed)
		if d.TotalHits == 1 {
			firstHits++
		}
		assert.False(t, seen[d.TotalHits], "duplicate total %d: lost or double-counted hit", d.TotalHits)
		seen[d.TotalHits] = true
	}

	assert.Equal(t, 1, firstHits, "exactly one caller observes the first hit")
	assert.EqualValues(t, callers, store.counts["rl:topic:hot-key"])
}

func TestApply_MissingTTLGetsRepaired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	store.noTTL = true
	l := testLimiter(store)

	l.Apply(ctx, "id", 10, time.Minute, "rl:ip")
	d := l.Apply(ctx, "id", 10, time.Minute, "rl:ip")

	assert.True(t, d.Allowed)
	assert.Equal(t, 1, store.expireCt, "counter without TTL must be given one")
	assert.Equal(t, time.Minute, store.ttls["rl:ip:id"])
}

func TestApply_StoreDown_FailsClosed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFakeStore()
	store.failing = true
	l := testLimiter(store)

	d := l.Apply(ctx, "fresh-identifier", 100, time.Minute, "rl:ip")

	assert.False(t, d.Allowed, "store outage must deny even a first call")
	assert.Equal(t, 0, d.Remaining)
	assert.WithinDuration(t, time.Now().Add(time.Minute), d.ResetAt, time.Second)
}
