package jobstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniaprotocol/node-benchmarking-service/model"
)

func newTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb), rdb
}

func TestSetAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "job-1", model.StatusPending))
	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got)
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "job-1", model.StatusAllocated))
	require.NoError(t, store.Delete(ctx, "job-1"))
	_, err := store.Get(ctx, "job-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestClaimIsExactlyOnce is the invariant I1 test: of many concurrent
// claimants racing the same pending job, exactly one observes success.
func TestClaimIsExactlyOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "job-1", model.StatusPending))

	const attempts = 20
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			ok, err := store.Claim(ctx, "job-1")
			assert.NoError(t, err)
			results <- ok
		}()
	}

	wins := 0
	for i := 0; i < attempts; i++ {
		if <-results {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one claimant should win the compare-and-set")

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAllocated, got)
}

func TestClaimFailsWhenNotPending(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "job-1", model.StatusAllocated))

	ok, err := store.Claim(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimFailsWhenAbsent(t *testing.T) {
	store, _ := newTestStore(t)
	ok, err := store.Claim(context.Background(), "never-existed")
	require.NoError(t, err)
	assert.False(t, ok)
}
