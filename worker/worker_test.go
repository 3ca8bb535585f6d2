package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniaprotocol/node-benchmarking-service/jobqueue"
	"github.com/omniaprotocol/node-benchmarking-service/jobstore"
	"github.com/omniaprotocol/node-benchmarking-service/model"
)

func newHarness(t *testing.T) (*jobqueue.Queue, *jobstore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return jobqueue.New(rdb, "rsmq", "jobs_q"), jobstore.New(rdb)
}

func TestWorkerHappyPathFinishes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	queue, store := newHarness(t)
	ctx := context.Background()

	job := model.Job{Chain: model.ChainEVM, EndpointURL: srv.URL, NumThreads: 2, Duration: 1}
	body, err := json.Marshal(job)
	require.NoError(t, err)

	id, err := queue.Send(ctx, string(body), 0)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, id, model.StatusPending))

	w := New(0, queue, store, 5, srv.Client())

	msgID, msgBody, found, err := queue.Receive(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, msgID)

	w.process(ctx, msgID, msgBody)

	status, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, status.Terminal())
	assert.True(t, status > model.StatusAllocated, "expected a FINISHED throughput count, got %d", status)

	_, _, found, err = queue.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, found, "queue entry should be deleted after processing")
}

func TestWorkerAllFailuresErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	queue, store := newHarness(t)
	ctx := context.Background()

	job := model.Job{Chain: model.ChainBTC, EndpointURL: srv.URL, NumThreads: 1, Duration: 1}
	body, err := json.Marshal(job)
	require.NoError(t, err)

	id, err := queue.Send(ctx, string(body), 0)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, id, model.StatusPending))

	w := New(0, queue, store, 5, srv.Client())
	msgID, msgBody, found, err := queue.Receive(ctx)
	require.NoError(t, err)
	require.True(t, found)

	w.process(ctx, msgID, msgBody)

	status, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusErrored, status)
}

func TestWorkerMalformedBodyIsDropped(t *testing.T) {
	queue, store := newHarness(t)
	ctx := context.Background()

	id, err := queue.Send(ctx, "not json", 0)
	require.NoError(t, err)

	w := New(0, queue, store, 5, http.DefaultClient)
	msgID, msgBody, found, err := queue.Receive(ctx)
	require.NoError(t, err)
	require.True(t, found)

	w.process(ctx, msgID, msgBody)

	_, _, found, err = queue.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, found, "malformed job should be dropped from the queue")
}

func TestWorkerLosingClaimDoesNotDeleteQueueEntry(t *testing.T) {
	queue, store := newHarness(t)
	ctx := context.Background()

	job := model.Job{Chain: model.ChainEVM, EndpointURL: "http://unused", NumThreads: 1, Duration: 1}
	body, err := json.Marshal(job)
	require.NoError(t, err)

	id, err := queue.Send(ctx, string(body), 0)
	require.NoError(t, err)
	// Simulate another worker having already won the claim: the store
	// entry is ALLOCATED (0), not PENDING, so this worker's CAS must fail.
	require.NoError(t, store.Set(ctx, id, model.StatusAllocated))

	w := New(0, queue, store, 5, http.DefaultClient)
	msgID, msgBody, found, err := queue.Receive(ctx)
	require.NoError(t, err)
	require.True(t, found)

	w.process(ctx, msgID, msgBody)

	// The queue entry must survive a lost claim: I3 forbids deleting it
	// before the store entry reaches a terminal state, and the original
	// claimant remains responsible for eventually publishing one.
	status, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAllocated, status, "losing worker must not touch the store entry")

	// Make the message visible again right away; it must still be queued
	// with its original body.
	require.NoError(t, queue.Touch(ctx, id, 0))
	gotID, gotBody, found, err := queue.Receive(ctx)
	require.NoError(t, err)
	require.True(t, found, "losing worker must not delete the queue entry")
	assert.Equal(t, id, gotID)
	assert.Equal(t, string(body), gotBody)
}

func TestPoolStartAndWaitRespectsCancellation(t *testing.T) {
	queue, store := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	pool := NewPool(3, queue, store, 5, http.DefaultClient)
	pool.Start(ctx)

	time.Sleep(10 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not drain after context cancellation")
	}
}
