// Package worker implements the claim/execute/score/publish loop that turns
// one queued job into a terminal status code, and a Pool that supervises
// many such loops concurrently. Structured logging and counters follow the
// shape of the teacher's mining loop (miner/worker.go): key-value log lines
// and registered metrics rather than ad-hoc printf/expvar.
package worker

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/omniaprotocol/node-benchmarking-service/catalog"
	"github.com/omniaprotocol/node-benchmarking-service/jobqueue"
	"github.com/omniaprotocol/node-benchmarking-service/jobstore"
	"github.com/omniaprotocol/node-benchmarking-service/loadgen"
	"github.com/omniaprotocol/node-benchmarking-service/model"
	"github.com/omniaprotocol/node-benchmarking-service/sampler"
	"github.com/omniaprotocol/node-benchmarking-service/scorer"
)

var (
	jobsClaimedCounter  = metrics.NewRegisteredCounter("worker/jobs/claimed", nil)
	jobsLostCounter     = metrics.NewRegisteredCounter("worker/jobs/lost", nil)
	jobsFinishedCounter = metrics.NewRegisteredCounter("worker/jobs/finished", nil)
	jobsErroredCounter  = metrics.NewRegisteredCounter("worker/jobs/errored", nil)
	jobRunTimer         = metrics.NewRegisteredTimer("worker/job/duration", nil)

	// emptyPollInterval is how long an idle worker sleeps after an empty
	// Receive before polling again, so an empty queue doesn't spin a core.
	emptyPollInterval = 500 * time.Millisecond
)

// Worker runs a single infinite claim/execute loop against one shared queue
// and store. It is not safe to run the same Worker value from two
// goroutines; Pool creates one Worker per goroutine instead.
type Worker struct {
	id        int
	queue     *jobqueue.Queue
	store     *jobstore.Store
	threshold float64
	client    *http.Client
	rng       *rand.Rand
}

// New builds one worker. threshold is the failure-ratio percentage at or
// above which a job is scored ERRORED (spec §4.4). client is shared across jobs
// this worker executes; callers typically share one *http.Client across all
// workers in a Pool for connection reuse.
func New(id int, queue *jobqueue.Queue, store *jobstore.Store, threshold float64, client *http.Client) *Worker {
	return &Worker{
		id:        id,
		queue:     queue,
		store:     store,
		threshold: threshold,
		client:    client,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
	}
}

// Run loops claiming and executing jobs until ctx is cancelled. Each
// iteration is the eight-step sequence from spec §4.7: receive, deserialize,
// touch the visibility window, claim (CAS), sample a payload stream,
// generate load, score, and publish the terminal status plus delete the
// queue message.
func (w *Worker) Run(ctx context.Context) {
	log.Info("worker: started", "id", w.id)
	for {
		select {
		case <-ctx.Done():
			log.Info("worker: stopped", "id", w.id)
			return
		default:
		}

		id, body, found, err := w.queue.Receive(ctx)
		if err != nil {
			log.Error("worker: receive failed", "id", w.id, "err", err)
			sleep(ctx, emptyPollInterval)
			continue
		}
		if !found {
			sleep(ctx, emptyPollInterval)
			continue
		}

		w.process(ctx, id, body)
	}
}

// process executes a single claimed job to completion. It never returns an
// error: every failure is logged and, where possible, reflected in the job's
// terminal status so a caller polling GET /jobs/{id} never hangs forever.
func (w *Worker) process(ctx context.Context, id, body string) {
	var job model.Job
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		log.Error("worker: malformed job body, dropping", "id", w.id, "jobID", id, "err", err)
		_ = w.queue.Delete(ctx, id)
		return
	}

	// Extend the visibility window to comfortably outlast the job's own
	// run time before doing anything else, so a slow claim step can't let
	// another worker redeliver the same message mid-run (spec §9).
	if err := w.queue.Touch(ctx, id, time.Duration(job.Duration)*time.Second+emptyPollInterval*4); err != nil {
		log.Warn("worker: failed to extend visibility", "id", w.id, "jobID", id, "err", err)
	}

	claimed, err := w.store.Claim(ctx, id)
	if err != nil {
		log.Error("worker: claim failed", "id", w.id, "jobID", id, "err", err)
		return
	}
	if !claimed {
		// Another worker already won this job's CAS (I1). The original
		// claimant remains responsible for it and may still be mid-run;
		// deleting the queue entry here would violate I3 (a queue entry is
		// only deleted once its store entry is terminal). Skip without
		// deleting and defer to the next dispatch cycle (spec §4.7 step 2).
		jobsLostCounter.Inc(1)
		return
	}
	jobsClaimedCounter.Inc(1)
	log.Info("worker: claimed job", "id", w.id, "jobID", id, "chain", job.Chain, "threads", job.NumThreads, "duration", job.Duration)

	entries := catalog.For(job.Chain)
	smp, err := sampler.New(entries, w.rng)
	if err != nil {
		log.Error("worker: invalid catalog", "id", w.id, "jobID", id, "err", err)
		w.publish(ctx, id, model.Verdict{Kind: model.VerdictErrored, Count: 0})
		return
	}
	payloads := smp.Sample(int(job.Duration) * 2000)

	start := time.Now()
	result := loadgen.Run(ctx, loadgen.Config{
		URL:           job.EndpointURL,
		Authorization: job.Authorization,
		NumThreads:    int(job.NumThreads),
		Duration:      time.Duration(job.Duration) * time.Second,
		Payloads:      payloads,
		Client:        w.client,
	})
	jobRunTimer.UpdateSince(start)

	verdict := scorer.Score(result.OK, result.Fail, w.threshold)
	log.Info("worker: job finished", "id", w.id, "jobID", id, "ok", result.OK, "fail", result.Fail, "verdict", verdict.Kind, "count", verdict.Count)
	if verdict.Kind == model.VerdictErrored {
		jobsErroredCounter.Inc(1)
	} else {
		jobsFinishedCounter.Inc(1)
	}

	w.publish(ctx, id, verdict)
}

// publish writes the job's terminal status and removes it from the queue.
// Status is written before the queue delete, and the delete is skipped if
// the write fails (I3), so a crash between the two still leaves a queryable
// terminal status (spec's single-writer-per-phase rule) — at worst the
// message is redelivered, and the claim CAS then skips it because its status
// is no longer PENDING.
func (w *Worker) publish(ctx context.Context, id string, verdict model.Verdict) {
	if err := w.store.Set(ctx, id, verdict.StatusCode()); err != nil {
		log.Error("worker: failed to publish status", "jobID", id, "err", err)
		return
	}
	if err := w.queue.Delete(ctx, id); err != nil {
		log.Error("worker: failed to delete job from queue", "jobID", id, "err", err)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Pool supervises N workers sharing one queue, store, and HTTP client.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool builds n workers, each with its own claim/execute loop but all
// sharing client for connection pooling.
func NewPool(n int, queue *jobqueue.Queue, store *jobstore.Store, threshold float64, client *http.Client) *Pool {
	p := &Pool{workers: make([]*Worker, n)}
	for i := 0; i < n; i++ {
		p.workers[i] = New(i, queue, store, threshold, client)
	}
	return p
}

// Start launches every worker's loop in its own goroutine and returns
// immediately; call Wait to block until ctx cancellation drains them all.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		w := w
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Wait blocks until every worker goroutine has returned, which only happens
// after ctx is cancelled.
func (p *Pool) Wait() {
	p.wg.Wait()
}
