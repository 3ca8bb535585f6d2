// Package loadgen runs N parallel HTTP request streams against a target
// endpoint for a fixed wall-clock duration, tallying successes and failures
// per stream and summing them on completion.
package loadgen

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/omniaprotocol/node-benchmarking-service/catalog"
)

// Config describes one load-generation run.
type Config struct {
	URL           string
	Authorization string
	NumThreads    int
	Duration      time.Duration
	Payloads      []catalog.Entry // circular, shared read-only across streams
	Client        *http.Client    // shared connection pool; must be non-nil
}

// Result is the aggregate outcome across every stream, as floating-point
// counts per the scorer's contract.
type Result struct {
	OK   float64
	Fail float64
}

// Run launches exactly cfg.NumThreads concurrent streams against cfg.URL and
// returns once every stream has observed the deadline and its in-flight
// request (if any) has completed. ctx cancellation (process shutdown) aborts
// in-flight requests immediately; ordinary deadline expiry does not — a
// request already in flight when cfg.Duration elapses is allowed to finish,
// per the spec's "no pre-check of request duration" rule.
func Run(ctx context.Context, cfg Config) Result {
	deadline := time.Now().Add(cfg.Duration)

	type streamResult struct{ ok, fail float64 }
	results := make(chan streamResult, cfg.NumThreads)

	var wg sync.WaitGroup
	wg.Add(cfg.NumThreads)
	for i := 0; i < cfg.NumThreads; i++ {
		go func() {
			defer wg.Done()
			ok, fail := runStream(ctx, cfg, deadline)
			results <- streamResult{ok, fail}
		}()
	}
	wg.Wait()
	close(results)

	var total Result
	for r := range results {
		total.OK += r.ok
		total.Fail += r.fail
	}
	return total
}

// runStream advances a local index into cfg.Payloads on every iteration,
// issuing one POST per iteration until the wall-clock deadline passes or ctx
// is cancelled. A request in flight when the deadline fires runs to
// completion; only process shutdown (ctx) aborts it mid-flight.
func runStream(ctx context.Context, cfg Config, deadline time.Time) (ok, fail float64) {
	idx := 0
	n := len(cfg.Payloads)
	for {
		if time.Now().After(deadline) {
			return ok, fail
		}
		select {
		case <-ctx.Done():
			return ok, fail
		default:
		}

		payload := cfg.Payloads[idx]
		idx = (idx + 1) % n

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(payload.Payload))
		if err != nil {
			log.Error("loadgen: failed to build request", "err", err)
			fail++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		if cfg.Authorization != "" {
			req.Header.Set("Authorization", cfg.Authorization)
		}

		resp, err := cfg.Client.Do(req)
		if err != nil {
			fail++
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			ok++
		} else {
			fail++
		}
		resp.Body.Close()
	}
}
