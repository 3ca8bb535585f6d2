// Package model holds the types shared across the benchmarking service: the
// submitted Job, its chain family, and the status-code domain the job store
// and queue agree on.
package model

import "fmt"

// Chain identifies the JSON-RPC dialect a Job's endpoint speaks.
type Chain string

const (
	ChainBTC Chain = "BTC"
	ChainEVM Chain = "EVM"
)

// Valid reports whether c is one of the chains the catalog has payloads for.
func (c Chain) Valid() bool {
	return c == ChainBTC || c == ChainEVM
}

// Job is a client-submitted benchmark request, as received on POST /jobs.
type Job struct {
	Chain         Chain  `json:"chain"`
	EndpointURL   string `json:"endpoint_url"`
	NumThreads    uint32 `json:"num_threads"`
	Duration      uint32 `json:"duration"`
	Authorization string `json:"authorization,omitempty"`
}

// Validate checks the fields the dispatcher must reject before admission.
// It does not check Chain — callers compare against the known chains
// explicitly so the "Unsupported chain" error message can name the value.
func (j Job) Validate() error {
	if j.EndpointURL == "" {
		return fmt.Errorf("endpoint_url is required")
	}
	if j.NumThreads == 0 {
		return fmt.Errorf("num_threads must be positive")
	}
	if j.Duration == 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

// StatusCode is the single signed integer the job store keeps per job-id.
// Its domain is fixed by the spec: -1 (PENDING) and 0 (ALLOCATED) are the
// non-terminal states, -2 is the failed state, and any positive value is a
// throughput count.
type StatusCode int64

const (
	// StatusPending marks a job admitted but not yet claimed by a worker.
	StatusPending StatusCode = -1
	// StatusAllocated marks a job claimed by a worker and currently running.
	StatusAllocated StatusCode = 0
	// StatusErrored marks a job whose failure ratio exceeded the threshold.
	StatusErrored StatusCode = -2
)

// Terminal reports whether s is a terminal status: ERRORED or FINISHED(N).
func (s StatusCode) Terminal() bool {
	return s == StatusErrored || s > StatusAllocated
}

// VerdictKind is the scorer's binary outcome.
type VerdictKind int

const (
	VerdictFinished VerdictKind = iota
	VerdictErrored
)

// Verdict is the scorer's output: a kind plus the associated count — the
// throughput for FINISHED, the failure count for ERRORED.
type Verdict struct {
	Kind  VerdictKind
	Count int64
}

// StatusCode maps a Verdict onto the job store's status-code domain.
func (v Verdict) StatusCode() StatusCode {
	if v.Kind == VerdictErrored {
		return StatusErrored
	}
	return StatusCode(v.Count)
}
