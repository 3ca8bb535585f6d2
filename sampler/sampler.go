// Package sampler draws payload references from a catalog by weighted-random
// selection, using cumulative-weight sampling: independent draws against a
// precomputed CDF, not a reservoir or rejection scheme.
package sampler

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/omniaprotocol/node-benchmarking-service/catalog"
)

// ErrInvalidCatalog is returned when a catalog's entries all carry zero
// weight, making a weighted draw meaningless.
var ErrInvalidCatalog = errors.New("sampler: catalog has zero total weight")

// Sampler draws indices into a fixed catalog via cumulative-weight sampling.
// It is not safe for concurrent use — callers that need concurrent sampling
// should give each goroutine its own Sampler over an independently-seeded
// *rand.Rand, since catalog entries are read-only and cheap to share but the
// RNG is not.
type Sampler struct {
	entries []catalog.Entry
	cdf     []uint64
	total   uint64
	rng     *rand.Rand
}

// New builds a Sampler over entries, seeded by rng. rng must be non-nil;
// callers that need determinism (tests) supply a seeded source, callers that
// don't can pass rand.New(rand.NewSource(time.Now().UnixNano())).
func New(entries []catalog.Entry, rng *rand.Rand) (*Sampler, error) {
	cdf := make([]uint64, len(entries))
	var running uint64
	for i, e := range entries {
		running += uint64(e.Weight)
		cdf[i] = running
	}
	if running == 0 {
		return nil, ErrInvalidCatalog
	}
	return &Sampler{entries: entries, cdf: cdf, total: running, rng: rng}, nil
}

// Sample draws n entries independently, each via a uniform pick in
// [0, total] mapped through the cumulative-weight array by binary search.
func (s *Sampler) Sample(n int) []catalog.Entry {
	out := make([]catalog.Entry, n)
	for i := 0; i < n; i++ {
		out[i] = s.entries[s.draw()]
	}
	return out
}

// draw picks a single weighted index: r uniform in [0, total], then the
// smallest i such that r <= cdf[i].
func (s *Sampler) draw() int {
	r := uint64(s.rng.Int63n(int64(s.total) + 1))
	return sort.Search(len(s.cdf), func(i int) bool { return r <= s.cdf[i] })
}
