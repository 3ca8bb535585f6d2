package sampler

import (
	"math/rand"
	"testing"

	"github.com/omniaprotocol/node-benchmarking-service/catalog"
	"github.com/stretchr/testify/assert"
)

func TestNewRejectsZeroWeightCatalog(t *testing.T) {
	entries := []catalog.Entry{
		{Method: "a", Weight: 0},
		{Method: "b", Weight: 0},
	}
	_, err := New(entries, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestSampleOnlyEverDrawsCatalogEntries(t *testing.T) {
	entries := []catalog.Entry{
		{Method: "a", Weight: 1},
		{Method: "b", Weight: 9},
	}
	s, err := New(entries, rand.New(rand.NewSource(42)))
	assert.NoError(t, err)

	drawn := s.Sample(2000)
	assert.Len(t, drawn, 2000)

	counts := map[string]int{}
	for _, e := range drawn {
		counts[e.Method]++
		assert.Contains(t, []string{"a", "b"}, e.Method)
	}
	// With a 1:9 weight split over 2000 draws, "b" should dominate heavily;
	// a loose bound keeps this from being a flaky statistical test.
	assert.Greater(t, counts["b"], counts["a"])
}

func TestSampleWithSingleEntryAlwaysReturnsIt(t *testing.T) {
	entries := []catalog.Entry{{Method: "only", Weight: 5}}
	s, err := New(entries, rand.New(rand.NewSource(7)))
	assert.NoError(t, err)

	for _, e := range s.Sample(50) {
		assert.Equal(t, "only", e.Method)
	}
}
