// Package jobstore is the key/value map from job-id to status code (§4.5 of
// the spec), backed by Redis. The store performs no multi-key transactions;
// I1 is enforced by Claim's single-key compare-and-set, and I2 by the
// single-key monotonic writes its callers perform, one owning component per
// phase.
package jobstore

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/omniaprotocol/node-benchmarking-service/model"
)

// ErrNotFound is returned by Get when the job-id is absent — either never
// admitted, or already reaped by a prior terminal read.
var ErrNotFound = errors.New("jobstore: job not found")

// Store wraps a Redis client for plain GET/SET/DEL on job-ids.
type Store struct {
	rdb *redis.Client
}

// New wraps an existing Redis client. The caller owns the client's lifecycle.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Set unconditionally writes status for id. Used by the dispatcher (PENDING)
// and by the worker (terminal) — each the sole writer for its phase, per the
// spec's ownership rule. The worker's ALLOCATED write goes through Claim.
func (s *Store) Set(ctx context.Context, id string, status model.StatusCode) error {
	return s.rdb.Set(ctx, id, int64(status), 0).Err()
}

// Get reads the current status for id. A missing key (redis.Nil) is
// reported as ErrNotFound so callers don't need to import go-redis just to
// check for it.
func (s *Store) Get(ctx context.Context, id string) (model.StatusCode, error) {
	v, err := s.rdb.Get(ctx, id).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return model.StatusCode(v), nil
}

// Delete removes id. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, id).Err()
}

// claimScript atomically transitions id from PENDING to ALLOCATED: it sets
// the value to 0 only if the current value is exactly -1, closing the
// claim-race window the source's unconditional SET left open (spec §9).
// KEYS[1] = job id. Returns 1 if the claim succeeded, 0 otherwise.
const claimScript = `
local current = redis.call("GET", KEYS[1])
if current == false then
	return 0
end
if tonumber(current) ~= -1 then
	return 0
end
redis.call("SET", KEYS[1], "0")
return 1
`

var claim = redis.NewScript(claimScript)

// Claim attempts the exactly-once PENDING->ALLOCATED transition for id. It
// reports true only for the single worker whose compare-and-set won the
// race; every other concurrent caller observes false and must not touch id
// further (I1).
func (s *Store) Claim(ctx context.Context, id string) (bool, error) {
	res, err := claim.Run(ctx, s.rdb, []string{id}).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
