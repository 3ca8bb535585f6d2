// Package jobqueue implements a FIFO queue with visibility-timeout
// semantics against Redis, reproducing the externally-observed behavior of
// the RSMQ protocol (§4.6, §6 of the spec) rather than vendoring an RSMQ
// client: a sorted set of message ids scored by next-visible-at, and a hash
// of message bodies keyed by the same ids. A message becomes invisible to
// other receivers the instant it's received, and stays that way until
// deleted or its visibility window lapses.
package jobqueue

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/ethereum/go-ethereum/log"
)

// defaultReceiveVisibility is how long a message stays invisible right
// after Receive, before the worker has had a chance to call Touch with the
// job's actual duration. It only needs to outlast claim + deserialize.
// A var, not a const, so tests can shrink it instead of sleeping 30s.
var defaultReceiveVisibility = 30 * time.Second

// Queue is one named FIFO queue within a namespace, e.g. ns="rsmq",
// name="jobs_q" as the spec requires.
type Queue struct {
	rdb       *redis.Client
	namespace string
	name      string
}

// New wraps rdb for the queue ns:name. The caller owns rdb's lifecycle.
func New(rdb *redis.Client, namespace, name string) *Queue {
	return &Queue{rdb: rdb, namespace: namespace, name: name}
}

func (q *Queue) zkey() string { return q.namespace + ":" + q.name }
func (q *Queue) hkey() string { return q.namespace + ":" + q.name + ":Q" }

// CreateQueue recreates the queue's backing keys, deleting any stale
// entries from a previous run first — the spec's "delete then reinsert"
// startup purge; there is no crash-recovery contract.
func (q *Queue) CreateQueue(ctx context.Context) error {
	if err := q.DeleteQueue(ctx); err != nil {
		return err
	}
	log.Info("jobqueue: created queue", "namespace", q.namespace, "name", q.name)
	return nil
}

// DeleteQueue removes every message and the queue's bookkeeping keys.
func (q *Queue) DeleteQueue(ctx context.Context) error {
	return q.rdb.Del(ctx, q.zkey(), q.hkey()).Err()
}

// Send enqueues body, invisible to Receive for delay before becoming
// eligible, and returns an id unique within the queue's lifetime.
func (q *Queue) Send(ctx context.Context, body string, delay time.Duration) (string, error) {
	id := uuid.NewString()
	visibleAt := float64(time.Now().Add(delay).UnixMilli())
	pipe := q.rdb.TxPipeline()
	pipe.ZAdd(ctx, q.zkey(), &redis.Z{Score: visibleAt, Member: id})
	pipe.HSet(ctx, q.hkey(), id, body)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// receiveScript atomically pops the earliest message whose visibility
// deadline has passed and pushes its deadline out by ARGV[2] milliseconds,
// so no other Receive call can observe it until it's either deleted or its
// new deadline lapses. KEYS[1]=zset, KEYS[2]=hash, ARGV[1]=now (ms),
// ARGV[2]=new invisibility window (ms). Returns {id, body} or an empty array.
const receiveScript = `
local ids = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, 1)
if #ids == 0 then
	return {}
end
local id = ids[1]
redis.call("ZADD", KEYS[1], tonumber(ARGV[1]) + tonumber(ARGV[2]), id)
local body = redis.call("HGET", KEYS[2], id)
return {id, body}
`

var receive = redis.NewScript(receiveScript)

// Receive atomically dequeues the oldest visible message, if any, making it
// invisible to other receivers for defaultReceiveVisibility. found is false
// when the queue has no currently-visible message — callers should poll
// again rather than block, per the spec's "poll, no wait override" rule.
func (q *Queue) Receive(ctx context.Context) (id, body string, found bool, err error) {
	res, err := receive.Run(ctx, q.rdb, []string{q.zkey(), q.hkey()},
		time.Now().UnixMilli(), defaultReceiveVisibility.Milliseconds()).Result()
	if err != nil {
		return "", "", false, err
	}
	items, ok := res.([]interface{})
	if !ok || len(items) != 2 {
		return "", "", false, nil
	}
	id, _ = items[0].(string)
	body, _ = items[1].(string)
	return id, body, true, nil
}

// Touch extends id's visibility window to vt from now, replacing whatever
// window Receive set. Workers call this once they've deserialized the job
// and know its real duration, so a long-running job isn't redelivered out
// from under its claiming worker (spec §9, "visibility timeout vs. worker
// runtime").
func (q *Queue) Touch(ctx context.Context, id string, vt time.Duration) error {
	return q.rdb.ZAdd(ctx, q.zkey(), &redis.Z{
		Score:  float64(time.Now().Add(vt).UnixMilli()),
		Member: id,
	}).Err()
}

// Delete permanently removes id from both the visibility set and the body
// hash. Deleting an id that's already gone is not an error.
func (q *Queue) Delete(ctx context.Context, id string) error {
	pipe := q.rdb.TxPipeline()
	pipe.ZRem(ctx, q.zkey(), id)
	pipe.HDel(ctx, q.hkey(), id)
	_, err := pipe.Exec(ctx)
	return err
}
