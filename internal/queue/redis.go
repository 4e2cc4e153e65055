package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// receiveScript pops up to ARGV[2] ids, marks them in flight until ARGV[1]
// and returns id, envelope, receive count triples.
var receiveScript = redis.NewScript(`
local out = {}
for i = 1, tonumber(ARGV[2]) do
  local id = redis.call('RPOP', KEYS[1])
  if not id then break end
  local body = redis.call('HGET', KEYS[3], id)
  if body then
    redis.call('ZADD', KEYS[2], ARGV[1], id)
    local n = redis.call('HINCRBY', KEYS[4], id, 1)
    table.insert(out, id)
    table.insert(out, body)
    table.insert(out, n)
  end
end
return out
`)

// requeueScript returns expired in-flight ids to the visible list, or to the
// dead-letter list once they reached ARGV[2] receives.
var requeueScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
local requeued, dead = 0, 0
for _, id in ipairs(expired) do
  redis.call('ZREM', KEYS[2], id)
  local n = tonumber(redis.call('HGET', KEYS[4], id) or '0')
  if n >= tonumber(ARGV[2]) then
    local body = redis.call('HGET', KEYS[3], id)
    if body then
      redis.call('HSET', KEYS[6], id, body)
      redis.call('LPUSH', KEYS[5], id)
    end
    redis.call('HDEL', KEYS[3], id)
    redis.call('HDEL', KEYS[4], id)
    dead = dead + 1
  else
    redis.call('LPUSH', KEYS[1], id)
    requeued = requeued + 1
  end
end
return {requeued, dead}
`)

// retryScript moves every dead-lettered message back onto the visible list
// with a fresh receive count.
var retryScript = redis.NewScript(`
local moved = 0
while true do
  local id = redis.call('RPOP', KEYS[5])
  if not id then break end
  local body = redis.call('HGET', KEYS[6], id)
  redis.call('HDEL', KEYS[6], id)
  if body then
    redis.call('HSET', KEYS[3], id, body)
    redis.call('HDEL', KEYS[4], id)
    redis.call('LPUSH', KEYS[1], id)
    moved = moved + 1
  end
end
return moved
`)

// RedisQueue is a durable queue on Redis lists, a sorted set of in-flight
// deadlines and hashes of envelopes. All keys of one queue share a hash tag
// so the scripts stay valid on a cluster.
type RedisQueue struct {
	client *redis.Client
	name   string
	opts   Options
	clock  func() time.Time
}

// NewRedis constructs a Redis-backed queue named name.
func NewRedis(client *redis.Client, name string, opts Options) *RedisQueue {
	return &RedisQueue{
		client: client,
		name:   name,
		opts:   opts.withDefaults(),
		clock:  time.Now,
	}
}

func (q *RedisQueue) key(part string) string {
	return "queue:{" + q.name + "}:" + part
}

func (q *RedisQueue) keys() []string {
	return []string{
		q.key("visible"),
		q.key("inflight"),
		q.key("bodies"),
		q.key("receives"),
		q.key("dlq"),
		q.key("dlq:bodies"),
	}
}

// Send enqueues msg and returns its id.
func (q *RedisQueue) Send(ctx context.Context, msg Message) (string, error) {
	if msg.Type == "" {
		return "", ErrEmptyType
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = q.clock()
	}
	envelope, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	id := uuid.NewString()
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.key("bodies"), id, envelope)
		pipe.LPush(ctx, q.key("visible"), id)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("send %s to %s: %w", msg.Type, q.name, err)
	}
	return id, nil
}

// Receive claims up to max visible messages.
func (q *RedisQueue) Receive(ctx context.Context, max int) ([]Delivery, error) {
	if max <= 0 {
		max = 1
	}
	deadline := q.clock().Add(q.opts.VisibilityTimeout).UnixMilli()
	raw, err := receiveScript.Run(ctx, q.client, q.keys(), deadline, max).Slice()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("receive from %s: %w", q.name, err)
	}
	deliveries := make([]Delivery, 0, len(raw)/3)
	for i := 0; i+2 < len(raw); i += 3 {
		id, _ := raw[i].(string)
		body, _ := raw[i+1].(string)
		count, _ := raw[i+2].(int64)

		var msg Message
		if err := json.Unmarshal([]byte(body), &msg); err != nil {
			return deliveries, fmt.Errorf("decode envelope %s: %w", id, err)
		}
		deliveries = append(deliveries, Delivery{ID: id, Message: msg, ReceiveCount: int(count)})
	}
	return deliveries, nil
}

// Ack deletes a delivered message.
func (q *RedisQueue) Ack(ctx context.Context, id string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, q.key("inflight"), id)
		pipe.HDel(ctx, q.key("bodies"), id)
		pipe.HDel(ctx, q.key("receives"), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ack %s on %s: %w", id, q.name, err)
	}
	return nil
}

// Purge drops every visible and in-flight message. The DLQ is kept for
// inspection.
func (q *RedisQueue) Purge(ctx context.Context) error {
	if err := q.client.Del(ctx, q.key("visible"), q.key("inflight"), q.key("bodies"), q.key("receives")).Err(); err != nil {
		return fmt.Errorf("purge %s: %w", q.name, err)
	}
	return nil
}

// Depth reports visible, in-flight and dead-lettered counts.
func (q *RedisQueue) Depth(ctx context.Context) (Depth, error) {
	var visible, inFlight, dead *redis.IntCmd
	_, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		visible = pipe.LLen(ctx, q.key("visible"))
		inFlight = pipe.ZCard(ctx, q.key("inflight"))
		dead = pipe.LLen(ctx, q.key("dlq"))
		return nil
	})
	if err != nil {
		return Depth{}, fmt.Errorf("depth of %s: %w", q.name, err)
	}
	return Depth{Visible: visible.Val(), InFlight: inFlight.Val(), DeadLettered: dead.Val()}, nil
}

// Requeue returns expired in-flight messages.
func (q *RedisQueue) Requeue(ctx context.Context) (int, int, error) {
	now := strconv.FormatInt(q.clock().UnixMilli(), 10)
	res, err := requeueScript.Run(ctx, q.client, q.keys(), now, q.opts.MaxReceives).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("requeue %s: %w", q.name, err)
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("requeue %s: unexpected reply %v", q.name, res)
	}
	return int(res[0]), int(res[1]), nil
}

// RetryDeadLetters moves dead-lettered messages back for another attempt.
func (q *RedisQueue) RetryDeadLetters(ctx context.Context) (int, error) {
	moved, err := retryScript.Run(ctx, q.client, q.keys()).Int()
	if err != nil {
		return 0, fmt.Errorf("retry dead letters of %s: %w", q.name, err)
	}
	return moved, nil
}

// PurgeDeadLetters drops the dead-letter queue.
func (q *RedisQueue) PurgeDeadLetters(ctx context.Context) error {
	if err := q.client.Del(ctx, q.key("dlq"), q.key("dlq:bodies")).Err(); err != nil {
		return fmt.Errorf("purge dead letters of %s: %w", q.name, err)
	}
	return nil
}
