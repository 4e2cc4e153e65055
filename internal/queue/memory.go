package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	msg      Message
	receives int
	deadline time.Time
	seq      int64
}

// InMemory is a process-local queue with the same redrive semantics as
// RedisQueue. Used for local runs and pipeline tests.
type InMemory struct {
	mu       sync.Mutex
	opts     Options
	clock    func() time.Time
	seq      int64
	visible  []string
	inFlight map[string]*memoryEntry
	entries  map[string]*memoryEntry
	dead     []string
	deadMsgs map[string]Message
}

// InMemoryOption configures an InMemory queue.
type InMemoryOption func(*InMemory)

// WithClock sets the clock used for visibility deadlines.
func WithClock(clock func() time.Time) InMemoryOption {
	return func(q *InMemory) {
		if clock != nil {
			q.clock = clock
		}
	}
}

func NewInMemory(opts Options, options ...InMemoryOption) *InMemory {
	q := &InMemory{
		opts:     opts.withDefaults(),
		clock:    time.Now,
		inFlight: make(map[string]*memoryEntry),
		entries:  make(map[string]*memoryEntry),
		deadMsgs: make(map[string]Message),
	}
	for _, opt := range options {
		opt(q)
	}
	return q
}

func (q *InMemory) Send(_ context.Context, msg Message) (string, error) {
	if msg.Type == "" {
		return "", ErrEmptyType
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if msg.SentAt.IsZero() {
		msg.SentAt = q.clock()
	}
	id := uuid.NewString()
	q.seq++
	q.entries[id] = &memoryEntry{msg: msg, seq: q.seq}
	q.visible = append(q.visible, id)
	return id, nil
}

func (q *InMemory) Receive(_ context.Context, max int) ([]Delivery, error) {
	if max <= 0 {
		max = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Delivery
	for len(out) < max && len(q.visible) > 0 {
		id := q.visible[0]
		q.visible = q.visible[1:]
		entry, ok := q.entries[id]
		if !ok {
			continue
		}
		entry.receives++
		entry.deadline = q.clock().Add(q.opts.VisibilityTimeout)
		q.inFlight[id] = entry
		out = append(out, Delivery{ID: id, Message: entry.msg, ReceiveCount: entry.receives})
	}
	return out, nil
}

func (q *InMemory) Ack(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, id)
	delete(q.entries, id)
	return nil
}

func (q *InMemory) Purge(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.visible = nil
	q.inFlight = make(map[string]*memoryEntry)
	q.entries = make(map[string]*memoryEntry)
	return nil
}

func (q *InMemory) Depth(_ context.Context) (Depth, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Depth{
		Visible:      int64(len(q.visible)),
		InFlight:     int64(len(q.inFlight)),
		DeadLettered: int64(len(q.dead)),
	}, nil
}

func (q *InMemory) Requeue(_ context.Context) (int, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.clock()
	var expired []string
	for id, entry := range q.inFlight {
		if !entry.deadline.After(now) {
			expired = append(expired, id)
		}
	}
	// Map iteration is random; keep redelivery in send order.
	sort.Slice(expired, func(i, j int) bool {
		return q.inFlight[expired[i]].seq < q.inFlight[expired[j]].seq
	})
	requeued, dead := 0, 0
	for _, id := range expired {
		entry := q.inFlight[id]
		delete(q.inFlight, id)
		if entry.receives >= q.opts.MaxReceives {
			delete(q.entries, id)
			q.dead = append(q.dead, id)
			q.deadMsgs[id] = entry.msg
			dead++
			continue
		}
		q.visible = append(q.visible, id)
		requeued++
	}
	return requeued, dead, nil
}

func (q *InMemory) RetryDeadLetters(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	moved := 0
	for _, id := range q.dead {
		msg := q.deadMsgs[id]
		delete(q.deadMsgs, id)
		q.seq++
		q.entries[id] = &memoryEntry{msg: msg, seq: q.seq}
		q.visible = append(q.visible, id)
		moved++
	}
	q.dead = nil
	return moved, nil
}

func (q *InMemory) PurgeDeadLetters(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = nil
	q.deadMsgs = make(map[string]Message)
	return nil
}

// Pending returns the visible messages in delivery order without claiming
// them.
func (q *InMemory) Pending() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, 0, len(q.visible))
	for _, id := range q.visible {
		if entry, ok := q.entries[id]; ok {
			out = append(out, entry.msg)
		}
	}
	return out
}
