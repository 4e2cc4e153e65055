package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	messagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prisoner_search_queue_messages_total",
		Help: "Messages handled by queue workers by queue, type and outcome",
	}, []string{"queue", "type", "outcome"})

	messagesRedriven = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prisoner_search_queue_redriven_total",
		Help: "Expired in-flight messages returned to the queue or dead-lettered",
	}, []string{"queue", "destination"})
)

// Handler processes one delivery. Returning an error leaves the message
// unacknowledged so the queue redrives it after the visibility timeout.
type Handler interface {
	Handle(ctx context.Context, d Delivery) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, d Delivery) error

func (f HandlerFunc) Handle(ctx context.Context, d Delivery) error { return f(ctx, d) }

// Router dispatches deliveries to handlers registered per message type.
type Router struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	return &Router{handlers: make(map[string]Handler), logger: logger}
}

// Register adds a handler for a message type.
func (r *Router) Register(msgType string, h Handler) {
	r.handlers[msgType] = h
}

// Handle routes the delivery to its type's handler.
func (r *Router) Handle(ctx context.Context, d Delivery) error {
	h, ok := r.handlers[d.Message.Type]
	if !ok {
		r.logger.WarnContext(ctx, "no handler for message type, dropping message",
			"type", d.Message.Type,
			"message_id", d.ID,
		)
		return nil // Ack to avoid redelivery
	}
	return h.Handle(ctx, d)
}

// Worker polls a queue with a fixed number of goroutines. Workers share no
// state: each delivery is handled independently.
type Worker struct {
	name         string
	queue        Queue
	handler      Handler
	concurrency  int
	pollInterval time.Duration
	reapInterval time.Duration
	logger       *slog.Logger
}

type WorkerOption func(*Worker)

func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithReapInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.reapInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(name string, q Queue, handler Handler, opts ...WorkerOption) *Worker {
	w := &Worker{
		name:         name,
		queue:        q,
		handler:      handler,
		concurrency:  1,
		pollInterval: 500 * time.Millisecond,
		reapInterval: 5 * time.Second,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for range w.concurrency {
		g.Go(func() error { return w.poll(ctx) })
	}
	if reaper, ok := w.queue.(Reaper); ok {
		g.Go(func() error { return w.reap(ctx, reaper) })
	}
	return g.Wait()
}

// ProcessAvailable handles messages until none are visible, including
// messages enqueued by the handlers themselves. Returns the number handled.
func (w *Worker) ProcessAvailable(ctx context.Context) (int, error) {
	handled := 0
	for {
		deliveries, err := w.queue.Receive(ctx, w.concurrency)
		if err != nil {
			return handled, err
		}
		if len(deliveries) == 0 {
			return handled, nil
		}
		for _, d := range deliveries {
			w.process(ctx, d)
			handled++
		}
	}
}

func (w *Worker) poll(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		deliveries, err := w.queue.Receive(ctx, 1)
		if err != nil {
			w.logger.WarnContext(ctx, "queue receive failed", "queue", w.name, "error", err)
		}
		if len(deliveries) == 0 {
			if !sleep(ctx, w.pollInterval) {
				return ctx.Err()
			}
			continue
		}
		for _, d := range deliveries {
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d Delivery) {
	if err := w.handler.Handle(ctx, d); err != nil {
		messagesHandled.WithLabelValues(w.name, d.Message.Type, "failed").Inc()
		w.logger.ErrorContext(ctx, "message handling failed, leaving for redrive",
			"queue", w.name,
			"type", d.Message.Type,
			"message_id", d.ID,
			"receive_count", d.ReceiveCount,
			"error", err,
		)
		return
	}
	messagesHandled.WithLabelValues(w.name, d.Message.Type, "ok").Inc()
	if err := w.queue.Ack(ctx, d.ID); err != nil {
		w.logger.WarnContext(ctx, "message ack failed", "queue", w.name, "message_id", d.ID, "error", err)
	}
}

func (w *Worker) reap(ctx context.Context, reaper Reaper) error {
	ticker := time.NewTicker(w.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			requeued, dead, err := reaper.Requeue(ctx)
			if err != nil {
				w.logger.WarnContext(ctx, "queue requeue failed", "queue", w.name, "error", err)
				continue
			}
			if requeued > 0 || dead > 0 {
				messagesRedriven.WithLabelValues(w.name, "queue").Add(float64(requeued))
				messagesRedriven.WithLabelValues(w.name, "dlq").Add(float64(dead))
				w.logger.InfoContext(ctx, "redrove expired messages",
					"queue", w.name,
					"requeued", requeued,
					"dead_lettered", dead,
				)
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
