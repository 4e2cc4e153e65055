// Package clients holds the HTTP clients for the source of record and the
// enrichment services. Each client sits behind a circuit breaker.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prisonersearch/pkg/platform/circuit"
	"prisonersearch/pkg/platform/sentinel"
)

// Category classifies a failed upstream call.
type Category string

const (
	CategoryTimeout  Category = "timeout"
	CategoryOutage   Category = "upstream_outage"
	CategoryBadData  Category = "bad_data"
	CategoryAuth     Category = "authentication"
	CategoryNotFound Category = "not_found"
	CategoryRejected Category = "rejected"
)

// Error is a failed call to a named upstream service.
type Error struct {
	Service    string
	Category   Category
	Status     int
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s [%s]: %s", e.Service, e.Category, e.Message)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Underlying }

// Retryable reports whether the call is worth repeating later.
func (e *Error) Retryable() bool {
	return e.Category == CategoryTimeout || e.Category == CategoryOutage
}

// IsRetryable reports whether err is a retryable upstream failure.
func IsRetryable(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Retryable()
}

// Config is shared by every client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Token   string
}

type Option func(*base)

func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		b.http = c
	}
}

func WithBreaker(br *circuit.Breaker) Option {
	return func(b *base) {
		b.breaker = br
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// base performs JSON GETs against one service.
type base struct {
	service string
	baseURL string
	token   string
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func newBase(service string, cfg Config, opts ...Option) base {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b := base{
		service: service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		breaker: circuit.New(service),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) fail(category Category, status int, msg string, err error) *Error {
	return &Error{Service: b.service, Category: category, Status: status, Message: msg, Underlying: err}
}

// getJSON decodes the response of GET path into out. A 404 is returned as an
// *Error wrapping sentinel.ErrNotFound and does not count against the
// breaker.
func (b *base) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if !b.breaker.Allow() {
		return b.fail(CategoryOutage, 0, "circuit open", nil)
	}

	target := b.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return b.fail(CategoryRejected, 0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	res, err := b.http.Do(req)
	if err != nil {
		b.recordFailure(ctx)
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return b.fail(CategoryTimeout, 0, "request timed out", err)
		}
		return b.fail(CategoryOutage, 0, "request failed", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		b.recordSuccess(ctx)
		return b.fail(CategoryNotFound, res.StatusCode, path, sentinel.ErrNotFound)
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		b.recordSuccess(ctx)
		return b.fail(CategoryAuth, res.StatusCode, "credentials rejected", nil)
	case res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests:
		b.recordFailure(ctx)
		return b.fail(CategoryOutage, res.StatusCode, "upstream error", nil)
	case res.StatusCode >= http.StatusBadRequest:
		b.recordSuccess(ctx)
		return b.fail(CategoryRejected, res.StatusCode, "request rejected", nil)
	}
	b.recordSuccess(ctx)

	if err := json.NewDecoder(io.LimitReader(res.Body, 16<<20)).Decode(out); err != nil {
		return b.fail(CategoryBadData, res.StatusCode, "decode response", err)
	}
	return nil
}

func (b *base) recordFailure(ctx context.Context) {
	if _, change := b.breaker.RecordFailure(); change.Opened {
		b.logger.WarnContext(ctx, "circuit opened", "service", b.service)
	}
}

func (b *base) recordSuccess(ctx context.Context) {
	if _, change := b.breaker.RecordSuccess(); change.Closed {
		b.logger.InfoContext(ctx, "circuit closed", "service", b.service)
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
