// Package enrichment captures the outcome of one best-effort enrichment
// fetch so the synchroniser can write the record regardless and report
// failures afterwards.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// State is the outcome of a fetch.
type State int

const (
	// Fetched holds a value from the enrichment source. The value may be the
	// zero value when the source has nothing for this record.
	Fetched State = iota
	// NotApplicable means the enrichment does not apply to this record and
	// the document field is cleared.
	NotApplicable
	// Failed means the fetch errored. The previous document value is kept.
	Failed
	// Unconfigured means no client is wired. The previous value is kept.
	Unconfigured
)

// Result is a value or the failure that replaced it.
type Result[T any] struct {
	Value T
	Err   error
	State State
}

func Skip[T any]() Result[T] {
	return Result[T]{State: NotApplicable}
}

func Missing[T any]() Result[T] {
	return Result[T]{State: Unconfigured}
}

// Fetch calls fn and captures its outcome.
func Fetch[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	v, err := fn(ctx)
	if err != nil {
		return Result[T]{Err: err, State: Failed}
	}
	return Result[T]{Value: v, State: Fetched}
}

// Resolve returns the value to write given the previous document's value.
func (r Result[T]) Resolve(previous T) T {
	switch r.State {
	case Fetched:
		return r.Value
	case NotApplicable:
		var zero T
		return zero
	default:
		return previous
	}
}

// Error aggregates the failed fetches of one synchronisation. It is
// returned after the record has been written.
type Error struct {
	PrisonerNumber string
	Failures       map[string]error
}

func (e *Error) Error() string {
	names := e.Sources()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return fmt.Sprintf("enrichment failed for %s (%s)", e.PrisonerNumber, strings.Join(parts, "; "))
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, name := range e.Sources() {
		out = append(out, e.Failures[name])
	}
	return out
}

// Sources lists the failed enrichment sources in name order.
func (e *Error) Sources() []string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collector gathers failures by source name.
type Collector struct {
	failures map[string]error
}

// Add records r's failure under source, if it failed.
func Add[T any](c *Collector, source string, r Result[T]) {
	if r.State != Failed {
		return
	}
	if c.failures == nil {
		c.failures = make(map[string]error)
	}
	c.failures[source] = r.Err
}

// Err returns nil when nothing failed.
func (c *Collector) Err(prisonerNumber string) error {
	if len(c.failures) == 0 {
		return nil
	}
	return &Error{PrisonerNumber: prisonerNumber, Failures: c.failures}
}

// IsEnrichmentError reports whether err carries enrichment failures.
func IsEnrichmentError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
