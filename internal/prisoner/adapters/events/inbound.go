package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const retryDelay = time.Second

// Fetcher is the subset of *kgo.Client used to consume.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	SetOffsets(offsets map[string]map[int32]kgo.EpochOffset)
}

// ChangeHandler applies upstream changes to the index.
type ChangeHandler interface {
	Refresh(ctx context.Context, prisonerNumber string) error
	SyncIncentive(ctx context.Context, prisonerNumber string) error
	SyncAlerts(ctx context.Context, prisonerNumber string) error
}

// Fallback queues a full refresh when applying a change in place failed,
// handing the retry to the index queue's redrive.
type Fallback func(ctx context.Context, prisonerNumber string) error

// InboundEvent is the upstream domain event envelope.
type InboundEvent struct {
	EventType             string `json:"eventType"`
	AdditionalInformation struct {
		NomsNumber string `json:"nomsNumber"`
	} `json:"additionalInformation"`
	PersonReference struct {
		Identifiers []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"identifiers"`
	} `json:"personReference"`
}

// PrisonerNumber returns the NOMS number from either location upstream
// systems put it.
func (e InboundEvent) PrisonerNumber() string {
	if e.AdditionalInformation.NomsNumber != "" {
		return e.AdditionalInformation.NomsNumber
	}
	for _, id := range e.PersonReference.Identifiers {
		if id.Type == "NOMS" {
			return id.Value
		}
	}
	return ""
}

type action int

const (
	actionIgnore action = iota
	actionRefresh
	actionIncentive
	actionAlerts
)

var refreshPrefixes = []string{
	"prisoner-offender-events.prisoner.",
	"prison-offender-events.prisoner.",
	"restricted-patients.patient.",
	"complexity-of-need.level.",
}

func classify(eventType string) action {
	switch {
	case strings.HasPrefix(eventType, "incentives.iep-review."):
		return actionIncentive
	case strings.HasPrefix(eventType, "person.alert."):
		return actionAlerts
	}
	for _, prefix := range refreshPrefixes {
		if strings.HasPrefix(eventType, prefix) {
			return actionRefresh
		}
	}
	return actionIgnore
}

// Listener consumes inbound change events and commits each record once it
// has been applied or handed to the fallback.
type Listener struct {
	fetcher    Fetcher
	handler    ChangeHandler
	fallback   Fallback
	logger     *slog.Logger
	retryDelay time.Duration
}

func NewListener(fetcher Fetcher, handler ChangeHandler, fallback Fallback, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{fetcher: fetcher, handler: handler, fallback: fallback, logger: logger, retryDelay: retryDelay}
}

// Run polls until ctx is cancelled or the client is closed. Offsets are
// positional, so a partition is committed only up to its first record that
// could be neither applied nor queued; the partition is then rewound to that
// record and polled again after a pause.
func (l *Listener) Run(ctx context.Context) error {
	for {
		fetches := l.fetcher.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			l.logger.ErrorContext(ctx, "kafka fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})
		done, rewind := l.process(ctx, fetches)
		if len(done) > 0 {
			if err := l.fetcher.CommitRecords(ctx, done...); err != nil && ctx.Err() == nil {
				l.logger.ErrorContext(ctx, "failed to commit inbound offsets", "error", err)
			}
		}
		if len(rewind) == 0 {
			continue
		}
		l.fetcher.SetOffsets(rewind)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retryDelay):
		}
	}
}

// process handles each partition in offset order and stops a partition at
// its first failed record. It returns the records safe to commit and the
// offsets to rewind to.
func (l *Listener) process(ctx context.Context, fetches kgo.Fetches) ([]*kgo.Record, map[string]map[int32]kgo.EpochOffset) {
	var done []*kgo.Record
	rewind := map[string]map[int32]kgo.EpochOffset{}
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		for _, r := range p.Records {
			if !l.HandleRecord(ctx, r) {
				if rewind[p.Topic] == nil {
					rewind[p.Topic] = map[int32]kgo.EpochOffset{}
				}
				rewind[p.Topic][p.Partition] = kgo.EpochOffset{Epoch: r.LeaderEpoch, Offset: r.Offset}
				l.logger.WarnContext(ctx, "inbound record not applied, partition rewound",
					"topic", p.Topic,
					"partition", p.Partition,
					"offset", r.Offset,
				)
				return
			}
			done = append(done, r)
		}
	})
	return done, rewind
}

// HandleRecord applies one record and reports whether it may be committed.
func (l *Listener) HandleRecord(ctx context.Context, r *kgo.Record) bool {
	var event InboundEvent
	if err := json.Unmarshal(r.Value, &event); err != nil {
		l.logger.WarnContext(ctx, "dropping malformed inbound event",
			"topic", r.Topic,
			"offset", r.Offset,
			"error", err,
		)
		return true
	}
	prisonerNumber := event.PrisonerNumber()
	act := classify(event.EventType)
	if act == actionIgnore || prisonerNumber == "" {
		return true
	}

	var err error
	switch act {
	case actionIncentive:
		err = l.handler.SyncIncentive(ctx, prisonerNumber)
	case actionAlerts:
		err = l.handler.SyncAlerts(ctx, prisonerNumber)
	default:
		err = l.handler.Refresh(ctx, prisonerNumber)
	}
	if err == nil {
		return true
	}

	l.logger.WarnContext(ctx, "inbound change failed, queueing refresh",
		"event_type", event.EventType,
		"prisoner_number", prisonerNumber,
		"error", err,
	)
	if l.fallback == nil {
		return false
	}
	if err := l.fallback(ctx, prisonerNumber); err != nil {
		l.logger.ErrorContext(ctx, "failed to queue refresh for inbound change",
			"prisoner_number", prisonerNumber,
			"error", err,
		)
		return false
	}
	return true
}
