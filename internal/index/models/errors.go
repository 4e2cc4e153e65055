package models

import (
	"errors"
	"fmt"
)

// ConflictReason names why a lifecycle operation was rejected.
type ConflictReason string

const (
	BuildAlreadyInProgress ConflictReason = "build already in progress"
	BuildNotInProgress     ConflictReason = "build not in progress"
	WrongSlotRequested     ConflictReason = "wrong slot requested"
	NoActiveSlots          ConflictReason = "no active slots"
	ActiveMessagesExist    ConflictReason = "active messages exist"
)

// LifecycleConflict is returned when an operation conflicts with the current
// lifecycle state. It is never retried: the caller must wait or intervene.
type LifecycleConflict struct {
	Reason ConflictReason
	Status IndexStatus
	Queue  *QueueStatus
	// Requested is set for WrongSlotRequested.
	Requested Slot
}

func (e *LifecycleConflict) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Reason, e.Status)
	if e.Requested != "" {
		msg += fmt.Sprintf(" requested=%s", e.Requested)
	}
	if e.Queue != nil {
		msg += fmt.Sprintf(" queue(visible=%d in_flight=%d dlq=%d)", e.Queue.Visible, e.Queue.InFlight, e.Queue.DeadLettered)
	}
	return msg
}

// NewConflict builds a LifecycleConflict for status.
func NewConflict(reason ConflictReason, status IndexStatus) *LifecycleConflict {
	return &LifecycleConflict{Reason: reason, Status: status}
}

// IsConflict reports whether err is a LifecycleConflict, optionally with one
// of the given reasons.
func IsConflict(err error, reasons ...ConflictReason) bool {
	var lc *LifecycleConflict
	if !errors.As(err, &lc) {
		return false
	}
	if len(reasons) == 0 {
		return true
	}
	for _, r := range reasons {
		if lc.Reason == r {
			return true
		}
	}
	return false
}
