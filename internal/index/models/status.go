package models

import (
	"fmt"
	"time"
)

// Slot names one of the two alternating physical indices.
type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

// Other returns the complement slot. A rebuild always targets the complement
// of the current live slot.
func (s Slot) Other() Slot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

// IsValid reports whether s is one of the two known slots.
func (s Slot) IsValid() bool {
	return s == SlotA || s == SlotB
}

// IndexName returns the physical index name for this slot under prefix.
func (s Slot) IndexName(prefix string) string {
	if s == SlotA {
		return prefix + "-a"
	}
	return prefix + "-b"
}

// State is the build state of a slot.
type State string

const (
	StateAbsent    State = "ABSENT"
	StateBuilding  State = "BUILDING"
	StateCompleted State = "COMPLETED"
	StateCancelled State = "CANCELLED"
)

// IndexStatus is the singleton lifecycle row. It is only mutated through the
// lifecycle state machine, which writes it back with compare-and-set on
// Version.
type IndexStatus struct {
	CurrentSlot      Slot
	CurrentState     State
	CurrentStartTime *time.Time
	CurrentEndTime   *time.Time
	OtherState       State
	OtherStartTime   *time.Time
	OtherEndTime     *time.Time
	Version          int64
}

// NewIndexStatus returns the bootstrap row: slot A current, nothing built.
func NewIndexStatus() IndexStatus {
	return IndexStatus{
		CurrentSlot:  SlotA,
		CurrentState: StateAbsent,
		OtherState:   StateAbsent,
	}
}

// OtherSlot is the rebuild target.
func (s IndexStatus) OtherSlot() Slot {
	return s.CurrentSlot.Other()
}

// InProgress reports whether the other slot is being built.
func (s IndexStatus) InProgress() bool {
	return s.OtherState == StateBuilding
}

// ActiveSlots returns the slots that live updates must be written to: the
// current slot once it has been built, plus the other slot while it is being
// rebuilt so the new index does not miss changes made during the build.
func (s IndexStatus) ActiveSlots() []Slot {
	var slots []Slot
	if s.CurrentState == StateCompleted {
		slots = append(slots, s.CurrentSlot)
	}
	if s.OtherState == StateBuilding {
		slots = append(slots, s.OtherSlot())
	}
	return slots
}

// ToBuildInProgress marks the other slot as building.
func (s IndexStatus) ToBuildInProgress(now time.Time) IndexStatus {
	next := s
	next.OtherState = StateBuilding
	next.OtherStartTime = &now
	next.OtherEndTime = nil
	return next
}

// ToBuildComplete swaps the slots. The rebuilt slot becomes current and the
// previously live slot is retired as COMPLETED.
func (s IndexStatus) ToBuildComplete(now time.Time) IndexStatus {
	retiredEnd := s.CurrentEndTime
	if retiredEnd == nil {
		retiredEnd = &now
	}
	return IndexStatus{
		CurrentSlot:      s.OtherSlot(),
		CurrentState:     StateCompleted,
		CurrentStartTime: s.OtherStartTime,
		CurrentEndTime:   &now,
		OtherState:       StateCompleted,
		OtherStartTime:   s.CurrentStartTime,
		OtherEndTime:     retiredEnd,
		Version:          s.Version,
	}
}

// ToBuildCancelled abandons the build, leaving the live slot untouched.
func (s IndexStatus) ToBuildCancelled(now time.Time) IndexStatus {
	next := s
	next.OtherState = StateCancelled
	next.OtherEndTime = &now
	return next
}

// Validate checks the structural invariant: one current slot, and only the
// other slot may be building.
func (s IndexStatus) Validate() error {
	if !s.CurrentSlot.IsValid() {
		return fmt.Errorf("invalid current slot %q", s.CurrentSlot)
	}
	if s.CurrentState == StateBuilding {
		return fmt.Errorf("current slot %s must not be %s", s.CurrentSlot, StateBuilding)
	}
	return nil
}

func (s IndexStatus) String() string {
	return fmt.Sprintf("current=%s(%s started=%s ended=%s) other=%s(%s started=%s ended=%s)",
		s.CurrentSlot, s.CurrentState, formatTime(s.CurrentStartTime), formatTime(s.CurrentEndTime),
		s.OtherSlot(), s.OtherState, formatTime(s.OtherStartTime), formatTime(s.OtherEndTime))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// QueueStatus is a transient snapshot of queue depth, used as a mutual
// exclusion signal between pipeline runs.
type QueueStatus struct {
	Visible      int64
	InFlight     int64
	DeadLettered int64
}

// Active reports whether any message is still outstanding.
func (q QueueStatus) Active() bool {
	return q.Visible > 0 || q.InFlight > 0 || q.DeadLettered > 0
}
