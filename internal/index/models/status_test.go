package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotOther(t *testing.T) {
	assert.Equal(t, SlotB, SlotA.Other())
	assert.Equal(t, SlotA, SlotB.Other())
	assert.Equal(t, "prisoner-search-a", SlotA.IndexName("prisoner-search"))
	assert.Equal(t, "prisoner-search-b", SlotB.IndexName("prisoner-search"))
}

func TestTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(2 * time.Hour)

	t.Run("build in progress targets the other slot", func(t *testing.T) {
		status := NewIndexStatus().ToBuildInProgress(now)
		require.NoError(t, status.Validate())
		assert.Equal(t, SlotA, status.CurrentSlot)
		assert.Equal(t, StateBuilding, status.OtherState)
		assert.Equal(t, now, *status.OtherStartTime)
		assert.True(t, status.InProgress())
	})

	t.Run("build complete swaps slots", func(t *testing.T) {
		status := NewIndexStatus().ToBuildInProgress(now).ToBuildComplete(later)
		require.NoError(t, status.Validate())
		assert.Equal(t, SlotB, status.CurrentSlot)
		assert.Equal(t, StateCompleted, status.CurrentState)
		assert.Equal(t, now, *status.CurrentStartTime)
		assert.Equal(t, later, *status.CurrentEndTime)
		assert.Equal(t, StateCompleted, status.OtherState)
		assert.Equal(t, later, *status.OtherEndTime)
		assert.False(t, status.InProgress())
	})

	t.Run("build cancelled leaves current slot alone", func(t *testing.T) {
		built := NewIndexStatus().ToBuildInProgress(now).ToBuildComplete(later)
		status := built.ToBuildInProgress(later).ToBuildCancelled(later.Add(time.Minute))
		assert.Equal(t, built.CurrentSlot, status.CurrentSlot)
		assert.Equal(t, built.CurrentState, status.CurrentState)
		assert.Equal(t, StateCancelled, status.OtherState)
	})
}

func TestActiveSlots(t *testing.T) {
	now := time.Now()

	assert.Empty(t, NewIndexStatus().ActiveSlots(), "nothing built yet")

	building := NewIndexStatus().ToBuildInProgress(now)
	assert.Equal(t, []Slot{SlotB}, building.ActiveSlots())

	built := building.ToBuildComplete(now)
	assert.Equal(t, []Slot{SlotB}, built.ActiveSlots())

	rebuilding := built.ToBuildInProgress(now)
	assert.Equal(t, []Slot{SlotB, SlotA}, rebuilding.ActiveSlots(), "crossover window writes both slots")
}

func TestQueueStatusActive(t *testing.T) {
	assert.False(t, QueueStatus{}.Active())
	assert.True(t, QueueStatus{Visible: 1}.Active())
	assert.True(t, QueueStatus{InFlight: 1}.Active())
	assert.True(t, QueueStatus{DeadLettered: 1}.Active())
}

func TestLifecycleConflictMessage(t *testing.T) {
	status := NewIndexStatus().ToBuildInProgress(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	err := &LifecycleConflict{Reason: ActiveMessagesExist, Status: status, Queue: &QueueStatus{Visible: 1}}

	assert.Contains(t, err.Error(), "active messages exist")
	assert.Contains(t, err.Error(), "other=B(BUILDING started=2026-01-02T03:04:05Z")
	assert.Contains(t, err.Error(), "visible=1")
	assert.True(t, IsConflict(err))
	assert.True(t, IsConflict(err, ActiveMessagesExist))
	assert.False(t, IsConflict(err, BuildNotInProgress))
}
