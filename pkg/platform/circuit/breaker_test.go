package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := New("prison-api")
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "prison-api", b.Name())
}

func TestBreakerOpensOnConsecutiveFailures(t *testing.T) {
	b := New("alerts", WithFailureThreshold(3))

	stop, change := b.RecordFailure()
	assert.False(t, stop)
	assert.False(t, change.Opened)

	stop, change = b.RecordFailure()
	assert.False(t, stop)
	assert.False(t, change.Opened)

	stop, change = b.RecordFailure()
	assert.True(t, stop)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
	assert.Equal(t, "open", b.State().String())

	stop, change = b.RecordFailure()
	assert.True(t, stop)
	assert.False(t, change.Opened, "already open")
}

func TestBreakerClosesOnConsecutiveSuccesses(t *testing.T) {
	b := New("alerts", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()

	usable, change := b.RecordSuccess()
	assert.False(t, usable)
	assert.False(t, change.Closed)
	assert.True(t, b.IsOpen())

	b.RecordFailure()
	b.RecordSuccess()
	assert.True(t, b.IsOpen(), "a failure restarts the success run")

	usable, change = b.RecordSuccess()
	assert.True(t, usable)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreakerSuccessRestartsFailureRun(t *testing.T) {
	b := New("incentives", WithFailureThreshold(3))
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreakerAllowsProbeAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("complexity",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)
	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(10 * time.Second)
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.False(t, b.Allow(), "failed probe restarts the cooldown")
}

func TestBreakerReset(t *testing.T) {
	b := New("restricted-patients", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}
