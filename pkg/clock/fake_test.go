package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClock_AdvanceFiresDueTimersInOrder(t *testing.T) {
	c := Fake(epoch)

	var fired []string
	c.AfterFunc(2*time.Minute, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Minute, func() { fired = append(fired, "first") })
	c.AfterFunc(time.Hour, func() { fired = append(fired, "late") })

	require.Equal(t, 3, c.PendingTimers())

	c.Advance(5 * time.Minute)

	assert.Equal(t, []string{"first", "second"}, fired)
	assert.Equal(t, epoch.Add(5*time.Minute), c.Now())
	assert.Equal(t, 1, c.PendingTimers())
}

func TestFakeClock_StoppedTimerNeverFires(t *testing.T) {
	c := Fake(epoch)

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, c.PendingTimers())
}

func TestFakeClock_TimerFiresOnce(t *testing.T) {
	c := Fake(epoch)

	count := 0
	timer := c.AfterFunc(time.Second, func() { count++ })

	c.Advance(time.Second)
	c.Advance(time.Second)

	assert.Equal(t, 1, count)
	assert.False(t, timer.Stop())
}
