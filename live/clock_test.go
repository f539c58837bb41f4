package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// testClock даёт секундомер с управляемыми настенными часами.
func testClock(halves, halfMinutes int) (*Clock, *time.Time) {
	c := NewClock(halves, halfMinutes)
	now := time.Date(2025, 5, 17, 18, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestClockStartsIdleAtFirstHalf(t *testing.T) {
	c, _ := testClock(2, 45)

	state := c.State()
	assert.Equal(t, 1, state.CurrentHalf)
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.ElapsedSeconds)
	assert.Equal(t, 1, state.CurrentMinute)
}

func TestClockStartThenImmediatePause(t *testing.T) {
	c, _ := testClock(2, 45)

	c.StartOrPause()
	c.StartOrPause()

	assert.False(t, c.Running())
	assert.Equal(t, 0, c.State().ElapsedSeconds)
}

func TestClockPauseResumeDoesNotJump(t *testing.T) {
	c, now := testClock(2, 45)

	c.StartOrPause()
	*now = now.Add(90 * time.Second)
	c.StartOrPause() // пауза на 1:30
	assert.Equal(t, 90, c.State().ElapsedSeconds)

	*now = now.Add(10 * time.Minute) // перерыв не идёт в зачёт
	c.StartOrPause()
	assert.Equal(t, 90, c.State().ElapsedSeconds)

	*now = now.Add(30 * time.Second)
	assert.Equal(t, 120, c.State().ElapsedSeconds)
}

func TestClockFinishHalfResetsElapsedKeepsHalf(t *testing.T) {
	c, now := testClock(2, 45)

	c.StartOrPause()
	*now = now.Add(5 * time.Minute)
	c.FinishHalf()

	state := c.State()
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.ElapsedSeconds)
	assert.Equal(t, 1, state.CurrentHalf)
}

func TestClockNextHalfAdvancesAndResets(t *testing.T) {
	c, now := testClock(2, 45)

	c.StartOrPause()
	*now = now.Add(45 * time.Minute)
	c.NextHalf()

	state := c.State()
	assert.Equal(t, 2, state.CurrentHalf)
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.ElapsedSeconds)
}

// На последнем тайме NextHalf не двигает номер тайма, но таймер всё равно
// останавливается и сбрасывается.
func TestClockNextHalfClampedAtLastHalf(t *testing.T) {
	c, now := testClock(2, 45)
	c.NextHalf()
	assert.Equal(t, 2, c.State().CurrentHalf)

	c.StartOrPause()
	*now = now.Add(time.Minute)
	c.NextHalf()

	state := c.State()
	assert.Equal(t, 2, state.CurrentHalf)
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.ElapsedSeconds)
}

func TestClockPrevHalfClampedAtFirstHalf(t *testing.T) {
	c, _ := testClock(2, 45)

	c.PrevHalf()
	assert.Equal(t, 1, c.State().CurrentHalf)

	c.NextHalf()
	c.PrevHalf()
	assert.Equal(t, 1, c.State().CurrentHalf)
}

func TestClockCurrentMinuteDerivation(t *testing.T) {
	c, now := testClock(2, 45)

	assert.Equal(t, 1, c.CurrentMinute())

	c.StartOrPause()
	*now = now.Add(59 * time.Second)
	assert.Equal(t, 1, c.CurrentMinute())

	*now = now.Add(time.Second)
	assert.Equal(t, 2, c.CurrentMinute())

	// За пределами тайма минута упирается в halfMinutes.
	*now = now.Add(2 * time.Hour)
	assert.Equal(t, 45, c.CurrentMinute())
}
