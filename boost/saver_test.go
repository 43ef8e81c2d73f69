package boost

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

// fakeClock records every scheduled timer so tests can fire them manually.
type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	timer := &fakeTimer{f: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) fireLast(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, c.timers)
	last := c.timers[len(c.timers)-1]
	require.False(t, last.stopped)
	last.f()
}

func TestNewSaver(t *testing.T) {
	t.Run("nil flush", func(t *testing.T) {
		_, err := NewSaver(nil)
		assert.Equal(t, ErrFlushFuncRequired, err)
	})

	t.Run("defaults", func(t *testing.T) {
		saver, err := NewSaver(func() error { return nil })
		require.NoError(t, err)
		assert.Equal(t, DefaultSaveDebounce, saver.interval)
		assert.False(t, saver.Dirty())
	})
}

func TestSaverMarkCoalesces(t *testing.T) {
	clock := &fakeClock{}
	flushes := 0
	saver, err := NewSaver(func() error {
		flushes++
		return nil
	}, WithSaverClock(clock))
	require.NoError(t, err)

	// Three rapid marks leave exactly one live timer.
	saver.Mark()
	saver.Mark()
	saver.Mark()
	require.Len(t, clock.timers, 3)
	assert.True(t, clock.timers[0].stopped)
	assert.True(t, clock.timers[1].stopped)
	assert.False(t, clock.timers[2].stopped)
	assert.True(t, saver.Dirty())

	clock.fireLast(t)
	assert.Equal(t, 1, flushes)
	assert.False(t, saver.Dirty())
}

func TestSaverFlushDrainsTimer(t *testing.T) {
	clock := &fakeClock{}
	flushes := 0
	saver, err := NewSaver(func() error {
		flushes++
		return nil
	}, WithSaverClock(clock))
	require.NoError(t, err)

	saver.Mark()
	require.NoError(t, saver.Flush())
	assert.Equal(t, 1, flushes)
	assert.False(t, saver.Dirty())
	assert.True(t, clock.timers[0].stopped)
}

func TestSaverFlushCleanNoop(t *testing.T) {
	flushes := 0
	saver, err := NewSaver(func() error {
		flushes++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, saver.Flush())
	assert.Equal(t, 0, flushes)
}

func TestSaverFlushError(t *testing.T) {
	clock := &fakeClock{}
	flushErr := errors.New("disk full")
	saver, err := NewSaver(func() error { return flushErr }, WithSaverClock(clock))
	require.NoError(t, err)

	saver.Mark()
	assert.ErrorIs(t, saver.Flush(), flushErr)
	// The write did not land; the saver stays dirty for a retry.
	assert.True(t, saver.Dirty())
}
