package transport

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHeartbeatMonitor_DoublesLimitBeforeFirstBeat(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newHeartbeatMonitor(time.Second, func(time.Duration) {})
	m.now = clock.Now
	m.startedAt = clock.Now()

	clock.Advance(1500 * time.Millisecond)
	_, expired := m.expired()
	assert.False(t, expired)

	clock.Advance(600 * time.Millisecond)
	elapsed, expired := m.expired()
	assert.True(t, expired)
	assert.Equal(t, 2100*time.Millisecond, elapsed)
}

func TestHeartbeatMonitor_UsesTimeoutAfterBeat(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newHeartbeatMonitor(time.Second, func(time.Duration) {})
	m.now = clock.Now
	m.startedAt = clock.Now()

	m.beat()
	clock.Advance(900 * time.Millisecond)
	_, expired := m.expired()
	assert.False(t, expired)

	clock.Advance(200 * time.Millisecond)
	_, expired = m.expired()
	assert.True(t, expired)
}

func TestHeartbeatMonitor_FiresOnce(t *testing.T) {
	var fired atomic.Int32
	m := newHeartbeatMonitor(20*time.Millisecond, func(time.Duration) { fired.Add(1) })
	m.start()
	defer m.stop()

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestHeartbeatMonitor_BeatsKeepItAlive(t *testing.T) {
	var fired atomic.Int32
	m := newHeartbeatMonitor(40*time.Millisecond, func(time.Duration) { fired.Add(1) })
	m.start()
	defer m.stop()

	for range 10 {
		m.beat()
		time.Sleep(10 * time.Millisecond)
	}
	assert.Zero(t, fired.Load())
}

func TestHeartbeatMonitor_StopPreventsTimeout(t *testing.T) {
	var fired atomic.Int32
	m := newHeartbeatMonitor(10*time.Millisecond, func(time.Duration) { fired.Add(1) })
	m.start()
	m.stop()
	m.stop()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestHeartbeatMonitor_ZeroTimeoutDisabled(t *testing.T) {
	var fired atomic.Int32
	m := newHeartbeatMonitor(0, func(time.Duration) { fired.Add(1) })
	m.start()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load())
}
