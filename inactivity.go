package goSession

import (
	"sync"
	"time"

	"github.com/avrik7/goSession/internal/clock"
)

// inactivityMonitor forces logout after a fixed idle threshold. It is a push
// model: each qualifying signal reschedules the idle timer eagerly, rather
// than a fixed tick polling a timestamp.
type inactivityMonitor struct {
	mu        sync.Mutex
	clk       clock.Clock
	threshold time.Duration
	signals   map[SignalClass]bool
	onIdle    func()

	armed        bool
	timer        clock.Timer
	gen          uint64
	lastActivity time.Time
}

func newInactivityMonitor(clk clock.Clock, cfg InactivityConfig, onIdle func()) *inactivityMonitor {
	classes := cfg.Signals
	if len(classes) == 0 {
		classes = AllSignalClasses()
	}
	signals := make(map[SignalClass]bool, len(classes))
	for _, sig := range classes {
		signals[sig] = true
	}

	return &inactivityMonitor{
		clk:       clk,
		threshold: cfg.IdleThreshold,
		signals:   signals,
		onIdle:    onIdle,
	}
}

// Arm starts idle tracking. Called once on entering the authenticated state;
// re-arming an armed monitor just resets the deadline.
func (m *inactivityMonitor) Arm() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.armed = true
	m.lastActivity = m.clk.Now()
	m.schedule()
}

// Disarm cancels the pending timer and stops observing signals. Failing to
// release the timer here is a resource leak.
func (m *inactivityMonitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.armed = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// Signal records a user-interaction observation. Non-qualifying classes and
// signals arriving while disarmed are ignored.
func (m *inactivityMonitor) Signal(class SignalClass) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.armed || !m.signals[class] {
		return
	}
	m.lastActivity = m.clk.Now()
	m.schedule()
}

// LastActivity returns the most recent qualifying signal time.
func (m *inactivityMonitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// schedule must be called with m.mu held. Each scheduled timer captures a
// fresh generation; a callback whose generation has been superseded is a
// stale fire that lost the race with Stop and must not act.
func (m *inactivityMonitor) schedule() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.gen++
	gen := m.gen
	m.timer = m.clk.AfterFunc(m.threshold, func() { m.fire(gen) })
}

func (m *inactivityMonitor) fire(gen uint64) {
	m.mu.Lock()
	if !m.armed || gen != m.gen {
		// A signal reset the deadline (or Disarm ran) after this timer was
		// already committed to firing. The rescheduled timer, if any, stays
		// owned by m.timer.
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.mu.Unlock()

	m.onIdle()
}
