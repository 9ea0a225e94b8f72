// Package clock abstracts timer and ticker creation so timeout-driven engine
// behavior (refresh ticks, idle deadlines) is deterministic in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a cancellable single-shot timer handle.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// Ticker is a periodic tick source.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Clock supplies time and schedulable work.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	NewTicker(d time.Duration) Ticker
}

// System is the wall-clock implementation used outside tests.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{time.AfterFunc(d, f)}
}

func (System) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) Stop() bool                 { return s.t.Stop() }
func (s systemTimer) Reset(d time.Duration) bool { return s.t.Reset(d) }

type systemTicker struct {
	ticker *time.Ticker
}

func (s *systemTicker) Chan() <-chan time.Time { return s.ticker.C }
func (s *systemTicker) Stop()                  { s.ticker.Stop() }

// Fake is a manually advanced clock for tests. Advance fires due timers and
// tickers synchronously on the calling goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	timers  map[int]*fakeTimer
	tickers map[int]*fakeTicker
	nextID  int
}

// NewFake creates a fake clock starting at a fixed, arbitrary instant.
func NewFake() *Fake {
	return &Fake{
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		timers:  make(map[int]*fakeTimer),
		tickers: make(map[int]*fakeTicker),
	}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	t := &fakeTimer{
		clock: f,
		id:    f.nextID,
		at:    f.now.Add(d),
		fn:    fn,
	}
	f.timers[t.id] = t
	return t
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	t := &fakeTicker{
		clock:  f,
		id:     f.nextID,
		period: d,
		next:   f.now.Add(d),
		ch:     make(chan time.Time, 1),
	}
	f.tickers[t.id] = t
	return t
}

// Advance moves the clock forward, firing timers and ticker deliveries whose
// deadlines fall within the window, in deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		fn := f.fireNext(target)
		if fn == nil {
			break
		}
		fn()
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

// PendingTimers reports the number of armed single-shot timers. Tests use it
// to assert that teardown released every timer.
func (f *Fake) PendingTimers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// fireNext pops the earliest due timer/ticker at or before target and returns
// the work to run, or nil when nothing further is due.
func (f *Fake) fireNext(target time.Time) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		bestTimer  *fakeTimer
		bestTicker *fakeTicker
		bestAt     time.Time
	)
	for _, t := range f.timers {
		if t.at.After(target) {
			continue
		}
		if bestTimer == nil || t.at.Before(bestAt) {
			bestTimer, bestAt = t, t.at
		}
	}
	for _, t := range f.tickers {
		if t.next.After(target) {
			continue
		}
		if (bestTimer == nil && bestTicker == nil) || t.next.Before(bestAt) {
			bestTimer, bestTicker, bestAt = nil, t, t.next
		}
	}

	switch {
	case bestTimer != nil:
		delete(f.timers, bestTimer.id)
		f.now = bestAt
		return bestTimer.fn
	case bestTicker != nil:
		at := bestTicker.next
		bestTicker.next = at.Add(bestTicker.period)
		f.now = at
		ch := bestTicker.ch
		return func() {
			select {
			case ch <- at:
			default:
			}
		}
	default:
		return nil
	}
}

type fakeTimer struct {
	clock *Fake
	id    int
	at    time.Time
	fn    func()
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if _, ok := t.clock.timers[t.id]; ok {
		delete(t.clock.timers, t.id)
		return true
	}
	return false
}

func (t *fakeTimer) Reset(d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	_, active := t.clock.timers[t.id]
	t.at = t.clock.now.Add(d)
	t.clock.timers[t.id] = t
	return active
}

type fakeTicker struct {
	clock  *Fake
	id     int
	period time.Duration
	next   time.Time
	ch     chan time.Time
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	delete(t.clock.tickers, t.id)
}
