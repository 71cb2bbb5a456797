// Package timer implements the attempt countdown: a one-second tick down
// to zero that fires an expiry callback exactly once per run.
package timer

import (
	"math"
	"sync"
	"time"
)

// TickInterval is the countdown cadence.
const TickInterval = time.Second

// MaxMinutes is the longest countdown whose length in seconds fits an int.
// Longer durations are clamped to it.
const MaxMinutes = math.MaxInt / 60

// Engine is a restartable countdown. All methods are safe for concurrent use.
// At most one tick is pending at any time; restarting or stopping cancels it
// before anything else happens.
type Engine struct {
	clock Clock

	mu         sync.Mutex
	minutes    int
	configured bool
	remaining  int
	running    bool
	run        uint64
	next       time.Time
	pending    Timer
	onExpire   func()
	onTick     func(remaining int)
}

// NewEngine returns an idle engine. A nil clock means SystemClock.
func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{clock: clock}
}

// SetOnExpire replaces the expiry callback. The callback in the slot when the
// countdown reaches zero is the one invoked.
func (e *Engine) SetOnExpire(fn func()) {
	e.mu.Lock()
	e.onExpire = fn
	e.mu.Unlock()
}

// SetOnTick registers a listener called with the remaining seconds after
// every tick, including the final one that reaches zero.
func (e *Engine) SetOnTick(fn func(remaining int)) {
	e.mu.Lock()
	e.onTick = fn
	e.mu.Unlock()
}

// Start discards any running countdown and starts a new one from minutes.
// A non-positive duration leaves the engine idle with 0 seconds remaining.
func (e *Engine) Start(minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked(minutes)
}

// SetDuration restarts the countdown only when minutes differs from the
// duration of the current run.
func (e *Engine) SetDuration(minutes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.configured && e.minutes == minutes {
		return
	}
	e.startLocked(minutes)
}

// Stop tears the countdown down. No tick fires after Stop returns, and a Stop
// issued from the tick listener on the final tick suppresses the expiry.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.configured = false
}

// Remaining returns the seconds left in the current run.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

// Running reports whether a countdown is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Formatted returns the remaining time as M:SS.
func (e *Engine) Formatted() string {
	return FormatTime(e.Remaining())
}

func (e *Engine) startLocked(minutes int) {
	e.cancelLocked()
	e.minutes = minutes
	e.configured = true
	if minutes <= 0 {
		e.remaining = 0
		return
	}
	if minutes > MaxMinutes {
		minutes = MaxMinutes
	}
	e.remaining = minutes * 60
	e.running = true
	e.next = e.clock.Now()
	e.scheduleLocked(e.run)
}

func (e *Engine) cancelLocked() {
	e.run++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.running = false
}

// scheduleLocked arms the next tick against an absolute deadline so the
// cadence does not drift with callback latency.
func (e *Engine) scheduleLocked(run uint64) {
	e.next = e.next.Add(TickInterval)
	d := e.next.Sub(e.clock.Now())
	if d < 0 {
		d = 0
	}
	e.pending = e.clock.AfterFunc(d, func() { e.tick(run) })
}

func (e *Engine) tick(run uint64) {
	e.mu.Lock()
	if run != e.run || !e.running {
		// cancelled while this tick was already in flight
		e.mu.Unlock()
		return
	}
	e.pending = nil

	if e.remaining <= 1 {
		e.remaining = 0
		e.running = false
		onTick := e.onTick
		e.mu.Unlock()

		if onTick != nil {
			onTick(0)
		}

		// The tick listener may have stopped or restarted the engine.
		e.mu.Lock()
		onExpire := e.onExpire
		stale := run != e.run
		e.mu.Unlock()
		if !stale && onExpire != nil {
			onExpire()
		}
		return
	}

	e.remaining--
	remaining := e.remaining
	e.scheduleLocked(run)
	onTick := e.onTick
	e.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
}
