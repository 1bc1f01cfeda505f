// Package debounce collapses bursts of value changes into one emission after
// a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock is time.AfterFunc; tests supply
// a manual one.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the runtime timers.
func RealClock() Clock {
	return realClock{}
}

// Debouncer emits the latest value passed to Set once no further Set has
// happened for the configured delay.
type Debouncer[T any] struct {
	mu     sync.Mutex
	delay  time.Duration
	clock  Clock
	emit   func(T)
	timer  Timer
	seq    uint64
	closed bool
}

// New returns a Debouncer that calls emit after delay of inactivity.
// A nil clock uses the runtime timers.
func New[T any](delay time.Duration, clock Clock, emit func(T)) *Debouncer[T] {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer[T]{
		delay: delay,
		clock: clock,
		emit:  emit,
	}
}

// Set records v and restarts the quiet period, cancelling any pending emission.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(seq, v)
	})
}

// Cancel drops the pending emission, if any. The debouncer stays usable.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether an emission is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close cancels any pending emission. Later Set calls are ignored.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	// A callback that already started waits on mu; bumping seq makes it a no-op.
	d.seq++
}

func (d *Debouncer[T]) fire(seq uint64, v T) {
	d.mu.Lock()
	if d.closed || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	emit := d.emit
	d.mu.Unlock()

	emit(v)
}
