// Package rotator advances a display index through a fixed-size sequence on
// a fixed interval, wrapping at the end.
package rotator

import (
	"sync"
	"time"
)

// DefaultInterval is the gallery rotation period.
const DefaultInterval = 5 * time.Second

// State reports whether a timer is armed.
type State int

const (
	// Idle means the sequence has at most one element and no timer runs.
	Idle State = iota
	// Rotating means a timer is armed and the index advances on every tick.
	Rotating
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == Rotating {
		return "rotating"
	}
	return "idle"
}

// Ticker is the subset of *time.Ticker the rotator needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

func newStdTicker(d time.Duration) Ticker { return stdTicker{t: time.NewTicker(d)} }

// Option customises a Rotator.
type Option func(*Rotator)

// WithTicker replaces the ticker factory.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(r *Rotator) {
		if fn != nil {
			r.newTicker = fn
		}
	}
}

// WithOnAdvance registers a callback invoked with the new index after every
// advance. It runs on the rotator's goroutine and must not block.
func WithOnAdvance(fn func(int)) Option {
	return func(r *Rotator) {
		r.onAdvance = fn
	}
}

// Rotator cycles an index through [0, length).
type Rotator struct {
	interval  time.Duration
	newTicker func(time.Duration) Ticker
	onAdvance func(int)

	// ctl serialises SetLength and Close so that disarm and arm never interleave.
	ctl sync.Mutex

	mu     sync.Mutex
	length int
	index  int
	stop   chan struct{}
	done   chan struct{}
	closed bool
}

// New returns an Idle rotator. A non-positive interval selects DefaultInterval.
func New(interval time.Duration, opts ...Option) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Rotator{
		interval:  interval,
		newTicker: newStdTicker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetLength replaces the sequence length. Any pending timer is cancelled
// before the index resets to 0; a new timer is armed only when n > 1.
func (r *Rotator) SetLength(n int) {
	r.ctl.Lock()
	defer r.ctl.Unlock()

	r.disarm()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if n < 0 {
		n = 0
	}
	r.length = n
	r.index = 0
	r.mu.Unlock()

	if n > 1 {
		r.arm()
	}
}

// Index returns the current index.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Len returns the current sequence length.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length
}

// State reports whether a timer is armed.
func (r *Rotator) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return Rotating
	}
	return Idle
}

// Close stops the timer and waits for the rotator goroutine to exit.
// The rotator stays Idle afterwards; Close is idempotent.
func (r *Rotator) Close() {
	r.ctl.Lock()
	defer r.ctl.Unlock()

	r.disarm()
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *Rotator) arm() {
	t := r.newTicker(r.interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	r.mu.Lock()
	r.stop, r.done = stop, done
	r.mu.Unlock()

	go r.loop(t, stop, done)
}

func (r *Rotator) disarm() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (r *Rotator) loop(t Ticker, stop, done chan struct{}) {
	defer close(done)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			// stop wins over a tick that raced with it
			select {
			case <-stop:
				return
			default:
			}
			r.advance()
		}
	}
}

func (r *Rotator) advance() {
	r.mu.Lock()
	if r.length <= 1 {
		r.mu.Unlock()
		return
	}
	r.index = (r.index + 1) % r.length
	idx := r.index
	fn := r.onAdvance
	r.mu.Unlock()

	if fn != nil {
		fn(idx)
	}
}
