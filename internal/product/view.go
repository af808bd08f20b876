package product

import (
	"context"
	"sync"
)

// Status is the fetch state of a view.
type Status int

const (
	// StatusLoading is the initial state and the only one the others are reached from.
	StatusLoading Status = iota
	// StatusError is terminal until the next Navigate.
	StatusError
	// StatusReady is terminal until the next Navigate.
	StatusReady
)

// String returns the lowercase status name used in markup and logs.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Fetcher loads a product by identifier. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (Product, error)
}

// State is a snapshot of a View.
type State struct {
	ID         string
	Generation uint64
	Status     Status
	Product    Product
	Err        error
}

// View tracks the product shown by one view instance. Each Navigate
// supersedes the previous one; results of superseded fetches are dropped.
type View struct {
	fetcher Fetcher

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewView returns a View in the Loading state with no identifier.
func NewView(f Fetcher) *View {
	return &View{fetcher: f}
}

// Navigate starts loading id. Any in-flight fetch is cancelled and its
// eventual result ignored; the previous record is discarded.
func (v *View) Navigate(ctx context.Context, id string) {
	fctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
	}
	gen := v.state.Generation + 1
	v.state = State{ID: id, Generation: gen, Status: StatusLoading}
	v.cancel = cancel
	v.done = done
	v.mu.Unlock()

	go func() {
		defer close(done)
		p, err := v.fetcher.Fetch(fctx, id)
		v.complete(gen, p, err)
	}()
}

// complete applies a fetch result if it belongs to the current navigation and
// that navigation is still loading. It reports whether the result was applied.
func (v *View) complete(gen uint64, p Product, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.state.Generation || v.state.Status != StatusLoading {
		return false
	}
	if err != nil {
		v.state.Status = StatusError
		v.state.Err = err
		return true
	}
	v.state.Status = StatusReady
	v.state.Product = p
	return true
}

// Snapshot returns the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Wait blocks until the latest navigation settles or ctx ends. If another
// Navigate happens while waiting, Wait follows the newer one.
func (v *View) Wait(ctx context.Context) (State, error) {
	for {
		v.mu.Lock()
		done := v.done
		gen := v.state.Generation
		v.mu.Unlock()
		if done == nil {
			return v.Snapshot(), nil
		}

		select {
		case <-done:
		case <-ctx.Done():
			return v.Snapshot(), ctx.Err()
		}

		st := v.Snapshot()
		if st.Generation == gen {
			return st, nil
		}
	}
}

// Close cancels the in-flight fetch and waits for its goroutine to exit.
func (v *View) Close() {
	v.mu.Lock()
	cancel, done := v.cancel, v.done
	v.cancel = nil
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
