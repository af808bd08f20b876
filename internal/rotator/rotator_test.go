package rotator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// fakeClock hands out fake tickers and records them in creation order.
type fakeClock struct {
	mu        sync.Mutex
	tickers   []*fakeTicker
	intervals []time.Duration
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	c.intervals = append(c.intervals, d)
	return t
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func newTestRotator(t *testing.T) (*Rotator, *fakeClock, chan int) {
	t.Helper()
	clock := &fakeClock{}
	advanced := make(chan int, 1)
	r := New(DefaultInterval, WithTicker(clock.NewTicker), WithOnAdvance(func(i int) {
		advanced <- i
	}))
	t.Cleanup(r.Close)
	return r, clock, advanced
}

func tick(t *testing.T, ft *fakeTicker, advanced <-chan int) int {
	t.Helper()
	select {
	case ft.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("rotator did not accept tick")
	}
	select {
	case i := <-advanced:
		return i
	case <-time.After(time.Second):
		t.Fatal("rotator did not advance")
	}
	return -1
}

func TestIndexAfterKTicksIsKModN(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		r, clock, advanced := newTestRotator(t)
		r.SetLength(n)
		require.Equal(t, Rotating, r.State())
		require.Equal(t, 0, r.Index())

		ft := clock.last()
		require.NotNil(t, ft)
		require.Equal(t, []time.Duration{DefaultInterval}, clock.intervals)

		for k := 1; k <= 3*n+1; k++ {
			got := tick(t, ft, advanced)
			require.Equal(t, k%n, got, "n=%d k=%d", n, k)
			require.Equal(t, k%n, r.Index())
		}
		r.Close()
		require.True(t, ft.isStopped())
	}
}

func TestShortSequencesStayIdle(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		r, clock, _ := newTestRotator(t)
		r.SetLength(n)
		require.Equal(t, Idle, r.State())
		require.Equal(t, 0, r.Index())
		require.Zero(t, clock.count(), "no timer for length %d", n)
	}
}

func TestSetLengthCancelsPendingTimer(t *testing.T) {
	r, clock, advanced := newTestRotator(t)
	r.SetLength(4)
	first := clock.last()
	require.Equal(t, 1, tick(t, first, advanced))
	require.Equal(t, 2, tick(t, first, advanced))

	r.SetLength(2)
	require.True(t, first.isStopped(), "previous timer must be cancelled before re-arming")
	require.Equal(t, 2, clock.count())
	require.Equal(t, 0, r.Index(), "index resets for a new sequence")
	require.Equal(t, 2, r.Len())

	second := clock.last()
	require.Equal(t, 1, tick(t, second, advanced))
	require.Equal(t, 0, tick(t, second, advanced))

	// Nothing is listening on the old ticker any more.
	select {
	case first.ch <- time.Now():
		t.Fatal("stale ticker still consumed")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSetLengthToOneReturnsToIdle(t *testing.T) {
	r, clock, advanced := newTestRotator(t)
	r.SetLength(3)
	ft := clock.last()
	tick(t, ft, advanced)

	r.SetLength(1)
	require.Equal(t, Idle, r.State())
	require.True(t, ft.isStopped())
	require.Equal(t, 0, r.Index())
	require.Equal(t, 1, clock.count())
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	r, clock, _ := newTestRotator(t)
	r.SetLength(3)
	ft := clock.last()

	r.Close()
	r.Close()
	require.True(t, ft.isStopped())
	require.Equal(t, Idle, r.State())

	r.SetLength(5)
	require.Equal(t, Idle, r.State(), "closed rotator never re-arms")
	require.Equal(t, 1, clock.count())
}

func TestRealTickerAdvances(t *testing.T) {
	advanced := make(chan int, 4)
	r := New(5*time.Millisecond, WithOnAdvance(func(i int) {
		select {
		case advanced <- i:
		default:
		}
	}))
	defer r.Close()

	r.SetLength(3)
	select {
	case i := <-advanced:
		require.Equal(t, 1, i)
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	r := New(0)
	require.Equal(t, DefaultInterval, r.interval)
	require.Equal(t, "idle", r.State().String())
	require.Equal(t, "rotating", Rotating.String())
}
