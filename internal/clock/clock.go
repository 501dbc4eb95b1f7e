// Package clock provides an injectable time source so that tickers and
// timers owned by a session can be driven deterministically in tests.
//
// Production code uses Real(). Tests use Fake(), which only moves when
// Advance is called and fires AfterFunc callbacks synchronously.
package clock

import "time"

type Clock interface {
	Now() time.Time

	// AfterFunc calls f after d. The returned Timer's C is nil.
	AfterFunc(d time.Duration, f func()) *Timer

	// NewTicker panics if d <= 0. C has capacity 1; late ticks are dropped.
	NewTicker(d time.Duration) *Ticker
}

type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. It does not close C.
func (t *Ticker) Stop() { t.stopFunc() }

type Timer struct {
	C <-chan time.Time

	stopFunc func() bool
}

// Stop reports whether the call prevented the timer from firing.
func (t *Timer) Stop() bool { return t.stopFunc() }
