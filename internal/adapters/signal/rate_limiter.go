package signal

import "golang.org/x/time/rate"

// newDrawLimiter bounds draw messages per connection. A zero rate means
// unlimited.
func newDrawLimiter(r rate.Limit, burst int) *rate.Limiter {
	if r <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(r, burst)
}
