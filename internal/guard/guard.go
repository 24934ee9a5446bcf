// Package guard implements admission control for outbound inference
// requests: an in-flight lock, a cooldown window, and a sliding per-minute
// cap, evaluated in that order.
package guard

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// slidingWindow is the trailing interval over which PerMinuteCap applies.
const slidingWindow = time.Minute

// Rejection explains why an analysis attempt was not admitted. It is a
// local decision; nothing was sent.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// Guard admits at most one in-flight request, enforces a minimum interval
// between admissions, and caps admissions within any trailing 60-second
// window. The zero value is not usable; construct with New.
type Guard struct {
	mu       sync.Mutex
	cooldown *rate.Limiter
	cap      int
	recent   []time.Time
	inFlight bool
}

// New creates a guard with the given cooldown between admissions and the
// given cap per trailing 60-second window.
func New(cooldown time.Duration, perMinuteCap int) *Guard {
	if perMinuteCap <= 0 {
		perMinuteCap = 1
	}
	return &Guard{
		cooldown: rate.NewLimiter(rate.Every(cooldown), 1),
		cap:      perMinuteCap,
	}
}

// TryAdmit decides whether a new request may be issued at now. It returns
// nil on admission, after which the caller owns the in-flight lock and must
// call Release on every exit path. A non-nil error is always a *Rejection.
func (g *Guard) TryAdmit(now time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight {
		return &Rejection{Reason: "request in progress"}
	}

	// Reserve the cooldown token up front; the reservation is cancelled on
	// any rejection so a denied attempt never consumes budget.
	res := g.cooldown.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		wait := int(delay / time.Second)
		if delay%time.Second != 0 {
			wait++
		}
		return &Rejection{Reason: fmt.Sprintf("cooling down, retry in %ds", wait)}
	}

	g.prune(now)
	if len(g.recent) >= g.cap {
		res.CancelAt(now)
		return &Rejection{Reason: fmt.Sprintf("rate cap reached (%d per minute)", g.cap)}
	}

	g.recent = append(g.recent, now)
	g.inFlight = true
	return nil
}

// Release clears the in-flight lock. It is safe to call when no request is
// in flight.
func (g *Guard) Release() {
	g.mu.Lock()
	g.inFlight = false
	g.mu.Unlock()
}

// InFlight reports whether an admitted request has not yet been released.
func (g *Guard) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// prune drops timestamps older than the sliding window. Caller holds mu.
func (g *Guard) prune(now time.Time) {
	cutoff := now.Add(-slidingWindow)
	kept := g.recent[:0]
	for _, t := range g.recent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.recent = kept
}
