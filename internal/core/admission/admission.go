// Package admission implements fixed-window request counting for the
// mutating endpoints of the gateway. Windows live in process memory only;
// a restart resets every counter.
package admission

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired windows are reclaimed.
const DefaultSweepInterval = 5 * time.Minute

// UnknownCaller buckets requests that carry no forwarded client address.
const UnknownCaller = "unknown"

// Result reports the outcome of an admission check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type windowKey struct {
	caller string
	class  string
}

type window struct {
	count   int
	resetAt time.Time
}

// Controller tracks per-caller fixed windows keyed by endpoint class.
// Check serializes the increment-and-compare step so concurrent callers
// cannot slip past a limit.
type Controller struct {
	mu      sync.Mutex
	windows map[windowKey]*window
	Clock   func() time.Time
}

// NewController creates an empty admission controller.
func NewController() *Controller {
	return &Controller{windows: make(map[windowKey]*window)}
}

// Check counts one request against the (callerKey, class) window. An absent
// or expired window is reinitialized to count 1; otherwise the count is
// incremented in place and compared against limit. Denial is a normal
// return value, never an error.
func (c *Controller) Check(callerKey, class string, limit int, windowDur time.Duration) Result {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.windows == nil {
		c.windows = make(map[windowKey]*window)
	}

	key := windowKey{caller: callerKey, class: class}
	w, ok := c.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowDur)}
		c.windows[key] = w
		remaining := limit - 1
		if remaining < 0 {
			remaining = 0
		}
		return Result{Allowed: limit >= 1, Remaining: remaining, ResetAt: w.resetAt}
	}

	w.count++
	if w.count > limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: w.resetAt}
	}
	return Result{Allowed: true, Remaining: limit - w.count, ResetAt: w.resetAt}
}

// Sweep drops windows whose reset time has already passed. It is purely a
// memory-reclamation step; window arithmetic never depends on it.
func (c *Controller) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, w := range c.windows {
		if now.After(w.resetAt) {
			delete(c.windows, key)
			removed++
		}
	}
	return removed
}

// StartSweep runs Sweep on a ticker until the context is cancelled.
func (c *Controller) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Len reports the number of tracked windows.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}

func (c *Controller) now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}

// CallerKey derives the admission bucket for a request from the first entry
// of the forwarded-client-address header. Unidentifiable callers collapse
// into a single shared bucket.
func CallerKey(r *http.Request) string {
	if r == nil {
		return UnknownCaller
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return UnknownCaller
	}

	first, _, _ := strings.Cut(forwarded, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownCaller
	}
	return first
}
