package middleware

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"

	"github.com/crowdqueue/crowdqueue/internal/types"
)

// RateLimiter is a fixed-window per-client counter. The window resets on a
// periodic clock tick, so limits are approximate around window boundaries.
type RateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
	cron   *cron.Cron
}

// NewRateLimiter creates a limiter allowing limit requests per client per
// minute and starts its reset tick.
func NewRateLimiter(limit int) *RateLimiter {
	rl := &RateLimiter{
		counts: make(map[string]int),
		limit:  limit,
		cron:   cron.New(),
	}

	// Every minute, on the minute.
	_, _ = rl.cron.AddFunc("* * * * *", rl.reset)
	rl.cron.Start()

	return rl
}

// Handler returns the fiber middleware enforcing the limit per client IP.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rl.mu.Lock()
		count := rl.counts[c.IP()]
		if count >= rl.limit {
			rl.mu.Unlock()
			return &types.CustomError{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many searches. Please wait a moment.",
				Type:    "rate_limit",
			}
		}
		rl.counts[c.IP()] = count + 1
		rl.mu.Unlock()

		return c.Next()
	}
}

// Stop halts the reset tick.
func (rl *RateLimiter) Stop() {
	rl.cron.Stop()
}

// reset clears all counters, opening a fresh window.
func (rl *RateLimiter) reset() {
	rl.mu.Lock()
	rl.counts = make(map[string]int)
	rl.mu.Unlock()
}
