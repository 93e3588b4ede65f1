package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/crowdqueue/crowdqueue/internal/types"
)

func newLimitedApp(limit int) (*fiber.App, *RateLimiter) {
	rl := NewRateLimiter(limit)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var custom *types.CustomError
			if errors.As(err, &custom) {
				return c.Status(custom.Code).JSON(fiber.Map{"message": custom.Message})
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Get("/search", rl.Handler(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app, rl
}

func TestRateLimiterEnforcesLimit(t *testing.T) {
	app, rl := newLimitedApp(2)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/search", nil))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/search", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("expected 429 over the limit, got %d", resp.StatusCode)
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	app, rl := newLimitedApp(1)
	defer rl.Stop()

	if resp, _ := app.Test(httptest.NewRequest("GET", "/search", nil)); resp.StatusCode != 200 {
		t.Fatalf("first request should pass, got %d", resp.StatusCode)
	}
	if resp, _ := app.Test(httptest.NewRequest("GET", "/search", nil)); resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", resp.StatusCode)
	}

	rl.reset()

	if resp, _ := app.Test(httptest.NewRequest("GET", "/search", nil)); resp.StatusCode != 200 {
		t.Errorf("request after window reset should pass, got %d", resp.StatusCode)
	}
}
