package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/walletsvc/wallet_service/internal/logging"
)

func setupTestApp(t *testing.T, status int) (*fiber.App, *int32) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	var calls int32
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(callerKey, c.Get("X-Test-Caller"))
		return c.Next()
	})
	app.Post("/resource", Idempotency(cache, time.Minute, logging.Discard()), func(c *fiber.Ctx) error {
		n := atomic.AddInt32(&calls, 1)
		return c.Status(status).JSON(fiber.Map{"call": n})
	})
	return app, &calls
}

func post(t *testing.T, app *fiber.App, key, caller string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/resource", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	req.Header.Set("X-Test-Caller", caller)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls := setupTestApp(t, fiber.StatusCreated)

	post(t, app, "", "alice")
	post(t, app, "", "alice")

	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", got)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupTestApp(t, fiber.StatusCreated)

	status, payload := post(t, app, "abc123", "alice")
	if status != fiber.StatusCreated {
		t.Fatalf("expected status %d got %d", fiber.StatusCreated, status)
	}

	status, cached := post(t, app, "abc123", "alice")
	if status != fiber.StatusCreated {
		t.Fatalf("expected cached status %d got %d", fiber.StatusCreated, status)
	}
	if cached != payload {
		t.Fatalf("expected cached payload %s got %s", payload, cached)
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected handler to run once, ran %d times", got)
	}
}

func TestIdempotencyKeysAreScopedToCaller(t *testing.T) {
	app, calls := setupTestApp(t, fiber.StatusCreated)

	post(t, app, "abc123", "alice")
	post(t, app, "abc123", "bob")

	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected one call per caller, got %d", got)
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	app, calls := setupTestApp(t, fiber.StatusInternalServerError)

	post(t, app, "abc123", "alice")
	post(t, app, "abc123", "alice")

	if got := atomic.LoadInt32(calls); got != 2 {
		t.Fatalf("expected retry after 5xx, got %d calls", got)
	}
}
