package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// callerKey holds the verified token subject (the caller's phone number).
const callerKey = "caller"

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the token
// subject for handlers to read with Caller.
func JWTAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "Missing bearer token")
		}
		sub, err := verifier.Verify(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil || sub == "" {
			return fiber.NewError(http.StatusUnauthorized, "Invalid token")
		}
		c.Locals(callerKey, sub)
		return c.Next()
	}
}

// Caller returns the authenticated caller, or "" on routes without JWTAuth.
func Caller(c *fiber.Ctx) string {
	sub, _ := c.Locals(callerKey).(string)
	return sub
}
