package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionHeader = "X-Session-Id"
	SessionCookie = "docchat_session_id"

	// SessionLocalsKey is where the resolved session id lives on the request.
	SessionLocalsKey = "session_id"
)

// SessionResolver is the slice of the session store the middleware needs.
type SessionResolver interface {
	// Exists reports whether the id names a live session.
	Exists(id string) bool
	// Create allocates a fresh session and returns its id.
	Create() string
}

// SessionMiddleware resolves the caller's session id from header or cookie.
// Ids that do not name a live session are replaced with a fresh one rather
// than resumed; clients cannot revive an arbitrary id. The resolved id is
// echoed back on every response.
func SessionMiddleware(sessions SessionResolver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id := ctx.Get(SessionHeader)
		if id == "" {
			id = ctx.Cookies(SessionCookie)
		}

		if id == "" || !sessions.Exists(id) {
			id = sessions.Create()
		}

		ctx.Locals(SessionLocalsKey, id)
		ctx.Set(SessionHeader, id)
		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			HTTPOnly: true,
			SameSite: "Lax",
			Expires:  time.Now().Add(24 * time.Hour),
		})

		return ctx.Next()
	}
}

// SessionID returns the session id resolved by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(SessionLocalsKey).(string)
	return id
}
