// Package auth provides the route guards for the HTTP API. In local mode
// both guards short-circuit: authenticated routes pass through with the
// provisioned admin identity, guest-only routes redirect to the editor.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/flowbridge/flowbridge/pkg/models"
)

// IdentityKey is the fiber locals key holding the authenticated user.
const IdentityKey = "auth.user"

// Guard builds the route guards for one deployment.
type Guard struct {
	localMode  bool
	localAdmin *models.User
	apiToken   string
}

// NewGuard creates a guard. localAdmin is the identity injected on every
// request in local mode; apiToken is the bearer token enforced otherwise.
func NewGuard(localMode bool, localAdmin *models.User, apiToken string) *Guard {
	return &Guard{
		localMode:  localMode,
		localAdmin: localAdmin,
		apiToken:   apiToken,
	}
}

// RequireAuth guards routes that need an authenticated caller.
func (g *Guard) RequireAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		if g.localMode {
			if g.localAdmin != nil {
				c.Locals(IdentityKey, g.localAdmin)
			}

			return c.Next()
		}

		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")

		if !ok || g.apiToken == "" || token != g.apiToken {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		return c.Next()
	}
}

// GuestOnly guards routes meant for unauthenticated visitors (signin,
// signup). In local mode there is no such visitor, so the request is
// redirected to the editor root unconditionally.
func (g *Guard) GuestOnly(redirectTo string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if g.localMode {
			return c.Redirect().To(redirectTo)
		}

		return c.Next()
	}
}

// CurrentUser returns the identity injected by RequireAuth, if any.
func CurrentUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals(IdentityKey).(*models.User)

	return user
}
