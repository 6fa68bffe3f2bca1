package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cafestock/internal/domain"
	applog "cafestock/internal/log"
	"cafestock/internal/services"
)

const (
	sessionCookie = "sid"
	csrfCookie    = "csrf_"
)

func setIdentity(c *fiber.Ctx, u *domain.User) {
	c.Locals("user", u)
	c.SetUserContext(services.WithUser(c.UserContext(), u))
}

// AttachUser resolves the sid cookie into an identity for templates and handlers.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies(sessionCookie); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				setIdentity(c, u)
			}
		}
		return c.Next()
	}
}

// RequireUser rejects requests without a live session with 401.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) != nil {
			return c.Next()
		}
		sid := c.Cookies(sessionCookie)
		if sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				setIdentity(c, u)
				return c.Next()
			}
		}
		applog.Security(c, "access.unauthorized", map[string]any{"has_sid": sid != ""})
		return renderStatus(c, fiber.StatusUnauthorized, "unauthorized", fiber.Map{
			"Message": "Please log in or register to continue.",
			"Next":    c.OriginalURL(),
		})
	}
}

// RequireRole allows only identities holding role; use after RequireUser.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := currentUser(c)
		if u == nil {
			return renderStatus(c, fiber.StatusUnauthorized, "unauthorized", fiber.Map{
				"Message": "Please log in or register to continue.",
			})
		}
		if u.Role != role {
			applog.Security(c, "access.denied", map[string]any{"role": u.Role, "required": role})
			return renderStatus(c, fiber.StatusForbidden, "error", fiber.Map{"Message": "Access denied"})
		}
		return c.Next()
	}
}
