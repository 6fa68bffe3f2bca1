package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cafestock/internal/domain"
	applog "cafestock/internal/log"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["User"] = currentUser(c)
	// Prefer the token the CSRF middleware put into Locals, fall back to the cookie.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies(csrfCookie)
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

func renderStatus(c *fiber.Ctx, status int, tmpl string, data fiber.Map) error {
	c.Status(status)
	return render(c, tmpl, data)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidType):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrBadCredentials), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownProduct), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrUsernameTaken):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// messageFor is the user-facing text; internals never leave the server.
func messageFor(err error) string {
	switch statusFor(err) {
	case fiber.StatusInternalServerError:
		return "Something went wrong. Please try again."
	case fiber.StatusNotFound:
		if errors.Is(err, domain.ErrUnknownProduct) {
			return "That product does not exist."
		}
		return "Not found."
	default:
		return err.Error()
	}
}

// fail logs err under action and renders the error page with the mapped status.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		applog.Error(c, action, err, fields)
	} else {
		applog.Info(c, action, mergeFields(fields, map[string]any{"reason": err.Error()}))
	}
	return renderStatus(c, status, "error", fiber.Map{"Message": messageFor(err)})
}

func mergeFields(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// currentUser is the identity attached by AttachUser or the guards.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
