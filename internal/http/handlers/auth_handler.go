package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cafestock/internal/domain"
	"cafestock/internal/log"
	"cafestock/internal/services"
	"cafestock/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	CookieSecure bool
}

func (h *AuthHandler) setSession(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  expires,
	})
}

// dropSession unbinds the sid the request arrived with, if any.
func (h *AuthHandler) dropSession(c *fiber.Ctx) {
	if old := c.Cookies(sessionCookie); old != "" {
		if err := h.Auth.Logout(c.UserContext(), old); err != nil {
			log.Error(c, "auth.session.drop.fail", err, nil)
		}
	}
}

// GET /register_user
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register_user", fiber.Map{"Err": ""})
}

// POST /register_user
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	form := validate.UserForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Role:     strings.ToLower(strings.TrimSpace(c.FormValue("role"))),
	}
	if errs := validate.Struct(form); len(errs) > 0 {
		log.Security(c, "validation.fail", map[string]any{"form": "register_user", "fields": validate.Fields(errs)})
		return renderStatus(c, fiber.StatusBadRequest, "register_user", fiber.Map{
			"Err":      validate.Err(errs).Error(),
			"Username": form.Username,
		})
	}

	// fresh id so a pre-existing cookie can never be promoted
	sid := uuid.NewString()
	u, err := h.Auth.Register(c.UserContext(), sid, form.Username, form.Password, form.Role)
	if errors.Is(err, domain.ErrUsernameTaken) {
		log.Security(c, "auth.register.fail", map[string]any{"username": form.Username, "reason": "taken"})
		return renderStatus(c, fiber.StatusConflict, "register_user", fiber.Map{
			"Err":      "That username is already taken.",
			"Username": form.Username,
		})
	}
	if err != nil {
		log.Error(c, "auth.register.fail", err, map[string]any{"username": form.Username})
		return renderStatus(c, fiber.StatusInternalServerError, "register_user", fiber.Map{
			"Err":      "Could not create the account. Please try again.",
			"Username": form.Username,
		})
	}

	h.dropSession(c)
	h.setSession(c, sid, time.Time{})
	setIdentity(c, u)
	log.Audit(c, "auth.register", map[string]any{"username": u.Username, "role": u.Role})
	return c.Redirect("/view_stock")
}

// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	form := validate.LoginForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
	}
	if errs := validate.Struct(form); len(errs) > 0 {
		log.Security(c, "auth.login.fail", map[string]any{"username": form.Username, "reason": "blank"})
		return renderStatus(c, fiber.StatusBadRequest, "login", fiber.Map{
			"Err":      "Enter your username and password.",
			"Username": form.Username,
		})
	}

	sid := uuid.NewString()
	u, err := h.Auth.Login(c.UserContext(), sid, form.Username, form.Password)
	if errors.Is(err, domain.ErrBadCredentials) {
		log.Security(c, "auth.login.fail", map[string]any{"username": form.Username})
		return renderStatus(c, fiber.StatusUnauthorized, "login", fiber.Map{
			"Err":      "Invalid username or password.",
			"Username": form.Username,
		})
	}
	if err != nil {
		log.Error(c, "auth.login.error", err, map[string]any{"username": form.Username})
		return renderStatus(c, fiber.StatusInternalServerError, "login", fiber.Map{
			"Err": "Something went wrong. Please try again.",
		})
	}

	h.dropSession(c)
	h.setSession(c, sid, time.Time{})
	setIdentity(c, u)
	log.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	return c.Redirect("/view_stock")
}

// GET|POST /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.dropSession(c)
	// expire cookie
	h.setSession(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}
