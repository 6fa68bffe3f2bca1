package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "cafestock/internal/log"
	"cafestock/internal/services"
)

type HomeHandler struct {
	Catalog *services.CatalogService
}

// GET / reports whether the database answers.
func (h *HomeHandler) Index(c *fiber.Ctx) error {
	err := h.Catalog.Ping(c.UserContext())
	if err != nil {
		applog.Error(c, "db.ping.fail", err, nil)
	}
	return render(c, "index", fiber.Map{"DBOK": err == nil})
}

// GET /healthz
func (h *HomeHandler) Health(c *fiber.Ctx) error {
	if err := h.Catalog.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false, "db": "down"})
	}
	return c.JSON(fiber.Map{"ok": true, "db": "up"})
}
