package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "cafestock/internal/log"
	"cafestock/internal/services"
	"cafestock/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /register
func (h *ProductHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register_product", fiber.Map{"Err": ""})
}

// POST /register
func (h *ProductHandler) Register(c *fiber.Ctx) error {
	form := validate.ProductForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Category:    strings.TrimSpace(c.FormValue("category")),
		Price:       strings.TrimSpace(c.FormValue("price")),
	}
	back := fiber.Map{"Form": form}
	if errs := validate.Struct(form); len(errs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "register_product", "fields": validate.Fields(errs)})
		back["Err"] = validate.Err(errs).Error()
		return renderStatus(c, fiber.StatusBadRequest, "register_product", back)
	}
	price, _ := validate.Price(form.Price)

	p, err := h.Catalog.RegisterProduct(c.UserContext(), services.ProductInput{
		Name:        form.Name,
		Description: form.Description,
		Category:    form.Category,
		Price:       price,
	})
	if err != nil {
		// rolled back; keep the message generic
		applog.Error(c, "product.register.fail", err, map[string]any{"name": form.Name})
		back["Err"] = "An error occurred while registering the product."
		return renderStatus(c, statusFor(err), "register_product", back)
	}
	applog.Audit(c, "product.register", map[string]any{"product_id": p.ID, "name": p.Name, "price": p.Price.StringFixed(2)})
	return c.Redirect("/products")
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.ListProducts(c.UserContext())
	if err != nil {
		return fail(c, "product.list.fail", err, nil)
	}
	return render(c, "product_list", fiber.Map{"Products": products})
}
