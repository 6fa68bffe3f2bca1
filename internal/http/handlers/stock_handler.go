package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cafestock/internal/domain"
	applog "cafestock/internal/log"
	"cafestock/internal/services"
	"cafestock/internal/validate"
)

type StockHandler struct {
	Catalog *services.CatalogService
}

// GET /view_stock
func (h *StockHandler) View(c *fiber.Ctx) error {
	rows, err := h.Catalog.ViewStock(c.UserContext())
	if err != nil {
		return fail(c, "stock.view.fail", err, nil)
	}
	return render(c, "view_stock", fiber.Map{"Rows": rows})
}

func productParam(c *fiber.Ctx) (int64, bool) {
	return validate.ID(c.Params("product_id"))
}

// GET /edit_stock/:product_id
func (h *StockHandler) EditForm(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return fail(c, "stock.edit.fail", domain.ErrNotFound, nil)
	}
	row, err := h.Catalog.GetStock(c.UserContext(), pid)
	if err != nil {
		return fail(c, "stock.edit.fail", err, map[string]any{"product_id": pid})
	}
	return render(c, "edit_stock", fiber.Map{"Row": row, "Err": ""})
}

// POST /edit_stock/:product_id overwrites the quantity without a ledger entry.
func (h *StockHandler) Edit(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return fail(c, "stock.edit.fail", domain.ErrNotFound, nil)
	}
	row, err := h.Catalog.GetStock(c.UserContext(), pid)
	if err != nil {
		return fail(c, "stock.edit.fail", err, map[string]any{"product_id": pid})
	}

	form := validate.StockForm{Quantity: c.FormValue("quantity")}
	qty, okQty := validate.Qty(form.Quantity)
	if errs := validate.Struct(form); len(errs) > 0 || !okQty {
		err := validate.Err(errs)
		if err == nil {
			err = domain.ErrInvalidQuantity
		}
		applog.Security(c, "validation.fail", map[string]any{"form": "edit_stock", "product_id": pid})
		return renderStatus(c, fiber.StatusBadRequest, "edit_stock", fiber.Map{"Row": row, "Err": err.Error()})
	}

	if err := h.Catalog.EditStock(c.UserContext(), pid, qty); err != nil {
		return fail(c, "stock.edit.fail", err, map[string]any{"product_id": pid})
	}
	// this write path bypasses the ledger; record it so drift can be traced
	applog.Audit(c, "stock.edit.unledgered", map[string]any{"product_id": pid, "from": row.Quantity, "to": qty})
	return c.Redirect("/view_stock")
}

// GET|POST /delete_stock/:product_id
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return fail(c, "stock.delete.fail", domain.ErrNotFound, nil)
	}
	if err := h.Catalog.DeleteStock(c.UserContext(), pid); err != nil {
		return fail(c, "stock.delete.fail", err, map[string]any{"product_id": pid})
	}
	applog.Audit(c, "stock.delete", map[string]any{"product_id": pid})
	return c.Redirect("/view_stock")
}
