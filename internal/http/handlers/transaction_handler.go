package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"cafestock/internal/domain"
	applog "cafestock/internal/log"
	"cafestock/internal/services"
	"cafestock/internal/validate"
)

type TransactionHandler struct {
	Ledger  *services.LedgerService
	Catalog *services.CatalogService
}

func (h *TransactionHandler) renderForm(c *fiber.Ctx, status int, form validate.TransactionForm, msg string) error {
	rows, err := h.Catalog.ViewStock(c.UserContext())
	if err != nil {
		return fail(c, "ledger.form.fail", err, nil)
	}
	return renderStatus(c, status, "register_transaction", fiber.Map{
		"Rows": rows,
		"Form": form,
		"Err":  msg,
	})
}

// GET /update_stock, /register_transaction
func (h *TransactionHandler) Form(c *fiber.Ctx) error {
	form := validate.TransactionForm{
		ProductID: c.Query("product_id"),
		Type:      string(domain.Inbound),
	}
	return h.renderForm(c, fiber.StatusOK, form, "")
}

// POST /update_stock, /register_transaction
func (h *TransactionHandler) Apply(c *fiber.Ctx) error {
	form := validate.TransactionForm{
		ProductID: strings.TrimSpace(c.FormValue("product_id")),
		Type:      strings.ToLower(strings.TrimSpace(c.FormValue("transaction_type"))),
		Quantity:  strings.TrimSpace(c.FormValue("quantity")),
		Notes:     strings.TrimSpace(c.FormValue("notes")),
	}
	if errs := validate.Struct(form); len(errs) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "transaction", "fields": validate.Fields(errs)})
		return h.renderForm(c, fiber.StatusBadRequest, form, validate.Err(errs).Error())
	}
	qty, err := strconv.Atoi(form.Quantity)
	if err != nil {
		return h.renderForm(c, fiber.StatusBadRequest, form, domain.ErrInvalidQuantity.Error())
	}
	pid, ok := validate.ID(form.ProductID)
	if !ok {
		return h.renderForm(c, fiber.StatusNotFound, form, messageFor(domain.ErrUnknownProduct))
	}

	u := services.UserFrom(c.UserContext())
	if u == nil {
		u = currentUser(c)
	}
	if u == nil {
		return fail(c, "ledger.apply.fail", domain.ErrUnauthorized, nil)
	}

	fields := map[string]any{"product_id": pid, "type": form.Type, "quantity": qty}
	newQty, err := h.Ledger.ApplyTransaction(c.UserContext(), services.TransactionInput{
		ProductID: pid,
		Type:      domain.TransactionType(form.Type),
		Quantity:  qty,
		UserID:    u.ID,
		Notes:     form.Notes,
	})
	var short *domain.InsufficientStockError
	switch {
	case errors.As(err, &short):
		applog.Security(c, "ledger.insufficient", mergeFields(fields, map[string]any{"have": short.Have}))
		return h.renderForm(c, fiber.StatusConflict, form, "Not enough stock: "+strconv.Itoa(short.Have)+" on hand, "+strconv.Itoa(short.Need)+" requested.")
	case err != nil && statusFor(err) != fiber.StatusInternalServerError:
		applog.Info(c, "ledger.apply.rejected", mergeFields(fields, map[string]any{"reason": err.Error()}))
		return h.renderForm(c, statusFor(err), form, messageFor(err))
	case err != nil:
		return fail(c, "ledger.apply.fail", err, fields)
	}

	applog.Audit(c, "ledger.apply", mergeFields(fields, map[string]any{"new_quantity": newQty}))
	return c.Redirect("/transaction_list")
}

// GET /transaction_list, /view_transaction_history
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	txs, err := h.Ledger.ListTransactions(c.UserContext())
	if err != nil {
		return fail(c, "ledger.list.fail", err, nil)
	}
	return render(c, "transaction_list", fiber.Map{"Transactions": txs})
}

// GET /edit_transaction/:id
func (h *TransactionHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "ledger.edit.fail", domain.ErrNotFound, nil)
	}
	t, err := h.Ledger.GetTransaction(c.UserContext(), id)
	if err != nil {
		return fail(c, "ledger.edit.fail", err, map[string]any{"transaction_id": id})
	}
	return render(c, "edit_transaction", fiber.Map{"T": t, "Err": ""})
}

// POST /edit_transaction/:id rewrites the entry; stock is left as is.
func (h *TransactionHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "ledger.edit.fail", domain.ErrNotFound, nil)
	}
	t, err := h.Ledger.GetTransaction(c.UserContext(), id)
	if err != nil {
		return fail(c, "ledger.edit.fail", err, map[string]any{"transaction_id": id})
	}

	form := validate.EditTransactionForm{
		Type:     strings.ToLower(strings.TrimSpace(c.FormValue("transaction_type"))),
		Quantity: strings.TrimSpace(c.FormValue("quantity")),
		Notes:    strings.TrimSpace(c.FormValue("notes")),
	}
	qty, convErr := strconv.Atoi(form.Quantity)
	if errs := validate.Struct(form); len(errs) > 0 || convErr != nil {
		msg := domain.ErrInvalidQuantity.Error()
		if len(errs) > 0 {
			msg = validate.Err(errs).Error()
		}
		applog.Security(c, "validation.fail", map[string]any{"form": "edit_transaction", "transaction_id": id})
		return renderStatus(c, fiber.StatusBadRequest, "edit_transaction", fiber.Map{"T": t, "Err": msg})
	}

	if err := h.Ledger.EditTransaction(c.UserContext(), id, qty, domain.TransactionType(form.Type), form.Notes); err != nil {
		if statusFor(err) == fiber.StatusBadRequest {
			return renderStatus(c, fiber.StatusBadRequest, "edit_transaction", fiber.Map{"T": t, "Err": err.Error()})
		}
		return fail(c, "ledger.edit.fail", err, map[string]any{"transaction_id": id})
	}
	applog.Audit(c, "ledger.edit", map[string]any{
		"transaction_id": id,
		"from_type":      string(t.Type),
		"from_quantity":  t.Quantity,
		"type":           form.Type,
		"quantity":       qty,
		"unreconciled":   true,
	})
	return c.Redirect("/transaction_list")
}

// GET|POST /delete_transaction/:id
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "ledger.delete.fail", domain.ErrNotFound, nil)
	}
	if err := h.Ledger.DeleteTransaction(c.UserContext(), id); err != nil {
		return fail(c, "ledger.delete.fail", err, map[string]any{"transaction_id": id})
	}
	applog.Audit(c, "ledger.delete", map[string]any{"transaction_id": id})
	return c.Redirect("/transaction_list")
}
