package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cafestock/internal/domain"
)

type LedgerRepo struct{ db sqlx.ExtContext }

func NewLedgerRepo(db sqlx.ExtContext) *LedgerRepo { return &LedgerRepo{db: db} }

// AppendLedgerEntry inserts t and sets its ID.
func (r *LedgerRepo) AppendLedgerEntry(ctx context.Context, t *domain.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transaction_history(product_id, user_id, transaction_type, quantity, transaction_date, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ProductID, t.UserID, string(t.Type), t.Quantity, t.Date, t.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *LedgerRepo) Get(ctx context.Context, id int64) (domain.TransactionView, error) {
	var v domain.TransactionView
	err := sqlx.GetContext(ctx, r.db, &v, listSQL+` WHERE t.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TransactionView{}, domain.ErrNotFound
	}
	return v, err
}

// EditLedgerEntry rewrites the correctable fields of one row in place.
func (r *LedgerRepo) EditLedgerEntry(ctx context.Context, id int64, typ domain.TransactionType, qty int, notes string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transaction_history
		SET transaction_type = ?, quantity = ?, notes = ?
		WHERE id = ?
	`, string(typ), qty, notes, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LedgerRepo) DeleteLedgerEntry(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transaction_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns the ledger newest first.
func (r *LedgerRepo) List(ctx context.Context) ([]domain.TransactionView, error) {
	out := []domain.TransactionView{}
	err := sqlx.SelectContext(ctx, r.db, &out, listSQL+` ORDER BY t.transaction_date DESC, t.id DESC`)
	return out, err
}

func (r *LedgerRepo) CountForProduct(ctx context.Context, productID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM transaction_history WHERE product_id = ?`, productID)
	return n, err
}

const listSQL = `
	SELECT t.id, t.product_id, t.user_id, t.transaction_type, t.quantity, t.transaction_date, t.notes,
	       COALESCE(p.name, '') AS product_name,
	       COALESCE(u.username, '') AS username
	FROM transaction_history t
	LEFT JOIN products p ON p.id = t.product_id
	LEFT JOIN users u ON u.id = t.user_id`
