package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cafestock/internal/domain"
)

type StockRepo struct{ db sqlx.ExtContext }

func NewStockRepo(db sqlx.ExtContext) *StockRepo { return &StockRepo{db: db} }

// CreateStockRow provisions the zero-quantity row for a new product.
func (r *StockRepo) CreateStockRow(ctx context.Context, productID int64, at string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock(product_id, quantity, updated_at) VALUES (?, 0, ?)
	`, productID, at)
	return err
}

// StockQty returns the on-hand quantity and whether a stock row exists.
func (r *StockRepo) StockQty(ctx context.Context, productID int64) (int, bool, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, `SELECT quantity FROM stock WHERE product_id = ?`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return qty, true, nil
}

// AdjustStock applies delta to the product's row. An existing row is only
// updated while the result stays non-negative; an absent row is created for a
// positive delta and rejected otherwise.
func (r *StockRepo) AdjustStock(ctx context.Context, productID int64, delta int, at string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stock SET quantity = quantity + ?, updated_at = ?
		WHERE product_id = ? AND quantity + ? >= 0
	`, delta, at, productID, delta)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		qty, _, err := r.StockQty(ctx, productID)
		return qty, err
	}

	qty, found, err := r.StockQty(ctx, productID)
	if err != nil {
		return 0, err
	}
	if found || delta < 0 {
		return 0, &domain.InsufficientStockError{ProductID: productID, Have: qty, Need: -delta}
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO stock(product_id, quantity, updated_at) VALUES (?, ?, ?)
	`, productID, delta, at); err != nil {
		return 0, err
	}
	return delta, nil
}

// SetStock overwrites the quantity, creating the row when absent.
func (r *StockRepo) SetStock(ctx context.Context, productID int64, qty int, at string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock(product_id, quantity, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET quantity = excluded.quantity, updated_at = excluded.updated_at
	`, productID, qty, at)
	return err
}

func (r *StockRepo) DeleteStock(ctx context.Context, productID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stock WHERE product_id = ?`, productID)
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

// ListView left-joins products with stock; missing rows show quantity 0.
func (r *StockRepo) ListView(ctx context.Context) ([]domain.StockView, error) {
	out := []domain.StockView{}
	err := sqlx.SelectContext(ctx, r.db, &out, viewSQL+` ORDER BY p.id`)
	return out, err
}

func (r *StockRepo) View(ctx context.Context, productID int64) (domain.StockView, error) {
	var v domain.StockView
	err := sqlx.GetContext(ctx, r.db, &v, viewSQL+` WHERE p.id = ?`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockView{}, domain.ErrNotFound
	}
	return v, err
}

const viewSQL = `
	SELECT p.id AS product_id, p.name, p.category, p.price,
	       COALESCE(s.quantity, 0) AS quantity,
	       s.product_id IS NOT NULL AS has_stock,
	       COALESCE(s.updated_at, '') AS updated_at
	FROM products p
	LEFT JOIN stock s ON s.product_id = p.id`
