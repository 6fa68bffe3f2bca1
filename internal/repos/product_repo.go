package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cafestock/internal/domain"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

// InsertProduct stores p and sets its ID.
func (r *ProductRepo) InsertProduct(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products(name, description, category, price, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.Category, p.Price.StringFixed(2), p.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ProductRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM products WHERE id = ?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
		SELECT id, name, description, category, price, created_at
		FROM products
		ORDER BY id
	`)
	return out, err
}
