package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cafestock/internal/domain"
	"cafestock/internal/repos"
)

type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
}

type CatalogService struct {
	Store *repos.Store
	Now   func() time.Time
}

func NewCatalogService(store *repos.Store) *CatalogService { return &CatalogService{Store: store} }

// RegisterProduct inserts the product together with its zero-quantity stock row.
func (s *CatalogService) RegisterProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price.Round(2),
		CreatedAt:   domain.FormatTime(now(s.Now)),
	}
	if p.Name == "" {
		return domain.Product{}, domain.ErrMissingField
	}
	if p.Price.IsNegative() {
		return domain.Product{}, domain.ErrInvalidInput
	}
	err := s.Store.InTx(ctx, func(r *repos.Repos) error {
		if err := r.Products.InsertProduct(ctx, &p); err != nil {
			return err
		}
		return r.Stock.CreateStockRow(ctx, p.ID, p.CreatedAt)
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("register product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.Store.Products.List(ctx)
}

func (s *CatalogService) ViewStock(ctx context.Context) ([]domain.StockView, error) {
	return s.Store.Stock.ListView(ctx)
}

func (s *CatalogService) GetStock(ctx context.Context, productID int64) (domain.StockView, error) {
	return s.Store.Stock.View(ctx, productID)
}

// EditStock overwrites the quantity directly. No ledger row is written.
func (s *CatalogService) EditStock(ctx context.Context, productID int64, qty int) error {
	if qty < 0 {
		return domain.ErrInvalidQuantity
	}
	return s.Store.InTx(ctx, func(r *repos.Repos) error {
		ok, err := r.Products.Exists(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		return r.Stock.SetStock(ctx, productID, qty, domain.FormatTime(now(s.Now)))
	})
}

func (s *CatalogService) DeleteStock(ctx context.Context, productID int64) error {
	return s.Store.Stock.DeleteStock(ctx, productID)
}

func (s *CatalogService) Ping(ctx context.Context) error { return s.Store.Ping(ctx) }
