package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"cafestock/internal/domain"
	"cafestock/internal/repos"
)

// TransactionInput is one stock movement requested by an authenticated user.
type TransactionInput struct {
	ProductID int64
	Type      domain.TransactionType
	Quantity  int
	UserID    int64
	Notes     string
	At        time.Time // zero means now
}

type LedgerService struct {
	Store *repos.Store
	Now   func() time.Time
}

func NewLedgerService(store *repos.Store) *LedgerService { return &LedgerService{Store: store} }

// ApplyTransaction adjusts the product's stock and appends the matching
// ledger row in one transaction, returning the new on-hand quantity.
func (s *LedgerService) ApplyTransaction(ctx context.Context, in TransactionInput) (int, error) {
	if in.Quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	if !in.Type.Valid() {
		return 0, domain.ErrInvalidType
	}
	if in.UserID <= 0 {
		return 0, domain.ErrUnauthorized
	}
	at := in.At
	if at.IsZero() {
		at = now(s.Now)
	}
	stamp := domain.FormatTime(at)

	var newQty int
	err := s.Store.InTx(ctx, func(r *repos.Repos) error {
		ok, err := r.Products.Exists(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrUnknownProduct
		}

		cur, found, err := r.Stock.StockQty(ctx, in.ProductID)
		if err != nil {
			return err
		}
		delta := in.Quantity
		if in.Type == domain.Outbound {
			// no negative-from-absent case
			if !found || cur < in.Quantity {
				return &domain.InsufficientStockError{ProductID: in.ProductID, Have: cur, Need: in.Quantity}
			}
			delta = -in.Quantity
		} else if cur > math.MaxInt-in.Quantity {
			// SQLite would promote the sum to REAL
			return domain.ErrInvalidQuantity
		}

		newQty, err = r.Stock.AdjustStock(ctx, in.ProductID, delta, stamp)
		if err != nil {
			return err
		}
		return r.Ledger.AppendLedgerEntry(ctx, &domain.Transaction{
			ProductID: in.ProductID,
			UserID:    in.UserID,
			Type:      in.Type,
			Quantity:  in.Quantity,
			Date:      stamp,
			Notes:     strings.TrimSpace(in.Notes),
		})
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// EditTransaction corrects a recorded entry. Stock is not recomputed, so the
// ledger can drift from the live quantity.
func (s *LedgerService) EditTransaction(ctx context.Context, id int64, qty int, typ domain.TransactionType, notes string) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}
	if !typ.Valid() {
		return domain.ErrInvalidType
	}
	if err := s.Store.Ledger.EditLedgerEntry(ctx, id, typ, qty, strings.TrimSpace(notes)); err != nil {
		return fmt.Errorf("edit transaction %d: %w", id, err)
	}
	return nil
}

// DeleteTransaction removes a ledger row without touching stock.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.Store.Ledger.DeleteLedgerEntry(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (domain.TransactionView, error) {
	return s.Store.Ledger.Get(ctx, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]domain.TransactionView, error) {
	return s.Store.Ledger.List(ctx)
}
