package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestock/internal/domain"
	"cafestock/internal/repos"
)

const stamp = "2025-01-02 03:04:05.000000"

func newStore(t *testing.T) *repos.Store {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewStore(db)
}

func seedProduct(t *testing.T, s *repos.Store, name string) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Price: decimal.RequireFromString("3.50"), CreatedAt: stamp}
	require.NoError(t, s.Products.InsertProduct(context.Background(), &p))
	return p
}

func seedUser(t *testing.T, s *repos.Store, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Hash: "$2a$04$x", Role: domain.RoleStaff, CreatedAt: stamp}
	require.NoError(t, s.Users.Create(context.Background(), u))
	return u
}

func TestProductPriceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "Espresso")

	list, err := s.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
	assert.Equal(t, "Espresso", list[0].Name)
	assert.Equal(t, "3.50", list[0].Price.StringFixed(2))

	ok, err := s.Products.Exists(ctx, p.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdjustStockCreatesRowOnInbound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "Milk")

	_, found, err := s.Stock.StockQty(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, found)

	qty, err := s.Stock.AdjustStock(ctx, p.ID, 4, stamp)
	require.NoError(t, err)
	assert.Equal(t, 4, qty)

	qty, err = s.Stock.AdjustStock(ctx, p.ID, 6, stamp)
	require.NoError(t, err)
	assert.Equal(t, 10, qty)
}

func TestAdjustStockNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "Beans")
	require.NoError(t, s.Stock.CreateStockRow(ctx, p.ID, stamp))
	_, err := s.Stock.AdjustStock(ctx, p.ID, 5, stamp)
	require.NoError(t, err)

	_, err = s.Stock.AdjustStock(ctx, p.ID, -6, stamp)
	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 5, short.Have)
	assert.Equal(t, 6, short.Need)

	qty, found, err := s.Stock.StockQty(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 5, qty)

	// absent row cannot go below zero either
	other := seedProduct(t, s, "Cups")
	_, err = s.Stock.AdjustStock(ctx, other.ID, -1, stamp)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestStockViewShowsZeroWithoutRow(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	a := seedProduct(t, s, "Tea")
	b := seedProduct(t, s, "Sugar")
	require.NoError(t, s.Stock.SetStock(ctx, a.ID, 9, stamp))

	rows, err := s.Stock.ListView(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 9, rows[0].Quantity)
	assert.True(t, rows[0].HasStock)
	assert.Equal(t, 0, rows[1].Quantity)
	assert.False(t, rows[1].HasStock)
	assert.Equal(t, b.ID, rows[1].ProductID)

	require.NoError(t, s.Stock.DeleteStock(ctx, a.ID))
	v, err := s.Stock.View(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Quantity)
	assert.ErrorIs(t, s.Stock.DeleteStock(ctx, a.ID), domain.ErrNotFound)
}

func TestLedgerListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "Syrup")
	u := seedUser(t, s, "barista")

	dates := []string{
		"2025-01-01 09:00:00.000000",
		"2025-03-01 09:00:00.000000",
		"2025-02-01 09:00:00.000000",
	}
	for _, d := range dates {
		require.NoError(t, s.Ledger.AppendLedgerEntry(ctx, &domain.Transaction{
			ProductID: p.ID, UserID: u.ID, Type: domain.Inbound, Quantity: 1, Date: d,
		}))
	}

	list, err := s.Ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, dates[1], list[0].Date)
	assert.Equal(t, dates[2], list[1].Date)
	assert.Equal(t, dates[0], list[2].Date)
	assert.Equal(t, "Syrup", list[0].ProductName)
	assert.Equal(t, "barista", list[0].Username)
}

func TestLedgerEditAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	p := seedProduct(t, s, "Lids")
	u := seedUser(t, s, "owner")
	tx := &domain.Transaction{ProductID: p.ID, UserID: u.ID, Type: domain.Inbound, Quantity: 3, Date: stamp}
	require.NoError(t, s.Ledger.AppendLedgerEntry(ctx, tx))
	require.NotZero(t, tx.ID)

	require.NoError(t, s.Ledger.EditLedgerEntry(ctx, tx.ID, domain.Outbound, 2, "recount"))
	got, err := s.Ledger.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Outbound, got.Type)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, "recount", got.Notes)

	require.NoError(t, s.Ledger.DeleteLedgerEntry(ctx, tx.ID))
	assert.ErrorIs(t, s.Ledger.DeleteLedgerEntry(ctx, tx.ID), domain.ErrNotFound)
	assert.ErrorIs(t, s.Ledger.EditLedgerEntry(ctx, tx.ID, domain.Inbound, 1, ""), domain.ErrNotFound)
	n, err := s.Ledger.CountForProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserUniqueUsername(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "alice")

	dup := &domain.User{Username: "ALICE", Hash: "h", Role: domain.RoleStaff, CreatedAt: stamp}
	assert.ErrorIs(t, s.Users.Create(ctx, dup), domain.ErrUsernameTaken)

	n, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, err := s.Users.ByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestSessionsBindResolvePurge(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	u := seedUser(t, s, "bob")

	require.NoError(t, s.Users.BindSession(ctx, "sid-old", u.ID, "2025-01-01 00:00:00.000000"))
	require.NoError(t, s.Users.BindSession(ctx, "sid-new", u.ID, "2025-06-01 00:00:00.000000"))

	got, err := s.Users.SessionUser(ctx, "sid-new", "2025-05-01 00:00:00.000000")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Users.SessionUser(ctx, "sid-old", "2025-05-01 00:00:00.000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := s.Users.PurgeSessions(ctx, "2025-05-01 00:00:00.000000")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, s.Users.UnbindSession(ctx, "sid-new"))
	_, err = s.Users.SessionUser(ctx, "sid-new", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	boom := errors.New("boom")

	err := s.InTx(ctx, func(r *repos.Repos) error {
		p := domain.Product{Name: "Ghost", Price: decimal.Zero, CreatedAt: stamp}
		if err := r.Products.InsertProduct(ctx, &p); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, err := s.Products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
