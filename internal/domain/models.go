package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is fixed width so TEXT columns sort chronologically.
const TimeLayout = "2006-01-02 15:04:05.000000"

func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

type Product struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Category    string          `db:"category"`
	Price       decimal.Decimal `db:"price"`
	CreatedAt   string          `db:"created_at"`
}

type Stock struct {
	ProductID int64  `db:"product_id"`
	Quantity  int    `db:"quantity"`
	UpdatedAt string `db:"updated_at"`
}

// StockView is one line of /view_stock: every product, quantity 0 without a stock row.
type StockView struct {
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Category  string          `db:"category"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
	HasStock  bool            `db:"has_stock"`
	UpdatedAt string          `db:"updated_at"`
}

type TransactionType string

const (
	Inbound  TransactionType = "inbound"
	Outbound TransactionType = "outbound"
)

func (t TransactionType) Valid() bool { return t == Inbound || t == Outbound }

// Transaction is one ledger row.
type Transaction struct {
	ID        int64           `db:"id"`
	ProductID int64           `db:"product_id"`
	UserID    int64           `db:"user_id"`
	Type      TransactionType `db:"transaction_type"`
	Quantity  int             `db:"quantity"`
	Date      string          `db:"transaction_date"`
	Notes     string          `db:"notes"`
}

// TransactionView adds the human readable joins used by the history pages.
type TransactionView struct {
	Transaction
	ProductName string `db:"product_name"`
	Username    string `db:"username"`
}
