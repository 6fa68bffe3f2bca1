package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer, and every ":memory:" connection is its own
	// database, so all access goes through one connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_nocase ON users(LOWER(username));

-- Products (names are not unique)
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  created_at TEXT NOT NULL
);

-- Stock: at most one row per product, absence means zero
CREATE TABLE IF NOT EXISTS stock(
  product_id INTEGER PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  updated_at TEXT NOT NULL
);

-- Ledger
CREATE TABLE IF NOT EXISTS transaction_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id),
  user_id INTEGER NOT NULL REFERENCES users(id),
  transaction_type TEXT NOT NULL CHECK (transaction_type IN ('inbound','outbound')),
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  transaction_date TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_tx_date    ON transaction_history(transaction_date);
CREATE INDEX IF NOT EXISTS idx_tx_product ON transaction_history(product_id);

-- Sessions: id is the 'sid' cookie value
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// Repos bundles every repository bound to the same handle (DB or Tx).
type Repos struct {
	Products *ProductRepo
	Stock    *StockRepo
	Ledger   *LedgerRepo
	Users    *UserRepo
}

func newRepos(ext sqlx.ExtContext) *Repos {
	return &Repos{
		Products: NewProductRepo(ext),
		Stock:    NewStockRepo(ext),
		Ledger:   NewLedgerRepo(ext),
		Users:    NewUserRepo(ext),
	}
}

// Store owns the DB handle and hands out repositories.
type Store struct {
	DB *sqlx.DB
	*Repos
}

func NewStore(db *sqlx.DB) *Store { return &Store{DB: db, Repos: newRepos(db)} }

// InTx runs fn with repositories bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(r *Repos) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }
