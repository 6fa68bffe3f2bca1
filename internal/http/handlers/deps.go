package handlers

import (
	"github.com/jmoiron/sqlx"

	"cafestock/internal/config"
	"cafestock/internal/repos"
	"cafestock/internal/services"
)

type Deps struct {
	Store   *repos.Store
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Ledger  *services.LedgerService

	AuthHandler        *AuthHandler
	HomeHandler        *HomeHandler
	ProductHandler     *ProductHandler
	StockHandler       *StockHandler
	TransactionHandler *TransactionHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	cfg = cfg.Defaults()
	store := repos.NewStore(db)

	authSvc := &services.AuthService{Store: store, Cost: cfg.BcryptCost, TTL: cfg.SessionTTL}
	catalogSvc := services.NewCatalogService(store)
	ledgerSvc := services.NewLedgerService(store)

	return &Deps{
		Store:   store,
		Auth:    authSvc,
		Catalog: catalogSvc,
		Ledger:  ledgerSvc,

		AuthHandler:        &AuthHandler{Auth: authSvc, CookieSecure: cfg.CookieSecure},
		HomeHandler:        &HomeHandler{Catalog: catalogSvc},
		ProductHandler:     &ProductHandler{Catalog: catalogSvc},
		StockHandler:       &StockHandler{Catalog: catalogSvc},
		TransactionHandler: &TransactionHandler{Ledger: ledgerSvc, Catalog: catalogSvc},
	}
}
