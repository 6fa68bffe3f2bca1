package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cafestock/internal/config"
	"cafestock/internal/domain"
	applog "cafestock/internal/log"
	"cafestock/web"
)

// NewEngine loads templates from dir, or the embedded set when dir is empty.
func NewEngine(dir string) *html.Engine {
	var engine *html.Engine
	if dir != "" {
		engine = html.New(dir, ".html")
		engine.Reload(true)
	} else {
		engine = html.NewFileSystem(http.FS(web.Templates()), ".html")
	}
	engine.AddFunc("money", func(d decimal.Decimal) string { return d.StringFixed(2) })
	return engine
}

// ErrorHandler shows a friendly page; details only go to the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		status = fe.Code
		msg = "The request could not be processed."
	}
	applog.Error(c, "server.error", err, map[string]any{"status": status})
	if rerr := c.Status(status).Render("error", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}

// NewApp wires middleware and routes over db.
func NewApp(db *sqlx.DB, cfg config.Config) (*fiber.App, *Deps) {
	cfg = cfg.Defaults()
	deps := NewDeps(db, cfg)

	app := fiber.New(fiber.Config{
		AppName:               "cafestock",
		Views:                 NewEngine(cfg.Templates),
		ErrorHandler:          ErrorHandler,
		BodyLimit:             1 << 20, // 1 MiB
		DisableStartupMessage: true,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(AttachUser(deps.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "error", fiber.Map{"Message": "Too many requests. Please slow down."})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     csrfCookie,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("error", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok && tok != "" {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Public ----------
	home := deps.HomeHandler
	app.Get("/", home.Index)
	app.Get("/healthz", home.Health)

	authH := deps.AuthHandler
	app.Get("/register_user", authH.RegisterForm)
	app.Post("/register_user", authH.Register)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimitMax,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return renderStatus(c, fiber.StatusTooManyRequests, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Get("/logout", authH.Logout)
	app.Post("/logout", authH.Logout)

	// ---------- Session required ----------
	user := RequireUser(deps.Auth)
	admin := RequireRole(domain.RoleAdmin)

	prodH := deps.ProductHandler
	app.Get("/register", user, prodH.RegisterForm)
	app.Post("/register", user, prodH.Register)
	app.Get("/products", user, prodH.List)

	stockH := deps.StockHandler
	app.Get("/view_stock", user, stockH.View)

	txH := deps.TransactionHandler
	for _, p := range []string{"/update_stock", "/register_transaction"} {
		app.Get(p, user, txH.Form)
		app.Post(p, user, txH.Apply)
	}
	for _, p := range []string{"/transaction_list", "/view_transaction_history"} {
		app.Get(p, user, txH.List)
	}

	// ---------- Ledger and stock maintenance ----------
	app.Get("/edit_transaction/:id", user, admin, txH.EditForm)
	app.Post("/edit_transaction/:id", user, admin, txH.Edit)
	app.Get("/delete_transaction/:id", user, admin, txH.Delete)
	app.Post("/delete_transaction/:id", user, admin, txH.Delete)

	app.Get("/edit_stock/:product_id", user, admin, stockH.EditForm)
	app.Post("/edit_stock/:product_id", user, admin, stockH.Edit)
	app.Get("/delete_stock/:product_id", user, admin, stockH.Delete)
	app.Post("/delete_stock/:product_id", user, admin, stockH.Delete)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return renderStatus(c, fiber.StatusNotFound, "error", fiber.Map{"Message": "Page not found"})
	})

	return app, deps
}
