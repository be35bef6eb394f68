package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"shopmart/internal/config"
	"shopmart/internal/http/handlers"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

// newApp wires the full route set against a seeded in-memory store, the way
// main does, minus rate limiting.
func newApp(t *testing.T) (*fiber.App, *sqlx.DB, *repos.UserRepo) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", MediaDir: "../../web/media"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/inventory/bulk-")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, cfg, authSvc)
	authH := deps.AuthHandler
	user := handlers.RequireUser(authSvc)
	admin := handlers.RequireAdmin(authSvc)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)

	app.Get("/shopping", user, deps.ShopHandler.Browse)
	app.Get("/cart", user, deps.CartHandler.View)
	app.Post("/add-to-cart/:id", user, deps.CartHandler.Add)
	app.Post("/payment", user, deps.PaymentHandler.Process)
	app.Get("/invoice/:id", user, deps.PaymentHandler.Invoice)
	app.Get("/orders", user, deps.OrderHandler.History)

	app.Get("/admin", admin, deps.AdminHandler.Dashboard)
	app.Post("/inventory/bulk-restock", admin, deps.AdminHandler.BulkRestock)

	return app, db, userRepo
}

func seededUserID(t *testing.T, db *sqlx.DB, email string) int64 {
	t.Helper()
	var id int64
	if err := db.Get(&id, `SELECT id FROM users WHERE email = ?`, email); err != nil {
		t.Fatalf("lookup %s: %v", email, err)
	}
	return id
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
