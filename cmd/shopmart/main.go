package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"shopmart/internal/config"
	"shopmart/internal/http/handlers"
	applog "shopmart/internal/log"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and show a friendly message
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			// The bulk inventory actions post JSON from same-origin scripts
			return strings.HasPrefix(c.Path(), "/inventory/bulk-")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			formTok := c.FormValue("csrf")
			applog.Security(c, "csrf.fail", map[string]any{"form": formTok})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /static -> ./web/static")
	log.Printf("[static] /media  -> %s", mediaDir)

	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		full := filepath.Join(mediaDir, clean)
		return c.SendFile(full, true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, authSvc)
	authH := deps.AuthHandler
	user := handlers.RequireUser(authSvc)
	admin := handlers.RequireAdmin(authSvc)

	// Public pages
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/shopping") })
	app.Get("/register", authH.RegisterForm)
	app.Post("/register", authH.Register)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// Storefront
	app.Get("/shopping", user, deps.ShopHandler.Browse)
	app.Get("/product/:id", user, deps.ShopHandler.Detail)

	// Cart
	app.Get("/cart", user, deps.CartHandler.View)
	app.Post("/add-to-cart/:id", user, deps.CartHandler.Add)
	app.Post("/cart/update/:itemId", user, deps.CartHandler.Update)
	app.Post("/cart/delete/:itemId", user, deps.CartHandler.Delete)
	app.Post("/cart/checkout", user, deps.CartHandler.CheckoutSelected)

	// Payment & orders
	app.Get("/payment", user, deps.PaymentHandler.Page)
	app.Post("/payment", user, deps.PaymentHandler.Process)
	app.Get("/payment-success", user, deps.PaymentHandler.Success)
	app.Get("/orders", user, deps.OrderHandler.History)
	app.Get("/invoice", user, deps.PaymentHandler.InvoiceIndex)
	app.Get("/invoice/:id", user, deps.PaymentHandler.Invoice)

	// Profile
	app.Get("/user/profile", user, authH.Profile)
	app.Post("/user/update-profile", user, authH.UpdateProfile)
	app.Post("/user/change-password", user, authH.ChangePassword)
	app.Post("/update-address", user, authH.UpdateAddress)

	// Admin
	app.Get("/admin", admin, deps.AdminHandler.Dashboard)
	app.Get("/admin/orders", admin, deps.AdminHandler.OrdersPage)
	app.Get("/admin/users", admin, deps.AdminHandler.UsersPage)
	app.Post("/admin/users/:id/delete", admin, deps.AdminHandler.DeleteUser)
	app.Get("/admin/sales-reports", admin, deps.AdminHandler.SalesReports)
	app.Get("/inventory", admin, deps.AdminHandler.Inventory)
	app.Get("/addProduct", admin, deps.AdminHandler.AddProductForm)
	app.Post("/addProduct", admin, deps.AdminHandler.AddProduct)
	app.Get("/updateProduct/:id", admin, deps.AdminHandler.EditProductForm)
	app.Post("/updateProduct/:id", admin, deps.AdminHandler.UpdateProduct)
	app.Post("/deleteProduct/:id", admin, deps.AdminHandler.DeleteProduct)
	app.Post("/inventory/bulk-restock", admin, deps.AdminHandler.BulkRestock)
	app.Post("/inventory/bulk-delete", admin, deps.AdminHandler.BulkDelete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
