package handlers

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopmart/internal/domain"
	errs "shopmart/internal/errors"
	applog "shopmart/internal/log"
	"shopmart/internal/repos"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type AdminHandler struct {
	Catalog  *services.CatalogService
	Order    *services.OrderService
	Users    *repos.UserRepo
	Prods    *repos.ProductRepo
	Orders   *repos.OrderRepo
	MediaDir string
}

// Dashboard is the admin landing page: headline counters plus the most
// recent orders and customers.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	userStats, err := h.Users.Stats()
	if err != nil {
		return h.fail(c, "admin.dashboard.fail", err)
	}
	prodStats, err := h.Prods.Stats()
	if err != nil {
		return h.fail(c, "admin.dashboard.fail", err)
	}
	orderStats, err := h.Orders.Stats()
	if err != nil {
		return h.fail(c, "admin.dashboard.fail", err)
	}
	recent, err := h.Order.AdminOrders()
	if err != nil {
		return h.fail(c, "admin.dashboard.fail", err)
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}
	customers, err := h.Users.ListCustomers(10)
	if err != nil {
		return h.fail(c, "admin.dashboard.fail", err)
	}

	return render(c, "admin", fiber.Map{
		"UserStats":    userStats,
		"ProductStats": prodStats,
		"OrderStats":   orderStats,
		"RecentOrders": recent,
		"Customers":    customers,
	})
}

// Inventory is the admin product listing with search, category filter,
// and stock sorting.
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	search, ok := validate.Search(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		search = ""
	}
	var categoryID int64
	if raw := c.Query("categoryId"); raw != "" {
		categoryID, _ = validate.ID(raw)
	}
	sortKey := validate.Sort(c.Query("sort"))

	cats, err := h.Catalog.Categories()
	if err != nil {
		return h.fail(c, "admin.inventory.fail", err)
	}
	products, err := h.Catalog.ListFiltered(search, categoryID, sortKey)
	if err != nil {
		return h.fail(c, "admin.inventory.fail", err)
	}
	for i := range products {
		products[i].Image = resolveImage(h.MediaDir, products[i].Image)
	}

	return render(c, "admin_inventory", fiber.Map{
		"Products":   products,
		"Categories": cats,
		"Q":          search,
		"CategoryID": categoryID,
		"Sort":       sortKey,
	})
}

func (h *AdminHandler) AddProductForm(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories()
	if err != nil {
		return h.fail(c, "admin.product.form.fail", err)
	}
	return render(c, "product_form", fiber.Map{"Categories": cats})
}

func (h *AdminHandler) EditProductForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return h.fail(c, "admin.product.form.fail", err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	cats, err := h.Catalog.Categories()
	if err != nil {
		return h.fail(c, "admin.product.form.fail", err)
	}
	return render(c, "product_form", fiber.Map{"Categories": cats, "P": p})
}

// parseProductForm reads the shared add/edit form fields. The image upload is
// optional; when absent, currentImage is kept.
func (h *AdminHandler) parseProductForm(c *fiber.Ctx, currentImage string) (domain.Product, string) {
	var p domain.Product

	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return p, "Enter a valid product name."
	}
	qty, err := strconv.Atoi(c.FormValue("quantity"))
	if err != nil || qty < 0 {
		return p, "Quantity must be a non-negative number."
	}
	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil || price.IsNegative() {
		return p, "Enter a valid price."
	}

	var categoryID sql.NullInt64
	if raw := c.FormValue("categoryId"); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return p, "Unknown category."
		}
		categoryID = sql.NullInt64{Int64: id, Valid: true}
	}

	// Images are referenced by filename under the media dir; only the
	// basename is honored.
	image := currentImage
	if raw := c.FormValue("image"); raw != "" {
		if file := filepath.Base(raw); file != "" && file != "." && file != "/" {
			image = file
		}
	}
	if image == "" {
		image = "placeholder.png"
	}

	p = domain.Product{Name: name, Quantity: qty, Price: price, Image: image, CategoryID: categoryID}
	return p, ""
}

func (h *AdminHandler) AddProduct(c *fiber.Ctx) error {
	p, msg := h.parseProductForm(c, "")
	if msg != "" {
		cats, _ := h.Catalog.Categories()
		return c.Status(fiber.StatusBadRequest).Render("product_form", fiber.Map{"Err": msg, "Categories": cats})
	}
	id, err := h.Catalog.Create(p)
	if err != nil {
		return h.fail(c, "admin.product.create.fail", err)
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product_id": id, "name": p.Name})
	return c.Redirect("/inventory")
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	existing, err := h.Catalog.Get(id)
	if err != nil {
		return h.fail(c, "admin.product.update.fail", err)
	}
	if existing == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}

	p, msg := h.parseProductForm(c, existing.Image)
	if msg != "" {
		cats, _ := h.Catalog.Categories()
		return c.Status(fiber.StatusBadRequest).Render("product_form", fiber.Map{"Err": msg, "Categories": cats, "P": existing})
	}
	if err := h.Catalog.Update(id, p); err != nil {
		return h.fail(c, "admin.product.update.fail", err)
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product_id": id})
	return c.Redirect("/inventory")
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if ok {
		if err := h.Catalog.Delete(id); err != nil {
			return h.fail(c, "admin.product.delete.fail", err)
		}
		applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	}
	return c.Redirect("/inventory")
}

type bulkRequest struct {
	IDs    []int64 `json:"ids"`
	Amount int     `json:"amount"`
}

// BulkRestock handles the inventory page's AJAX action: add the same amount
// of stock to every selected product.
func (h *AdminHandler) BulkRestock(c *fiber.Ctx) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Select at least one product."})
	}
	if err := h.Catalog.BulkRestock(req.IDs, req.Amount); err != nil {
		if errors.Is(err, errs.ErrInvalidRestock) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Restock amount must be at least 1."})
		}
		applog.Error(c, "admin.restock.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Restock failed."})
	}
	applog.Audit(c, "admin.restock", map[string]any{"ids": req.IDs, "amount": req.Amount})
	return c.JSON(fiber.Map{"success": true, "message": "Stock updated."})
}

// BulkDelete removes every selected product in one statement.
func (h *AdminHandler) BulkDelete(c *fiber.Ctx) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Select at least one product."})
	}
	if err := h.Catalog.BulkDelete(req.IDs); err != nil {
		applog.Error(c, "admin.bulk_delete.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Delete failed."})
	}
	applog.Audit(c, "admin.bulk_delete", map[string]any{"ids": req.IDs})
	return c.JSON(fiber.Map{"success": true, "message": "Products deleted."})
}

func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.ListAll()
	if err != nil {
		return h.fail(c, "admin.users.fail", err)
	}
	return render(c, "admin_users", fiber.Map{"Users": users})
}

// DeleteUser deactivates an account. Admin accounts and the caller's own
// account stay untouched.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/admin/users")
	}
	if u := currentUser(c); u != nil && u.ID == id {
		applog.Security(c, "admin.user.delete.self", map[string]any{"user_id": id})
		return c.Redirect("/admin/users")
	}
	done, err := h.Users.Deactivate(id)
	if err != nil {
		return h.fail(c, "admin.user.delete.fail", err)
	}
	if done {
		applog.Audit(c, "admin.user.delete", map[string]any{"user_id": id})
	}
	return c.Redirect("/admin/users")
}

func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	orders, err := h.Order.AdminOrders()
	if err != nil {
		return h.fail(c, "admin.orders.fail", err)
	}
	return render(c, "admin_orders", fiber.Map{"Orders": orders})
}

// SalesReports covers the last 30 days of revenue plus top sellers and the
// per-category breakdown.
func (h *AdminHandler) SalesReports(c *fiber.Ctx) error {
	report, err := h.Order.SalesReport(30, 10)
	if err != nil {
		return h.fail(c, "admin.reports.fail", err)
	}
	return render(c, "admin_reports", fiber.Map{"Report": report})
}

func (h *AdminHandler) fail(c *fiber.Ctx, action string, err error) error {
	applog.Error(c, action, err, nil)
	return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Something went wrong"})
}
