package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopmart/internal/log"
	"shopmart/internal/repos"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type ShopHandler struct {
	Catalog  *services.CatalogService
	Cart     *services.CartService
	MediaDir string
}

// Browse is the shopper-facing product listing, with an optional keyword
// search over product names.
func (h *ShopHandler) Browse(c *fiber.Ctx) error {
	search, ok := validate.Search(c.Query("q"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		search = ""
	}

	cats, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "shop.categories.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the shop"})
	}

	var products []repos.ProductRow
	if search != "" {
		products, err = h.Catalog.ListFiltered(search, 0, "")
	} else {
		products, err = h.Catalog.List()
	}
	if err != nil {
		applog.Error(c, "shop.products.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the shop"})
	}
	for i := range products {
		products[i].Image = resolveImage(h.MediaDir, products[i].Image)
	}

	cartCount := 0
	if u := currentUser(c); u != nil {
		if cv, err := h.Cart.View(u.ID); err == nil {
			cartCount = cv.Count
		}
	}

	return render(c, "shopping", fiber.Map{
		"Products":   products,
		"Categories": cats,
		"Q":          search,
		"CartCount":  cartCount,
		"Added":      c.Query("added") == "true",
		"AddedQty":   c.Query("qty"),
		"AddedName":  c.Query("name"),
	})
}

func (h *ShopHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		applog.Error(c, "shop.product.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the product"})
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	p.Image = resolveImage(h.MediaDir, p.Image)
	return render(c, "product", fiber.Map{"P": p})
}
