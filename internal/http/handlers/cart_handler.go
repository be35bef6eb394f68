package handlers

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
}

// parseSelected decodes the selectedItems form payload, a JSON array of cart
// item ids as strings. Malformed input means "no selection".
func parseSelected(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	u := currentUser(c)
	cv, err := h.Cart.View(u.ID)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	u := currentUser(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	qty := validate.Qty(c.FormValue("quantity"))

	res, err := h.Cart.Add(u.ID, productID, qty)
	if err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": productID})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not add to cart"})
	}
	if res == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}

	applog.Info(c, "cart.add", map[string]any{"product_id": productID, "qty": res.NewQuantity, "clamped": res.Clamped})
	return c.Redirect("/shopping?added=true&qty=" + strconv.Itoa(res.NewQuantity) + "&name=" + url.QueryEscape(res.ProductName))
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return c.Redirect("/cart")
	}
	delta := 1
	if c.FormValue("delta") == "-1" {
		delta = -1
	}
	if err := h.Cart.Step(itemID, delta); err != nil {
		applog.Error(c, "cart.update.fail", err, map[string]any{"item_id": itemID})
	}
	return c.Redirect("/cart")
}

func (h *CartHandler) Delete(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("itemId"))
	if ok {
		if err := h.Cart.Remove(itemID); err != nil {
			applog.Error(c, "cart.delete.fail", err, map[string]any{"item_id": itemID})
		}
	}
	return c.Redirect("/cart")
}

// CheckoutSelected shows the checkout summary for the chosen cart lines and
// carries the raw selection forward to the payment page.
func (h *CartHandler) CheckoutSelected(c *fiber.Ctx) error {
	u := currentUser(c)
	raw := c.FormValue("selectedItems")
	selected := parseSelected(raw)
	if len(selected) == 0 {
		return c.Redirect("/cart")
	}

	items, total, err := h.Checkout.ResolveItems(u.ID, selected)
	if err != nil {
		applog.Error(c, "checkout.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load checkout"})
	}
	if len(items) == 0 {
		return c.Redirect("/cart")
	}

	return render(c, "checkout", fiber.Map{
		"Items":            items,
		"Total":            total,
		"SelectedItemsRaw": raw,
	})
}
