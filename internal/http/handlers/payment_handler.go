package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	errs "shopmart/internal/errors"
	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type PaymentHandler struct {
	Checkout *services.CheckoutService
	Orders   *services.OrderService
}

// Page shows the payment form for the selected cart lines (or the whole
// cart when nothing was selected).
func (h *PaymentHandler) Page(c *fiber.Ctx) error {
	u := currentUser(c)
	raw := c.Query("selectedItems")
	items, total, err := h.Checkout.ResolveItems(u.ID, parseSelected(raw))
	if err != nil {
		applog.Error(c, "payment.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the payment page"})
	}
	return render(c, "payment", fiber.Map{
		"Items":            items,
		"Total":            total,
		"SelectedItemsRaw": raw,
	})
}

// Process commits the checkout. Validation failures happen before any
// storage access; a failed commit leaves no trace.
func (h *PaymentHandler) Process(c *fiber.Ctx) error {
	u := currentUser(c)
	method := c.FormValue("paymentMethod")
	cardNumber := c.FormValue("cardNumber")
	raw := c.FormValue("selectedItems")

	orderID, err := h.Checkout.ProcessPayment(u.ID, method, cardNumber, parseSelected(raw))
	switch {
	case err == nil:
		applog.Audit(c, "order.place", map[string]any{"order_id": orderID, "method": method})
		return c.Redirect("/payment-success?orderId=" + strconv.FormatInt(orderID, 10))
	case errors.Is(err, errs.ErrInvalidCard):
		applog.Security(c, "payment.validation.fail", map[string]any{"field": "cardNumber"})
		return c.Status(fiber.StatusBadRequest).SendString("Invalid credit card number (must be 16 digits).")
	case errors.Is(err, errs.ErrNothingToCheckout):
		return c.Redirect("/cart")
	case errors.Is(err, errs.ErrInsufficientStock):
		applog.Security(c, "order.place.fail", map[string]any{"reason": "stock"})
		return c.Status(fiber.StatusConflict).Render("cart", fiber.Map{
			"Err": "Some items are no longer available in the requested quantity. Please review your cart.",
		})
	default:
		applog.Error(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not place the order. Please try again."})
	}
}

func (h *PaymentHandler) Success(c *fiber.Ctx) error {
	return render(c, "payment_success", fiber.Map{"OrderID": c.Query("orderId")})
}

// InvoiceIndex keeps the legacy /invoice entry point alive.
func (h *PaymentHandler) InvoiceIndex(c *fiber.Ctx) error {
	return c.Redirect("/orders")
}

func (h *PaymentHandler) Invoice(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}
	inv, err := h.Orders.Invoice(id)
	if err != nil {
		applog.Error(c, "invoice.load.fail", err, map[string]any{"order_id": id})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load the invoice"})
	}
	if inv == nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	// Owners see their own invoices; admins see all.
	u := currentUser(c)
	if u == nil || (u.ID != inv.UserID && !u.IsAdmin()) {
		applog.Security(c, "access.denied.invoice", map[string]any{"order_id": id})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Order not found"})
	}

	return render(c, "invoice", fiber.Map{"Order": inv})
}
