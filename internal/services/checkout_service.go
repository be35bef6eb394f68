package services

import (
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	errs "shopmart/internal/errors"
	"shopmart/internal/repos"
	"shopmart/internal/validate"
)

// CheckoutService turns selected cart items into a persisted order. The
// commit is one transaction: order header, line items, conditional stock
// decrements, and cart cleanup all land together or not at all.
type CheckoutService struct {
	DB     *sqlx.DB
	Carts  *repos.CartRepo
	Prods  *repos.ProductRepo
	Orders *repos.OrderRepo
}

func NewCheckoutService(db *sqlx.DB, carts *repos.CartRepo, prods *repos.ProductRepo, orders *repos.OrderRepo) *CheckoutService {
	return &CheckoutService{DB: db, Carts: carts, Prods: prods, Orders: orders}
}

// ResolveItems loads the user's cart and, when selectedIDs is non-empty,
// keeps only the lines whose id matches (string-compared, matching the form
// payload). The total uses current joined catalog prices.
func (s *CheckoutService) ResolveItems(userID int64, selectedIDs []string) ([]repos.CartItemRow, decimal.Decimal, error) {
	cartID, err := s.Carts.GetOrCreate(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if len(selectedIDs) > 0 {
		want := make(map[string]bool, len(selectedIDs))
		for _, id := range selectedIDs {
			want[id] = true
		}
		kept := items[:0]
		for _, it := range items {
			if want[strconv.FormatInt(it.ID, 10)] {
				kept = append(kept, it)
			}
		}
		items = kept
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return items, total, nil
}

// ProcessPayment validates the payment input, resolves the items to buy,
// and commits the order atomically. It returns the new order id.
//
// Failure modes: ErrInvalidCard before anything is read,
// ErrNothingToCheckout when resolution is empty (a normal outcome),
// ErrInsufficientStock when any line cannot be covered, and CommitError for
// any other storage failure inside the transaction. On every failure path
// nothing persists: no order, no stock change, no cart deletion.
func (s *CheckoutService) ProcessPayment(userID int64, paymentMethod, cardNumber string, selectedIDs []string) (int64, error) {
	if paymentMethod == "Credit Card" {
		if len(validate.CardDigits(cardNumber)) != 16 {
			return 0, errs.ErrInvalidCard
		}
	}

	items, total, err := s.ResolveItems(userID, selectedIDs)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, errs.ErrNothingToCheckout
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return 0, errs.Commit(err)
	}
	defer func() { _ = tx.Rollback() }()

	orderID, err := s.Orders.Create(tx, userID, total, paymentMethod)
	if err != nil {
		return 0, errs.Commit(err)
	}
	itemIDs := make([]int64, 0, len(items))
	for _, it := range items {
		if err := s.Orders.InsertItem(tx, orderID, it.ProductID, it.Quantity, it.Price); err != nil {
			return 0, errs.Commit(err)
		}
		if err := s.Prods.DecrementStock(tx, it.ProductID, it.Quantity); err != nil {
			return 0, errs.Commit(err)
		}
		itemIDs = append(itemIDs, it.ID)
	}
	if err := s.Carts.DeleteItems(tx, itemIDs); err != nil {
		return 0, errs.Commit(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errs.Commit(err)
	}
	return orderID, nil
}
