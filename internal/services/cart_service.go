package services

import (
	"github.com/shopspring/decimal"

	"shopmart/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// AddResult reports what an add-to-cart actually did after clamping.
type AddResult struct {
	ProductName string
	NewQuantity int
	Clamped     bool
}

// Add merges delta into the user's cart line for the product, clamping the
// resulting quantity to available stock instead of rejecting the request.
// Returns nil, nil when the product does not exist.
func (s *CartService) Add(userID, productID int64, delta int) (*AddResult, error) {
	if delta < 1 {
		delta = 1
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	cartID, err := s.Carts.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.Carts.GetItem(cartID, productID)
	if err != nil {
		return nil, err
	}

	current := 0
	if existing != nil {
		current = existing.Quantity
	}
	newQty := current + delta
	clamped := false
	if newQty > p.Quantity {
		newQty = p.Quantity
		clamped = true
	}
	if newQty < 1 {
		// Out of stock and nothing in the cart yet; nothing to write.
		return &AddResult{ProductName: p.Name, NewQuantity: current, Clamped: true}, nil
	}
	if d := newQty - current; d > 0 {
		if err := s.Carts.AddItem(cartID, productID, d); err != nil {
			return nil, err
		}
	}
	return &AddResult{ProductName: p.Name, NewQuantity: newQty, Clamped: clamped}, nil
}

// Step moves a line quantity by delta, clamped to [1, stock]. A missing item
// is a no-op.
func (s *CartService) Step(itemID int64, delta int) error {
	row, err := s.Carts.ItemWithStock(itemID)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	newQty := row.Quantity + delta
	if newQty < 1 {
		newQty = 1
	}
	if newQty > row.Stock {
		newQty = row.Stock
	}
	if newQty == row.Quantity {
		return nil
	}
	return s.Carts.UpdateQuantity(itemID, newQty)
}

func (s *CartService) Remove(itemID int64) error {
	return s.Carts.DeleteItem(itemID)
}

type CartView struct {
	Items []repos.CartItemRow
	Total decimal.Decimal
	Count int // distinct products, for the navbar badge
}

// View prices lines from the current catalog; pre-purchase totals are never
// a snapshot.
func (s *CartService) View(userID int64) (CartView, error) {
	cartID, err := s.Carts.GetOrCreate(userID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return CartView{Items: items, Total: total, Count: len(items)}, nil
}
