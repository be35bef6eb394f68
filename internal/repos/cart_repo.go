package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartItem is a bare line item row.
type CartItem struct {
	ID        int64 `db:"id"`
	CartID    int64 `db:"cart_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

// CartItemRow is a line item joined with the live product, so displayed
// price and stock always reflect the current catalog.
type CartItemRow struct {
	ID        int64           `db:"id"`
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Image     string          `db:"image"`
	Stock     int             `db:"stock"`
}

// GetOrCreate returns the user's cart id, creating the cart on first use.
// carts.user_id is UNIQUE, so concurrent first calls converge on one row.
func (r *CartRepo) GetOrCreate(userID int64) (int64, error) {
	if _, err := r.db.Exec(`
	  INSERT INTO carts(user_id) VALUES(?)
	  ON CONFLICT(user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}
	var cartID int64
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE user_id = ?`, userID)
	return cartID, err
}

// GetItem returns nil, nil when no line exists for the product.
func (r *CartRepo) GetItem(cartID, productID int64) (*CartItem, error) {
	var it CartItem
	err := r.db.Get(&it, `
	  SELECT id, cart_id, product_id, quantity
	  FROM cart_items
	  WHERE cart_id = ? AND product_id = ?
	`, cartID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// AddItem merges delta into an existing line or inserts a new one.
func (r *CartRepo) AddItem(cartID, productID int64, delta int) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_items(cart_id, product_id, quantity)
	  VALUES(?, ?, ?)
	  ON CONFLICT(cart_id, product_id) DO UPDATE
	  SET quantity = quantity + excluded.quantity
	`, cartID, productID, delta)
	return err
}

func (r *CartRepo) Items(cartID int64) ([]CartItemRow, error) {
	rows := []CartItemRow{}
	err := r.db.Select(&rows, `
	  SELECT ci.id, ci.product_id, ci.quantity,
	         p.name, p.price, p.image, p.quantity AS stock
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.id
	`, cartID)
	return rows, err
}

// ItemWithStock returns a single line joined with current stock, nil on miss.
func (r *CartRepo) ItemWithStock(itemID int64) (*CartItemRow, error) {
	var row CartItemRow
	err := r.db.Get(&row, `
	  SELECT ci.id, ci.product_id, ci.quantity,
	         p.name, p.price, p.image, p.quantity AS stock
	  FROM cart_items ci
	  JOIN products p ON p.id = ci.product_id
	  WHERE ci.id = ?
	`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *CartRepo) UpdateQuantity(itemID int64, quantity int) error {
	_, err := r.db.Exec(`UPDATE cart_items SET quantity = ? WHERE id = ?`, quantity, itemID)
	return err
}

func (r *CartRepo) DeleteItem(itemID int64) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE id = ?`, itemID)
	return err
}

// DeleteItems removes purchased lines inside the checkout transaction.
func (r *CartRepo) DeleteItems(e sqlx.Ext, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM cart_items WHERE id IN (?)`, itemIDs)
	if err != nil {
		return err
	}
	_, err = e.Exec(query, args...)
	return err
}
