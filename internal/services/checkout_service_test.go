package services_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	errs "shopmart/internal/errors"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

// memdb opens a fresh seeded in-memory store.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func userID(t *testing.T, db *sqlx.DB, email string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.Get(&id, `SELECT id FROM users WHERE email = ?`, email))
	return id
}

func addProduct(t *testing.T, db *sqlx.DB, name string, qty int, price string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO products(name, quantity, price) VALUES(?, ?, ?)`, name, qty, price)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, db *sqlx.DB, productID int64) int {
	t.Helper()
	var q int
	require.NoError(t, db.Get(&q, `SELECT quantity FROM products WHERE id = ?`, productID))
	return q
}

func newCheckoutFixture(db *sqlx.DB) (*services.CartService, *services.CheckoutService) {
	cartRepo := repos.NewCartRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	return services.NewCartService(cartRepo, prodRepo),
		services.NewCheckoutService(db, cartRepo, prodRepo, orderRepo)
}

func TestProcessPayment_CashCommitsOrder(t *testing.T) {
	db := memdb(t)
	cart, checkout := newCheckoutFixture(db)
	alice := userID(t, db, "alice@shopmart.test")
	pid := addProduct(t, db, "Oat Milk 1L", 5, "10.00")

	_, err := cart.Add(alice, pid, 3)
	require.NoError(t, err)

	orderID, err := checkout.ProcessPayment(alice, "Cash on Delivery", "", nil)
	require.NoError(t, err)
	require.Greater(t, orderID, int64(0))

	var total decimal.Decimal
	require.NoError(t, db.Get(&total, `SELECT total_amount FROM orders WHERE id = ?`, orderID))
	require.True(t, total.Equal(decimal.RequireFromString("30.00")), "total = %s", total)

	require.Equal(t, 2, stockOf(t, db, pid))

	cv, err := cart.View(alice)
	require.NoError(t, err)
	require.Empty(t, cv.Items, "purchased lines must leave the cart")
}

func TestProcessPayment_CardNumberValidation(t *testing.T) {
	db := memdb(t)
	cart, checkout := newCheckoutFixture(db)
	alice := userID(t, db, "alice@shopmart.test")
	pid := addProduct(t, db, "Candles 4-Pack", 5, "8.00")

	_, err := cart.Add(alice, pid, 1)
	require.NoError(t, err)

	_, err = checkout.ProcessPayment(alice, "Credit Card", "1234", nil)
	require.ErrorIs(t, err, errs.ErrInvalidCard)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, alice))
	require.Zero(t, n, "rejected payment must not create an order")
	require.Equal(t, 5, stockOf(t, db, pid))

	// Formatting characters in a valid number are fine.
	orderID, err := checkout.ProcessPayment(alice, "Credit Card", "4111 1111-1111 1111", nil)
	require.NoError(t, err)
	require.Greater(t, orderID, int64(0))
}

func TestProcessPayment_InsufficientStockRollsBackEverything(t *testing.T) {
	db := memdb(t)
	cart, checkout := newCheckoutFixture(db)
	alice := userID(t, db, "alice@shopmart.test")
	p1 := addProduct(t, db, "Rice 5kg", 10, "12.00")
	p2 := addProduct(t, db, "Lentils 1kg", 10, "4.00")

	_, err := cart.Add(alice, p1, 2)
	require.NoError(t, err)
	_, err = cart.Add(alice, p2, 3)
	require.NoError(t, err)

	// Stock shrinks after the lines were added, as if another shopper bought
	// it out from under us.
	_, err = db.Exec(`UPDATE products SET quantity = 1 WHERE id = ?`, p2)
	require.NoError(t, err)

	_, err = checkout.ProcessPayment(alice, "Cash on Delivery", "", nil)
	require.ErrorIs(t, err, errs.ErrInsufficientStock)

	var orders int
	require.NoError(t, db.Get(&orders, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, alice))
	require.Zero(t, orders)
	require.Equal(t, 10, stockOf(t, db, p1), "first line's decrement must roll back")
	require.Equal(t, 1, stockOf(t, db, p2))

	cv, err := cart.View(alice)
	require.NoError(t, err)
	require.Len(t, cv.Items, 2, "cart must survive a failed checkout")
}

func TestProcessPayment_SelectionBuysOnlyChosenLines(t *testing.T) {
	db := memdb(t)
	cart, checkout := newCheckoutFixture(db)
	alice := userID(t, db, "alice@shopmart.test")
	p1 := addProduct(t, db, "Honey 500g", 10, "7.50")
	p2 := addProduct(t, db, "Jam 300g", 10, "3.25")

	_, err := cart.Add(alice, p1, 1)
	require.NoError(t, err)
	_, err = cart.Add(alice, p2, 2)
	require.NoError(t, err)

	cv, err := cart.View(alice)
	require.NoError(t, err)
	require.Len(t, cv.Items, 2)

	var chosen string
	for _, it := range cv.Items {
		if it.ProductID == p1 {
			chosen = strconv.FormatInt(it.ID, 10)
		}
	}
	require.NotEmpty(t, chosen)

	orderID, err := checkout.ProcessPayment(alice, "Cash on Delivery", "", []string{chosen})
	require.NoError(t, err)

	var lines int
	require.NoError(t, db.Get(&lines, `SELECT COUNT(*) FROM order_items WHERE order_id = ?`, orderID))
	require.Equal(t, 1, lines)

	after, err := cart.View(alice)
	require.NoError(t, err)
	require.Len(t, after.Items, 1, "unselected line stays in the cart")
	require.Equal(t, p2, after.Items[0].ProductID)
	require.Equal(t, 10, stockOf(t, db, p2))
}

func TestProcessPayment_EmptyCart(t *testing.T) {
	db := memdb(t)
	_, checkout := newCheckoutFixture(db)
	bob := userID(t, db, "bob@shopmart.test")

	_, err := checkout.ProcessPayment(bob, "Cash on Delivery", "", nil)
	require.ErrorIs(t, err, errs.ErrNothingToCheckout)

	// A selection that matches nothing behaves the same way.
	_, err = checkout.ProcessPayment(bob, "Cash on Delivery", "", []string{"99999"})
	require.ErrorIs(t, err, errs.ErrNothingToCheckout)
}

func TestCommitErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := errs.Commit(cause)
	var ce *errs.CommitError
	require.ErrorAs(t, err, &ce)
	require.ErrorIs(t, err, cause)

	// Stock exhaustion is reported as itself, never wrapped.
	require.ErrorIs(t, errs.Commit(errs.ErrInsufficientStock), errs.ErrInsufficientStock)
}
