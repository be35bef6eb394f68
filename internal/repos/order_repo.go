package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Write side (runs on the checkout transaction) ----------

// Create inserts a Pending order header and returns its id.
func (r *OrderRepo) Create(e sqlx.Ext, userID int64, total decimal.Decimal, paymentMethod string) (int64, error) {
	res, err := e.Exec(`
	  INSERT INTO orders(user_id, total_amount, payment_method, status, created_at)
	  VALUES(?, ?, ?, 'Pending', CURRENT_TIMESTAMP)
	`, userID, total, paymentMethod)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertItem records one line at the unit price captured at purchase time.
func (r *OrderRepo) InsertItem(e sqlx.Ext, orderID, productID int64, quantity int, unitPrice decimal.Decimal) error {
	_, err := e.Exec(`
	  INSERT INTO order_items(order_id, product_id, quantity, price)
	  VALUES(?, ?, ?, ?)
	`, orderID, productID, quantity, unitPrice)
	return err
}

// ---------- User history ----------

// HistoryRow is one (order, line item) pair; callers group by OrderID.
type HistoryRow struct {
	OrderID   int64           `db:"order_id"`
	Total     decimal.Decimal `db:"total_amount"`
	Method    string          `db:"payment_method"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	Product   string          `db:"product_name"`
}

// ListByUser returns flat rows newest-first, order id as tie-break.
func (r *OrderRepo) ListByUser(userID int64) ([]HistoryRow, error) {
	rows := []HistoryRow{}
	err := r.db.Select(&rows, `
	  SELECT o.id AS order_id, o.total_amount, o.payment_method, o.status, o.created_at,
	         oi.quantity, oi.price, p.name AS product_name
	  FROM orders o
	  JOIN order_items oi ON oi.order_id = o.id
	  JOIN products p     ON p.id = oi.product_id
	  WHERE o.user_id = ?
	  ORDER BY o.created_at DESC, o.id DESC
	`, userID)
	return rows, err
}

// ---------- Admin views ----------

// AdminOrderRow is one row per order with a pre-aggregated item summary.
type AdminOrderRow struct {
	OrderID   int64           `db:"order_id"`
	Username  string          `db:"username"`
	Address   string          `db:"address"`
	Items     string          `db:"items"` // "name (xqty), name (xqty)"
	Total     decimal.Decimal `db:"total_amount"`
	Method    string          `db:"payment_method"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

func (r *OrderRepo) ListAllWithUser() ([]AdminOrderRow, error) {
	rows := []AdminOrderRow{}
	err := r.db.Select(&rows, `
	  SELECT o.id AS order_id, u.username, u.address,
	         (
	           SELECT GROUP_CONCAT(p.name || ' (x' || oi.quantity || ')', ', ')
	           FROM order_items oi
	           JOIN products p ON p.id = oi.product_id
	           WHERE oi.order_id = o.id
	         ) AS items,
	         o.total_amount, o.payment_method, o.status, o.created_at
	  FROM orders o
	  JOIN users u ON u.id = o.user_id
	  ORDER BY o.created_at DESC, o.id DESC
	`)
	return rows, err
}

// InvoiceRow is one (order, item, customer) row for invoice rendering.
type InvoiceRow struct {
	OrderID   int64           `db:"order_id"`
	UserID    int64           `db:"user_id"`
	Total     decimal.Decimal `db:"total_amount"`
	Method    string          `db:"payment_method"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
	Product   string          `db:"product_name"`
	Username  string          `db:"username"`
	Address   string          `db:"address"`
	Contact   string          `db:"contact"`
}

// Get returns the flat invoice rowset; an empty slice means no such order.
func (r *OrderRepo) Get(orderID int64) ([]InvoiceRow, error) {
	rows := []InvoiceRow{}
	err := r.db.Select(&rows, `
	  SELECT o.id AS order_id, o.user_id, o.total_amount, o.payment_method, o.status, o.created_at,
	         oi.quantity, oi.price, p.name AS product_name,
	         COALESCE(u.username,'') AS username,
	         COALESCE(u.address,'')  AS address,
	         COALESCE(u.contact,'')  AS contact
	  FROM orders o
	  JOIN order_items oi ON oi.order_id = o.id
	  JOIN products p     ON p.id = oi.product_id
	  LEFT JOIN users u   ON u.id = o.user_id
	  WHERE o.id = ?
	  ORDER BY p.name
	`, orderID)
	return rows, err
}

// ---------- Reports ----------

type RevenueRow struct {
	Day     string          `db:"day"`
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

// RevenueByDay sums quantity*price per calendar date over the window,
// ascending by date.
func (r *OrderRepo) RevenueByDay(windowDays int) ([]RevenueRow, error) {
	rows := []RevenueRow{}
	err := r.db.Select(&rows, `
	  SELECT DATE(o.created_at) AS day,
	         COUNT(DISTINCT o.id) AS orders,
	         SUM(oi.quantity * oi.price) AS revenue
	  FROM orders o
	  JOIN order_items oi ON oi.order_id = o.id
	  WHERE o.created_at >= DATE('now', ?)
	  GROUP BY DATE(o.created_at)
	  ORDER BY DATE(o.created_at) ASC
	`, fmt.Sprintf("-%d days", windowDays))
	return rows, err
}

type TopProductRow struct {
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Category  string          `db:"category"`
	UnitsSold int             `db:"units_sold"`
	Revenue   decimal.Decimal `db:"revenue"`
}

func (r *OrderRepo) TopSellingProducts(limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows := []TopProductRow{}
	err := r.db.Select(&rows, `
	  SELECT p.id AS product_id, p.name,
	         COALESCE(c.name,'Uncategorized') AS category,
	         SUM(oi.quantity) AS units_sold,
	         SUM(oi.quantity * oi.price) AS revenue
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  LEFT JOIN categories c ON c.id = p.category_id
	  GROUP BY oi.product_id
	  ORDER BY units_sold DESC
	  LIMIT ?
	`, limit)
	return rows, err
}

type CategorySalesRow struct {
	Category  string          `db:"category"`
	Revenue   decimal.Decimal `db:"revenue"`
	UnitsSold int             `db:"units_sold"`
}

// SalesByCategory groups sold units by category name, revenue descending.
// Products without a category land in an explicit Uncategorized bucket.
func (r *OrderRepo) SalesByCategory() ([]CategorySalesRow, error) {
	rows := []CategorySalesRow{}
	err := r.db.Select(&rows, `
	  SELECT COALESCE(c.name,'Uncategorized') AS category,
	         SUM(oi.quantity * oi.price) AS revenue,
	         SUM(oi.quantity) AS units_sold
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  LEFT JOIN categories c ON c.id = p.category_id
	  GROUP BY COALESCE(c.name,'Uncategorized')
	  ORDER BY revenue DESC
	`)
	return rows, err
}

// ---------- Dashboard counters ----------

type OrderStats struct {
	TotalOrders  int             `db:"total_orders"`
	TotalRevenue decimal.Decimal `db:"total_revenue"`
}

func (r *OrderRepo) Stats() (OrderStats, error) {
	var s OrderStats
	err := r.db.Get(&s, `
	  SELECT COUNT(*) AS total_orders,
	         COALESCE(SUM(total_amount), 0) AS total_revenue
	  FROM orders
	`)
	return s, err
}
