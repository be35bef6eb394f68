package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"shopmart/internal/domain"
	errs "shopmart/internal/errors"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// ProductRow is a product joined with its category name for listing pages.
// Products without a category still appear; CategoryName is null then.
type ProductRow struct {
	domain.Product
	CategoryName sql.NullString `db:"category_name"`
}

const productCols = `
  p.id, p.name, p.quantity, p.price, p.image, p.category_id,
  c.name AS category_name`

func (r *ProductRepo) List() ([]ProductRow, error) {
	var out []ProductRow
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products p
	  LEFT JOIN categories c ON c.id = p.category_id
	  ORDER BY p.name
	`)
	return out, err
}

// ListFiltered applies a case-insensitive name search, an optional category
// filter, and an optional stock sort (qty_asc | qty_desc).
func (r *ProductRepo) ListFiltered(search string, categoryID int64, sortKey string) ([]ProductRow, error) {
	where := `1 = 1`
	args := []any{}
	if search != "" {
		where += ` AND LOWER(p.name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	if categoryID > 0 {
		where += ` AND p.category_id = ?`
		args = append(args, categoryID)
	}

	order := `p.name`
	switch sortKey {
	case "qty_asc":
		order = `p.quantity ASC`
	case "qty_desc":
		order = `p.quantity DESC`
	}

	var out []ProductRow
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products p
	  LEFT JOIN categories c ON c.id = p.category_id
	  WHERE `+where+`
	  ORDER BY `+order, args...)
	return out, err
}

// Get returns nil, nil when the product does not exist.
func (r *ProductRepo) Get(id int64) (*ProductRow, error) {
	var p ProductRow
	err := r.db.Get(&p, `
	  SELECT `+productCols+`
	  FROM products p
	  LEFT JOIN categories c ON c.id = p.category_id
	  WHERE p.id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(p domain.Product) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO products(name, quantity, price, image, category_id)
	  VALUES(?, ?, ?, ?, ?)
	`, p.Name, p.Quantity, p.Price, p.Image, p.CategoryID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update is a full-row replace.
func (r *ProductRepo) Update(id int64, p domain.Product) error {
	_, err := r.db.Exec(`
	  UPDATE products
	  SET name = ?, quantity = ?, price = ?, image = ?, category_id = ?
	  WHERE id = ?
	`, p.Name, p.Quantity, p.Price, p.Image, p.CategoryID, id)
	return err
}

func (r *ProductRepo) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return err
}

func (r *ProductRepo) BulkDelete(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(query, args...)
	return err
}

// BulkRestock adds the same amount to every listed product in one statement.
// Callers validate amount > 0.
func (r *ProductRepo) BulkRestock(ids []int64, amount int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE products SET quantity = quantity + ? WHERE id IN (?)`, amount, ids)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(query, args...)
	return err
}

type ProductStats struct {
	ProductCount  int `db:"product_count"`
	LowStockCount int `db:"low_stock_count"`
}

// Stats feeds the admin dashboard; "low stock" means 20 units or fewer.
func (r *ProductRepo) Stats() (ProductStats, error) {
	var s ProductStats
	err := r.db.Get(&s, `
	  SELECT COUNT(*) AS product_count,
	         COALESCE(SUM(CASE WHEN quantity <= 20 THEN 1 ELSE 0 END), 0) AS low_stock_count
	  FROM products
	`)
	return s, err
}

// DecrementStock subtracts "by" units only if enough stock exists. It runs
// against the caller's transaction during checkout.
func (r *ProductRepo) DecrementStock(e sqlx.Ext, productID int64, by int) error {
	res, err := e.Exec(`
	  UPDATE products
	  SET quantity = quantity - ?
	  WHERE id = ? AND quantity >= ?
	`, by, productID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errs.ErrInsufficientStock
	}
	return nil
}
