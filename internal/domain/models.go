package domain

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Product struct {
	ID         int64           `db:"id"`
	Name       string          `db:"name"`
	Quantity   int             `db:"quantity"` // stock on hand, never negative
	Price      decimal.Decimal `db:"price"`
	Image      string          `db:"image"`
	CategoryID sql.NullInt64   `db:"category_id"`
}
