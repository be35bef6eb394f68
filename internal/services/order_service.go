package services

import (
	"github.com/shopspring/decimal"

	"shopmart/internal/repos"
)

// OrderService is the read side of orders: history grouping, the admin
// listing, invoices, and the sales reports.
type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService { return &OrderService{Orders: orders} }

type OrderLine struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

type OrderGroup struct {
	ID        int64
	Seq       int // per-user sequence; the newest order gets the highest
	Total     decimal.Decimal
	Method    string
	Status    string
	CreatedAt string
	Items     []OrderLine
}

// History groups the flat rowset by order id, preserving the newest-first
// order of the query, then numbers orders so the most recent one carries the
// highest sequence. Sequence numbers are a snapshot artifact, not persisted.
func (s *OrderService) History(userID int64) ([]OrderGroup, error) {
	rows, err := s.Orders.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	var orders []OrderGroup
	index := map[int64]int{}
	for _, r := range rows {
		i, ok := index[r.OrderID]
		if !ok {
			i = len(orders)
			index[r.OrderID] = i
			orders = append(orders, OrderGroup{
				ID:        r.OrderID,
				Total:     r.Total,
				Method:    r.Method,
				Status:    r.Status,
				CreatedAt: r.CreatedAt,
			})
		}
		orders[i].Items = append(orders[i].Items, OrderLine{
			Name:     r.Product,
			Quantity: r.Quantity,
			Price:    r.Price,
		})
	}
	for i := range orders {
		orders[i].Seq = len(orders) - i
	}
	return orders, nil
}

type Invoice struct {
	ID        int64
	UserID    int64
	Total     decimal.Decimal
	Method    string
	Status    string
	CreatedAt string
	Username  string
	Address   string
	Contact   string
	Items     []OrderLine
}

// Invoice returns nil when the order does not exist.
func (s *OrderService) Invoice(orderID int64) (*Invoice, error) {
	rows, err := s.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	inv := &Invoice{
		ID:        rows[0].OrderID,
		UserID:    rows[0].UserID,
		Total:     rows[0].Total,
		Method:    rows[0].Method,
		Status:    rows[0].Status,
		CreatedAt: rows[0].CreatedAt,
		Username:  rows[0].Username,
		Address:   rows[0].Address,
		Contact:   rows[0].Contact,
	}
	for _, r := range rows {
		inv.Items = append(inv.Items, OrderLine{Name: r.Product, Quantity: r.Quantity, Price: r.Price})
	}
	return inv, nil
}

func (s *OrderService) AdminOrders() ([]repos.AdminOrderRow, error) {
	return s.Orders.ListAllWithUser()
}

type SalesReport struct {
	Revenue       []repos.RevenueRow
	TopProducts   []repos.TopProductRow
	CategorySales []repos.CategorySalesRow
}

func (s *OrderService) SalesReport(windowDays, topLimit int) (SalesReport, error) {
	revenue, err := s.Orders.RevenueByDay(windowDays)
	if err != nil {
		return SalesReport{}, err
	}
	top, err := s.Orders.TopSellingProducts(topLimit)
	if err != nil {
		return SalesReport{}, err
	}
	cats, err := s.Orders.SalesByCategory()
	if err != nil {
		return SalesReport{}, err
	}
	return SalesReport{Revenue: revenue, TopProducts: top, CategorySales: cats}, nil
}
