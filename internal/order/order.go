package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Order is a committed purchase. TotalPrice always equals the sum of its
// items' price * quantity.
type Order struct {
	ID         int64           `json:"orderId"`
	BuyerName  string          `json:"buyerName"`
	BuyerEmail string          `json:"buyerEmail"`
	BuyerPhone string          `json:"buyerPhone"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []Item          `json:"items"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Item is one order line. Price is the unit price at commit time.
type Item struct {
	ID          int64           `json:"orderItemId"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Buyer is a distinct buyer identity taken from placed orders.
type Buyer struct {
	Name  string `json:"buyerName"`
	Email string `json:"buyerEmail"`
	Phone string `json:"buyerPhone"`
}

func CalculateTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
