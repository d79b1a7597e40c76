package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item and maps to the `products` table.
// Price is a fixed-point decimal; stock is only ever decremented by checkout.
type Product struct {
	ID           int64           `json:"productId"`
	Name         string          `json:"productName"`
	Description  string          `json:"productDesc"`
	Price        decimal.Decimal `json:"productPrice"`
	Stock        int             `json:"stock"`
	SupplierID   int64           `json:"supplierId"`
	SupplierName string          `json:"supplierName,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time      `json:"updatedAt,omitempty"`
}

// Available reports the quantity that can still be sold. Negative stock
// values are treated as zero.
func (p Product) Available() int {
	if p.Stock < 0 {
		return 0
	}
	return p.Stock
}
