package product

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/supplier"
)

type sampleProduct struct {
	name, description, price, supplier string
	stock                              int
}

func strPtr(s string) *string { return &s }

var sampleSuppliers = []supplier.Supplier{
	{Name: "ABC Wholesale Inc", ContactEmail: strPtr("contact@abcwholesale.com")},
	{Name: "Global Imports Ltd", ContactEmail: strPtr("info@globalimports.com")},
	{Name: "Direct Factory Sales", ContactEmail: strPtr("sales@directfactory.com")},
}

var sampleProducts = []sampleProduct{
	{"Laptop Computer", "High-performance laptop for professionals", "899.99", "ABC Wholesale Inc", 50},
	{"Office Chair", "Ergonomic office chair with lumbar support", "299.99", "ABC Wholesale Inc", 120},
	{"Desk Lamp", "LED desk lamp with adjustable brightness", "49.99", "Global Imports Ltd", 200},
	{"Keyboard and Mouse Set", "Wireless keyboard and mouse combo", "79.99", "Global Imports Ltd", 150},
	{"Monitor Stand", "Adjustable monitor stand for desk organization", "45.00", "Direct Factory Sales", 100},
	{"USB Hub", "7-port USB 3.0 hub with power adapter", "39.99", "Direct Factory Sales", 250},
}

// SeedResult counts the rows created by Seed.
type SeedResult struct {
	Suppliers int `json:"suppliers"`
	Products  int `json:"products"`
}

// Seed inserts the sample suppliers and products. Rows that already exist
// (matched by name) are left untouched, so it is safe to run repeatedly.
func Seed(ctx context.Context, suppliers *supplier.Service, products *Service) (SeedResult, error) {
	var res SeedResult
	ids := make(map[string]int64, len(sampleSuppliers))
	for _, s := range sampleSuppliers {
		sup, created, err := suppliers.Ensure(ctx, s)
		if err != nil {
			return res, fmt.Errorf("seed supplier %q: %w", s.Name, err)
		}
		if created {
			res.Suppliers++
		}
		ids[s.Name] = sup.ID
	}

	for _, sp := range sampleProducts {
		_, created, err := products.Ensure(ctx, Product{
			Name:        sp.name,
			Description: sp.description,
			Price:       decimal.RequireFromString(sp.price),
			Stock:       sp.stock,
			SupplierID:  ids[sp.supplier],
		})
		if err != nil {
			return res, fmt.Errorf("seed product %q: %w", sp.name, err)
		}
		if created {
			res.Products++
		}
	}
	return res, nil
}
