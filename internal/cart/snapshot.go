package cart

import (
	"context"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/product"
)

// ProductLookup is the catalog read used by Build. product.Repository and
// product.Service both satisfy it.
type ProductLookup interface {
	GetByID(ctx context.Context, id int64) (product.Product, error)
}

type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Snapshot struct {
	Lines      []Line          `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Count      int             `json:"cartCount"`
}

func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Build validates every raw entry against the catalog and returns the
// displayable snapshot plus the corrected mapping. Quantities are capped at
// current stock; entries that are malformed, unknown or cap to zero are
// dropped. Build never fails: lookup errors drop the entry.
func Build(ctx context.Context, lookup ProductLookup, raw RawCart) (Snapshot, map[string]int) {
	snap := Snapshot{Lines: []Line{}, TotalPrice: decimal.Zero}
	normalized := make(map[string]int, len(raw))

	for key, value := range raw {
		qty, ok := ParsePositiveInt(value)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		p, err := lookup.GetByID(ctx, id)
		if err != nil {
			continue
		}

		capped := min(qty, p.Available())
		if capped <= 0 {
			continue
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(capped)))
		// two raw keys ("7" and "07") can name the same product
		canonical := strconv.FormatInt(p.ID, 10)
		if prev, dup := normalized[canonical]; dup {
			capped = min(prev+capped, p.Available())
			for i := range snap.Lines {
				if snap.Lines[i].Product.ID == p.ID {
					snap.TotalPrice = snap.TotalPrice.Sub(snap.Lines[i].Subtotal)
					snap.Lines[i].Quantity = capped
					snap.Lines[i].Subtotal = p.Price.Mul(decimal.NewFromInt(int64(capped)))
					snap.TotalPrice = snap.TotalPrice.Add(snap.Lines[i].Subtotal)
				}
			}
			normalized[canonical] = capped
			continue
		}

		normalized[canonical] = capped
		snap.Lines = append(snap.Lines, Line{Product: p, Quantity: capped, Subtotal: subtotal})
		snap.TotalPrice = snap.TotalPrice.Add(subtotal)
	}

	sort.Slice(snap.Lines, func(i, j int) bool { return snap.Lines[i].Product.ID < snap.Lines[j].Product.ID })
	snap.Count = Count(normalized)
	return snap, normalized
}
