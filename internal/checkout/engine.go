// Package checkout turns a normalized cart into a committed order without
// ever selling more than the locked stock.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/wholesale-shop/internal/metrics"
	"github.com/wichananm65/wholesale-shop/internal/order"
	"go.uber.org/zap"
)

// Request is one checkout attempt. Cart is the normalized productId ->
// quantity mapping produced by cart.Build.
type Request struct {
	Cart       map[string]int
	BuyerName  string
	BuyerEmail string
	BuyerPhone string
}

type Engine struct {
	store    Store
	validate *validator.Validate
	log      *zap.Logger
	metrics  *metrics.Checkout
	now      func() time.Time
}

func NewEngine(store Store, log *zap.Logger, m *metrics.Checkout) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:    store,
		validate: validator.New(),
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

type line struct {
	productID int64
	quantity  int
}

// Checkout validates the buyer, then inside one transaction locks every
// product in the cart, re-checks stock, writes the order with its items at
// the locked prices and decrements stock. Either all of it commits or none.
func (e *Engine) Checkout(ctx context.Context, req Request) (o order.Order, err error) {
	start := e.now()
	defer func() {
		e.metrics.Observe(outcome(err), time.Since(start))
	}()

	if len(req.Cart) == 0 {
		return order.Order{}, ErrEmptyCart
	}

	name := strings.TrimSpace(req.BuyerName)
	if name == "" {
		return order.Order{}, &ValidationError{Field: "buyerName", Err: ErrBuyerNameRequired}
	}
	email := strings.ToLower(strings.TrimSpace(req.BuyerEmail))
	if e.validate.Var(email, "required,email") != nil {
		return order.Order{}, &ValidationError{Field: "buyerEmail", Err: ErrInvalidEmail}
	}
	phone := strings.TrimSpace(req.BuyerPhone)

	lines, err := parseLines(req.Cart)
	if err != nil {
		return order.Order{}, err
	}

	defer func() {
		if p := recover(); p != nil {
			e.log.Error("checkout panicked", zap.Any("panic", p), zap.Int("lines", len(lines)))
			o, err = order.Order{}, fmt.Errorf("%w: panic: %v", ErrCheckoutFailed, p)
		}
	}()

	var placed order.Order
	err = e.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		ids := make([]int64, len(lines))
		for i, l := range lines {
			ids[i] = l.productID
		}

		locked, err := tx.LockProductsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(locked) != len(ids) {
			return ErrProductUnavailable
		}
		for _, l := range lines {
			p := locked[l.productID]
			if p.Stock < l.quantity {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   l.quantity,
					Available:   p.Available(),
				}
			}
		}

		now := e.now().UTC()
		ord := order.Order{
			BuyerName:  name,
			BuyerEmail: email,
			BuyerPhone: phone,
			Status:     order.StatusCompleted,
			TotalPrice: decimal.Zero,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.CreateOrder(ctx, &ord); err != nil {
			return err
		}

		items := make([]order.Item, 0, len(lines))
		for _, l := range lines {
			p := locked[l.productID]
			items = append(items, order.Item{
				OrderID:     ord.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    l.quantity,
				Price:       p.Price,
			})
			if err := tx.SaveStock(ctx, p.ID, p.Stock-l.quantity); err != nil {
				return err
			}
		}

		created, err := tx.CreateOrderItems(ctx, ord.ID, items)
		if err != nil {
			return err
		}
		ord.Items = created
		ord.TotalPrice = order.CalculateTotal(created)
		if err := tx.SetOrderTotal(ctx, ord.ID, ord.TotalPrice); err != nil {
			return err
		}

		placed = ord
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.Is(err, ErrProductUnavailable) || errors.As(err, &stockErr) {
			return order.Order{}, err
		}
		e.log.Error("checkout failed",
			zap.Int("lines", len(lines)),
			zap.String("buyer_email", email),
			zap.Error(err),
		)
		return order.Order{}, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	e.log.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.Int("lines", len(placed.Items)),
		zap.String("total", placed.TotalPrice.StringFixed(2)),
	)
	return placed, nil
}

// parseLines turns the cart into lines ordered by product id. Keys naming
// the same product are merged.
func parseLines(cart map[string]int) ([]line, error) {
	merged := make(map[int64]int, len(cart))
	for key, qty := range cart {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: bad product id %q", ErrCheckoutFailed, key)
		}
		if qty <= 0 {
			return nil, fmt.Errorf("%w: bad quantity %d for product %d", ErrCheckoutFailed, qty, id)
		}
		merged[id] += qty
	}

	lines := make([]line, 0, len(merged))
	for id, qty := range merged {
		lines = append(lines, line{productID: id, quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].productID < lines[j].productID })
	return lines, nil
}

func outcome(err error) string {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &validationErr), errors.Is(err, ErrEmptyCart):
		return metrics.OutcomeValidation
	case errors.Is(err, ErrProductUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, ErrInsufficientStock):
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeFailed
	}
}
