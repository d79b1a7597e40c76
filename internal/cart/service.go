package cart

import (
	"context"
	"errors"
	"strconv"

	"github.com/wichananm65/wholesale-shop/internal/product"
	"go.uber.org/zap"
)

// Service orchestrates cart operations for one session key at a time.
type Service struct {
	store   Store
	catalog ProductLookup
	log     *zap.Logger
}

func NewService(store Store, catalog ProductLookup, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, catalog: catalog, log: log}
}

// View builds the snapshot for key and writes the corrected mapping back
// when it differs from what was stored. A failed write-back is logged; the
// snapshot is still returned.
func (s *Service) View(ctx context.Context, key string) (Snapshot, error) {
	raw, corrupt, err := s.load(ctx, key)
	if err != nil {
		return Snapshot{}, err
	}

	snap, normalized := Build(ctx, s.catalog, raw)
	if corrupt || !Equal(raw, normalized) {
		s.log.Debug("cart normalized",
			zap.String("session", key),
			zap.Int("raw_entries", len(raw)),
			zap.Int("entries", len(normalized)),
		)
		if err := s.store.SetCart(ctx, key, normalized); err != nil {
			s.log.Warn("failed to persist normalized cart", zap.String("session", key), zap.Error(err))
		}
	}
	return snap, nil
}

// Add increases the quantity of productID by qty. The combined quantity must
// fit in the product's current stock. It returns the product and the new
// item count of the cart.
func (s *Service) Add(ctx context.Context, key string, productID int64, qty int) (product.Product, int, error) {
	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return product.Product{}, 0, err
	}
	if qty <= 0 {
		return product.Product{}, 0, ErrInvalidQuantity
	}

	current, err := s.current(ctx, key)
	if err != nil {
		return product.Product{}, 0, err
	}
	k := strconv.FormatInt(productID, 10)
	next := current[k] + qty
	if p.Stock < next {
		return product.Product{}, 0, ErrInsufficientStock
	}

	current[k] = next
	if err := s.store.SetCart(ctx, key, current); err != nil {
		return product.Product{}, 0, err
	}
	return p, Count(current), nil
}

// Update sets the quantity of productID, capped at stock. A quantity <= 0
// removes the entry; an unknown product leaves the cart unchanged.
func (s *Service) Update(ctx context.Context, key string, productID int64, qty int) (int, error) {
	current, err := s.current(ctx, key)
	if err != nil {
		return 0, err
	}

	k := strconv.FormatInt(productID, 10)
	if qty > 0 {
		p, err := s.catalog.GetByID(ctx, productID)
		switch {
		case errors.Is(err, product.ErrNotFound):
			return Count(current), nil
		case err != nil:
			return 0, err
		}
		current[k] = min(qty, p.Available())
	} else {
		delete(current, k)
	}
	if current[k] == 0 {
		delete(current, k)
	}

	if err := s.store.SetCart(ctx, key, current); err != nil {
		return 0, err
	}
	return Count(current), nil
}

func (s *Service) Remove(ctx context.Context, key string, productID int64) (int, error) {
	current, err := s.current(ctx, key)
	if err != nil {
		return 0, err
	}
	k := strconv.FormatInt(productID, 10)
	if _, ok := current[k]; !ok {
		return Count(current), nil
	}
	delete(current, k)
	if err := s.store.SetCart(ctx, key, current); err != nil {
		return 0, err
	}
	return Count(current), nil
}

func (s *Service) Clear(ctx context.Context, key string) error {
	return s.store.ClearCart(ctx, key)
}

// load reads the stored cart. An undecodable value is treated as an empty
// cart and reported through corrupt so the caller overwrites it.
func (s *Service) load(ctx context.Context, key string) (RawCart, bool, error) {
	raw, err := s.store.GetCart(ctx, key)
	switch {
	case errors.Is(err, ErrCorruptCart):
		s.log.Warn("discarding corrupt cart", zap.String("session", key), zap.Error(err))
		return RawCart{}, true, nil
	case err != nil:
		return nil, false, err
	}
	return raw, false, nil
}

// current reads the stored cart keeping only entries whose value is a
// positive integer. Stock is not consulted here.
func (s *Service) current(ctx context.Context, key string) (map[string]int, error) {
	raw, _, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		if q, ok := ParsePositiveInt(v); ok {
			out[k] = q
		}
	}
	return out, nil
}
