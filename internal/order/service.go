package order

import (
	"context"
	"strings"
)

// Service provides read access to committed orders and their buyers.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) GetByID(ctx context.Context, id int64) (Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByBuyerEmail normalizes email the same way checkout stores it.
func (s *Service) ListByBuyerEmail(ctx context.Context, email string) ([]Order, error) {
	return s.repo.ListByBuyerEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) ListBuyers(ctx context.Context) ([]Buyer, error) {
	return s.repo.ListBuyers(ctx)
}
