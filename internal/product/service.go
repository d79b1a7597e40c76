package product

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	return s.repo.Create(ctx, p)
}

// Ensure returns the product with the same name, creating it when missing.
func (s *Service) Ensure(ctx context.Context, p Product) (Product, bool, error) {
	existing, err := s.repo.GetByName(ctx, p.Name)
	if err == nil {
		return existing, false, nil
	}
	if err != ErrNotFound {
		return Product{}, false, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, false, err
	}
	return created, true, nil
}
