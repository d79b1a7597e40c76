package supplier

import "context"

// Service provides business logic for suppliers.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

// Ensure returns the supplier with the given name, creating it when missing.
func (s *Service) Ensure(ctx context.Context, sup Supplier) (Supplier, bool, error) {
	existing, err := s.repo.GetByName(ctx, sup.Name)
	if err == nil {
		return existing, false, nil
	}
	if err != ErrNotFound {
		return Supplier{}, false, err
	}
	created, err := s.repo.Create(ctx, sup)
	if err != nil {
		return Supplier{}, false, err
	}
	return created, true, nil
}
