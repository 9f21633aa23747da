package catalog

import (
	"context"

	domain "storefront/internal/domain/catalog"
	"storefront/internal/observability"
)

// Service is the thin CRUD wrapper over the product repository. Quantity is
// set at creation and adjusted on restock through Update; all order-driven
// quantity movement goes through the inventory ledger instead.
type Service struct {
	repo domain.Repository
	log  observability.Logger
}

func NewService(repo domain.Repository, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		repo: repo,
		log:  logger.With(observability.F("component", "catalog_service")),
	}
}

func (s *Service) Create(ctx context.Context, p *domain.Product) error {
	if p.PriceAmount <= 0 {
		return domain.ErrInvalidPrice
	}
	if p.PriceCurrency == "" {
		p.PriceCurrency = "RUB"
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, p *domain.Product) error {
	if p.PriceAmount <= 0 {
		return domain.ErrInvalidPrice
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
