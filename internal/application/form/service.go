package form

import (
	"context"
	"fmt"

	domaincatalog "storefront/internal/domain/catalog"
	domain "storefront/internal/domain/form"
	"storefront/internal/domain/ledger"
	"storefront/internal/observability"
	"storefront/internal/observability/logctx"
)

// Service handles order-form submission and lookup. Availability checking at
// submission time is advisory; the authoritative check happens in the ledger
// when stock is actually reserved.
type Service struct {
	repo     domain.Repository
	products domaincatalog.Repository
	log      observability.Logger
}

func NewService(repo domain.Repository, products domaincatalog.Repository, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		repo:     repo,
		products: products,
		log:      logger.With(observability.F("component", "form_service")),
	}
}

// Create validates the contact and line items, rejects forms whose requested
// quantities exceed current availability, and persists the form with its
// line items as one unit.
func (s *Service) Create(ctx context.Context, contact domain.Contact, items []domain.LineItem) (*domain.OrderForm, error) {
	logger := logctx.FromOr(ctx, s.log)

	f, err := domain.New(contact, items)
	if err != nil {
		return nil, err
	}

	if err := s.checkAvailability(ctx, f); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		logger.Error("form_save_failed",
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("form: save: %w", err)
	}

	logger.Info("form_created",
		observability.F("form_id", f.ID),
		observability.F("line_items", len(f.LineItems)),
	)
	return f, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.OrderForm, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// checkAvailability is a read-only guard: every line item's product must
// currently stock at least the requested quantity.
func (s *Service) checkAvailability(ctx context.Context, f *domain.OrderForm) error {
	for _, it := range f.LineItems {
		product, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			return fmt.Errorf("form: load product %d: %w", it.ProductID, err)
		}
		if product.Quantity < it.Quantity {
			return fmt.Errorf("%w: product %d", ledger.ErrInsufficientStock, it.ProductID)
		}
	}
	return nil
}
