package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
	"github.com/pkordes/backoffice/internal/validate"
)

// CustomerService implements customer CRUD and the customer search engine.
type CustomerService struct {
	customers repo.CustomerRepo
	tags      repo.TagRepo
	validator *validate.Validator
	logger    *slog.Logger
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(customers repo.CustomerRepo, tags repo.TagRepo, v *validate.Validator, logger *slog.Logger) *CustomerService {
	return &CustomerService{customers: customers, tags: tags, validator: v, logger: logger}
}

// Create validates and persists a new customer.
func (s *CustomerService) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	if errs := s.validator.Struct(validate.CustomerFieldsFrom(c)); len(errs) > 0 {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Create: %w", errs)
	}

	created, err := s.customers.Create(ctx, c)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Create: %w", err)
	}
	created.Tags = []domain.Tag{}
	return created, nil
}

// GetByID returns an active customer with its tags.
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.GetByID: %w", err)
	}
	tags, err := s.tags.ListByCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.GetByID: tags: %w", err)
	}
	c.Tags = tags
	return c, nil
}

// Update applies a partial update. The merged customer is validated as a
// whole, so clearing company_name on a company fails.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error) {
	existing, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Update: %w", err)
	}

	merged := patch.Apply(existing)
	if errs := s.validator.Struct(validate.CustomerFieldsFrom(merged)); len(errs) > 0 {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Update: %w", errs)
	}

	updated, err := s.customers.Update(ctx, merged)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Update: %w", err)
	}
	tags, err := s.tags.ListByCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Update: tags: %w", err)
	}
	updated.Tags = tags
	return updated, nil
}

// Delete soft-deletes a customer. Tag links are kept for a later restore.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customers.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("service.CustomerService.Delete: %w", err)
	}
	return nil
}

// Restore reactivates a soft-deleted customer.
func (s *CustomerService) Restore(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	c, err := s.customers.Restore(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Restore: %w", err)
	}
	tags, err := s.tags.ListByCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("service.CustomerService.Restore: tags: %w", err)
	}
	c.Tags = tags
	return c, nil
}

// Search runs the two-step customer search: tag ids are first resolved to
// customer ids (ANY semantics), then the text, type and class filters run
// over that set. An empty tag resolution short-circuits to an empty page
// without touching the customers table, as does a supplied tag filter with
// no usable id or an unknown customer type.
func (s *CustomerService) Search(ctx context.Context, params domain.CustomerSearchParams) (domain.Page[domain.Customer], error) {
	filter := domain.CustomerFilter{
		Terms:        SearchTerms(params.SearchText),
		CustomerType: params.CustomerType,
		Class:        params.Class,
	}

	if params.MatchNone || (params.TagFilter && len(params.TagIDs) == 0) {
		return domain.NewPage[domain.Customer](nil, 0, params.Pagination), nil
	}

	if len(params.TagIDs) > 0 {
		ids, err := s.tags.CustomerIDsWithAnyTag(ctx, params.TagIDs)
		if err != nil {
			return domain.Page[domain.Customer]{}, fmt.Errorf("service.CustomerService.Search: resolve tags: %w", err)
		}
		if len(ids) == 0 {
			return domain.NewPage[domain.Customer](nil, 0, params.Pagination), nil
		}
		filter.IDs = ids
	}

	total, err := s.customers.Count(ctx, filter)
	if err != nil {
		return domain.Page[domain.Customer]{}, fmt.Errorf("service.CustomerService.Search: %w", err)
	}

	customers, err := s.customers.Search(ctx, filter, params.Pagination, params.SortBy, params.SortDesc)
	if err != nil {
		return domain.Page[domain.Customer]{}, fmt.Errorf("service.CustomerService.Search: %w", err)
	}

	s.attachTags(ctx, customers)
	return domain.NewPage(customers, total, params.Pagination), nil
}

// attachTags fills in Tags for each customer. A failed lookup degrades to
// empty tag lists; the customers themselves are still returned.
func (s *CustomerService) attachTags(ctx context.Context, customers []domain.Customer) {
	attachTags(ctx, s.tags, s.logger, customers)
}

func attachTags(ctx context.Context, tags repo.TagRepo, logger *slog.Logger, customers []domain.Customer) {
	if len(customers) == 0 {
		return
	}
	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}

	byCustomer, err := tags.ListByCustomers(ctx, ids)
	if err != nil {
		logger.WarnContext(ctx, "tag lookup failed; returning customers without tags",
			"customers", len(customers), "error", err)
		byCustomer = nil
	}
	for i := range customers {
		customers[i].Tags = byCustomer[customers[i].ID]
		if customers[i].Tags == nil {
			customers[i].Tags = []domain.Tag{}
		}
	}
}
