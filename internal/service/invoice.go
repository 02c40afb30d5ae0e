package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
	"github.com/pkordes/backoffice/internal/validate"
)

// Default honorifics printed after the billing name.
const (
	honorificCompany  = "御中"
	honorificPersonal = "様"
)

// InvoiceService issues, edits and deletes invoices.
// Every write recomputes line amounts and the total from the items.
type InvoiceService struct {
	invoices  repo.InvoiceRepo
	customers repo.CustomerRepo
	validator *validate.Validator
	logger    *slog.Logger
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(invoices repo.InvoiceRepo, customers repo.CustomerRepo, v *validate.Validator, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, customers: customers, validator: v, logger: logger}
}

// Create validates inv, computes its amounts and persists it under a newly
// assigned invoice number.
func (s *InvoiceService) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	inv, err := s.prepare(ctx, inv)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Create: %w", err)
	}
	created, err := s.invoices.Create(ctx, inv)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns an invoice with its items.
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.GetByID: %w", err)
	}
	return inv, nil
}

// Search returns one page of invoices matching text.
func (s *InvoiceService) Search(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Invoice], error) {
	invoices, total, err := s.invoices.Search(ctx, SearchTerms(text), p)
	if err != nil {
		return domain.Page[domain.Invoice]{}, fmt.Errorf("service.InvoiceService.Search: %w", err)
	}
	return domain.NewPage(invoices, total, p), nil
}

// Update replaces an invoice's header and items. The invoice number is kept.
func (s *InvoiceService) Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	inv, err := s.prepare(ctx, inv)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Update: %w", err)
	}
	updated, err := s.invoices.Update(ctx, inv)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("service.InvoiceService.Update: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes an invoice and its items.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.delete(ctx, id); err != nil {
		return fmt.Errorf("service.InvoiceService.Delete: %w", err)
	}
	return nil
}

func (s *InvoiceService) delete(ctx context.Context, id uuid.UUID) error {
	hard, err := s.invoices.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if hard {
		s.logger.WarnContext(ctx, "invoice items soft delete unavailable; items hard-deleted", "invoice_id", id)
	}
	return nil
}

// BulkDelete deletes up to domain.BulkDeleteMaxIDs invoices. Batches of
// domain.BulkDeleteBatchSize run one after another; the ids inside a batch
// are deleted concurrently. One id failing never affects the others, and
// the result lists outcomes in input order.
func (s *InvoiceService) BulkDelete(ctx context.Context, ids []uuid.UUID) (domain.BulkResult, error) {
	if len(ids) == 0 || len(ids) > domain.BulkDeleteMaxIDs {
		return domain.BulkResult{}, fmt.Errorf("service.InvoiceService.BulkDelete: %w", domain.FieldErrors{{
			Field:   "ids",
			Message: fmt.Sprintf("must contain between 1 and %d ids", domain.BulkDeleteMaxIDs),
		}})
	}

	outcomes := make([]error, len(ids))
	for start := 0; start < len(ids); start += domain.BulkDeleteBatchSize {
		end := min(start+domain.BulkDeleteBatchSize, len(ids))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = s.delete(ctx, ids[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	res := domain.BulkResult{Success: []uuid.UUID{}, Failed: []domain.BulkFailure{}}
	for i, err := range outcomes {
		if err == nil {
			res.Success = append(res.Success, ids[i])
			continue
		}
		s.logger.WarnContext(ctx, "bulk delete item failed", "invoice_id", ids[i], "error", err)
		res.Failed = append(res.Failed, domain.BulkFailure{ID: ids[i], Error: bulkMessage(err)})
	}
	return res, nil
}

func bulkMessage(err error) string {
	if errors.Is(err, domain.ErrNotFound) {
		return "invoice not found"
	}
	return err.Error()
}

// Preview computes the totals of items without persisting anything.
func (s *InvoiceService) Preview(items []domain.InvoiceItem) ([]domain.InvoiceItem, domain.InvoiceTotals, error) {
	if errs := s.validator.Struct(validate.ItemsFieldsFrom(items)); len(errs) > 0 {
		return nil, domain.InvoiceTotals{}, fmt.Errorf("service.InvoiceService.Preview: %w", errs)
	}
	out, totals := domain.ComputeTotals(items)
	return out, totals, nil
}

// prepare fills blank billing fields from the linked customer, validates the
// result and computes every amount.
func (s *InvoiceService) prepare(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	if inv.CustomerID != nil {
		if err := s.fillBilling(ctx, &inv); err != nil {
			return domain.Invoice{}, err
		}
	}

	if errs := s.validator.Struct(validate.InvoiceFieldsFrom(inv)); len(errs) > 0 {
		return domain.Invoice{}, errs
	}

	items, totals := domain.ComputeTotals(inv.Items)
	for i := range items {
		items[i].SortOrder = i
	}
	inv.Items = items
	inv.TotalAmount = totals.Total
	return inv, nil
}

func (s *InvoiceService) fillBilling(ctx context.Context, inv *domain.Invoice) error {
	if strings.TrimSpace(inv.BillingName) != "" && strings.TrimSpace(inv.BillingAddress) != "" {
		return nil
	}
	c, err := s.customers.GetByID(ctx, *inv.CustomerID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.FieldErrors{{Field: "customer_id", Message: "unknown customer"}}
	}
	if err != nil {
		return err
	}

	if strings.TrimSpace(inv.BillingName) == "" {
		inv.BillingName = c.Name
		if c.CustomerType == domain.CustomerTypeCompany && c.CompanyName != "" {
			inv.BillingName = c.CompanyName
		}
	}
	if strings.TrimSpace(inv.BillingAddress) == "" {
		inv.BillingAddress = strings.TrimSpace(c.Prefecture + c.City + c.Address)
	}
	if inv.BillingHonorific == "" {
		inv.BillingHonorific = honorificPersonal
		if c.CustomerType == domain.CustomerTypeCompany {
			inv.BillingHonorific = honorificCompany
		}
	}
	return nil
}
