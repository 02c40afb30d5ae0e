package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- mock CustomerRepo -----------------------------------------------------

type mockCustomerRepo struct {
	create        func(ctx context.Context, c domain.Customer) (domain.Customer, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	exists        func(ctx context.Context, id uuid.UUID) (bool, error)
	update        func(ctx context.Context, c domain.Customer) (domain.Customer, error)
	softDelete    func(ctx context.Context, id uuid.UUID) error
	restore       func(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	search        func(ctx context.Context, f domain.CustomerFilter, p domain.PaginationParams, sortBy string, desc bool) ([]domain.Customer, error)
	count         func(ctx context.Context, f domain.CustomerFilter) (int64, error)
	listForExport func(ctx context.Context, ids []uuid.UUID, includeDeleted bool) ([]domain.Customer, error)
}

func (m *mockCustomerRepo) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	return m.create(ctx, c)
}
func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return m.getByID(ctx, id)
}
func (m *mockCustomerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.exists(ctx, id)
}
func (m *mockCustomerRepo) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	return m.update(ctx, c)
}
func (m *mockCustomerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.softDelete(ctx, id)
}
func (m *mockCustomerRepo) Restore(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return m.restore(ctx, id)
}
func (m *mockCustomerRepo) Search(ctx context.Context, f domain.CustomerFilter, p domain.PaginationParams, sortBy string, desc bool) ([]domain.Customer, error) {
	return m.search(ctx, f, p, sortBy, desc)
}
func (m *mockCustomerRepo) Count(ctx context.Context, f domain.CustomerFilter) (int64, error) {
	return m.count(ctx, f)
}
func (m *mockCustomerRepo) ListForExport(ctx context.Context, ids []uuid.UUID, includeDeleted bool) ([]domain.Customer, error) {
	return m.listForExport(ctx, ids, includeDeleted)
}

var _ repo.CustomerRepo = (*mockCustomerRepo)(nil)

// ---- mock TagRepo ----------------------------------------------------------

type mockTagRepo struct {
	create                func(ctx context.Context, name string) (domain.Tag, error)
	getByID               func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	getOrCreate           func(ctx context.Context, name string) (domain.Tag, error)
	listWithUsage         func(ctx context.Context) ([]domain.TagWithUsage, error)
	rename                func(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error)
	delete                func(ctx context.Context, id uuid.UUID) (int64, error)
	existingIDs           func(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	listByCustomer        func(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error)
	listByCustomers       func(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
	customerIDsWithAnyTag func(ctx context.Context, tagIDs []uuid.UUID) ([]uuid.UUID, error)
	replaceForCustomer    func(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) error
	addToCustomer         func(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) (int64, error)
	removeFromCustomer    func(ctx context.Context, customerID, tagID uuid.UUID) error
}

func (m *mockTagRepo) Create(ctx context.Context, name string) (domain.Tag, error) {
	return m.create(ctx, name)
}
func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagRepo) GetOrCreate(ctx context.Context, name string) (domain.Tag, error) {
	return m.getOrCreate(ctx, name)
}
func (m *mockTagRepo) ListWithUsage(ctx context.Context) ([]domain.TagWithUsage, error) {
	return m.listWithUsage(ctx)
}
func (m *mockTagRepo) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error) {
	return m.rename(ctx, id, name)
}
func (m *mockTagRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.delete(ctx, id)
}
func (m *mockTagRepo) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return m.existingIDs(ctx, ids)
}
func (m *mockTagRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error) {
	return m.listByCustomer(ctx, customerID)
}
func (m *mockTagRepo) ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	return m.listByCustomers(ctx, customerIDs)
}
func (m *mockTagRepo) CustomerIDsWithAnyTag(ctx context.Context, tagIDs []uuid.UUID) ([]uuid.UUID, error) {
	return m.customerIDsWithAnyTag(ctx, tagIDs)
}
func (m *mockTagRepo) ReplaceForCustomer(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) error {
	return m.replaceForCustomer(ctx, customerID, tagIDs)
}
func (m *mockTagRepo) AddToCustomer(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) (int64, error) {
	return m.addToCustomer(ctx, customerID, tagIDs)
}
func (m *mockTagRepo) RemoveFromCustomer(ctx context.Context, customerID, tagID uuid.UUID) error {
	return m.removeFromCustomer(ctx, customerID, tagID)
}

var _ repo.TagRepo = (*mockTagRepo)(nil)

// ---- mock InvoiceRepo ------------------------------------------------------

type mockInvoiceRepo struct {
	create     func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Invoice, error)
	search     func(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Invoice, int64, error)
	update     func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	softDelete func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.create(ctx, inv)
}
func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	return m.getByID(ctx, id)
}
func (m *mockInvoiceRepo) Search(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Invoice, int64, error) {
	return m.search(ctx, terms, p)
}
func (m *mockInvoiceRepo) Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.update(ctx, inv)
}
func (m *mockInvoiceRepo) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.softDelete(ctx, id)
}

var _ repo.InvoiceRepo = (*mockInvoiceRepo)(nil)

// ---- mock ProductRepo ------------------------------------------------------

type mockProductRepo struct {
	create     func(ctx context.Context, p domain.Product) (domain.Product, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Product, error)
	list       func(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Product, int64, error)
	update     func(ctx context.Context, p domain.Product) (domain.Product, error)
	softDelete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.create(ctx, p)
}
func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return m.getByID(ctx, id)
}
func (m *mockProductRepo) List(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Product, int64, error) {
	return m.list(ctx, terms, p)
}
func (m *mockProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.update(ctx, p)
}
func (m *mockProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.softDelete(ctx, id)
}

var _ repo.ProductRepo = (*mockProductRepo)(nil)

// ---- mock CompanySettingsRepo ----------------------------------------------

type mockCompanySettingsRepo struct {
	get    func(ctx context.Context) (domain.CompanySettings, error)
	upsert func(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error)
	reset  func(ctx context.Context) error
}

func (m *mockCompanySettingsRepo) Get(ctx context.Context) (domain.CompanySettings, error) {
	return m.get(ctx)
}
func (m *mockCompanySettingsRepo) Upsert(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error) {
	return m.upsert(ctx, s)
}
func (m *mockCompanySettingsRepo) Reset(ctx context.Context) error {
	return m.reset(ctx)
}

var _ repo.CompanySettingsRepo = (*mockCompanySettingsRepo)(nil)
