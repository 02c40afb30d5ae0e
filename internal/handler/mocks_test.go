package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/handler"
	"github.com/pkordes/backoffice/internal/service"
)

// ---- mock CustomerServicer -------------------------------------------------

type mockCustomerServicer struct {
	create  func(ctx context.Context, c domain.Customer) (domain.Customer, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	update  func(ctx context.Context, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error)
	delete  func(ctx context.Context, id uuid.UUID) error
	restore func(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	search  func(ctx context.Context, params domain.CustomerSearchParams) (domain.Page[domain.Customer], error)
}

func (m *mockCustomerServicer) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	return m.create(ctx, c)
}
func (m *mockCustomerServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return m.getByID(ctx, id)
}
func (m *mockCustomerServicer) Update(ctx context.Context, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error) {
	return m.update(ctx, id, patch)
}
func (m *mockCustomerServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockCustomerServicer) Restore(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	return m.restore(ctx, id)
}
func (m *mockCustomerServicer) Search(ctx context.Context, params domain.CustomerSearchParams) (domain.Page[domain.Customer], error) {
	return m.search(ctx, params)
}

var _ handler.CustomerServicer = (*mockCustomerServicer)(nil)

// ---- mock TagServicer ------------------------------------------------------

type mockTagServicer struct {
	list            func(ctx context.Context) ([]domain.TagWithUsage, error)
	create          func(ctx context.Context, name string) (domain.Tag, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	rename          func(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error)
	delete          func(ctx context.Context, id uuid.UUID) (int64, error)
	listForCustomer func(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error)
	replace         func(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error)
	add             func(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error)
	remove          func(ctx context.Context, customerID, tagID uuid.UUID) error
}

func (m *mockTagServicer) List(ctx context.Context) ([]domain.TagWithUsage, error) {
	return m.list(ctx)
}
func (m *mockTagServicer) Create(ctx context.Context, name string) (domain.Tag, error) {
	return m.create(ctx, name)
}
func (m *mockTagServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagServicer) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error) {
	return m.rename(ctx, id, name)
}
func (m *mockTagServicer) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.delete(ctx, id)
}
func (m *mockTagServicer) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error) {
	return m.listForCustomer(ctx, customerID)
}
func (m *mockTagServicer) Replace(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error) {
	return m.replace(ctx, customerID, tagIDs)
}
func (m *mockTagServicer) Add(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error) {
	return m.add(ctx, customerID, tagIDs)
}
func (m *mockTagServicer) Remove(ctx context.Context, customerID, tagID uuid.UUID) error {
	return m.remove(ctx, customerID, tagID)
}

var _ handler.TagServicer = (*mockTagServicer)(nil)

// ---- mock ImportServicer / ExportServicer ----------------------------------

type mockImportServicer struct {
	importFn func(ctx context.Context, filename string, r io.Reader, commit bool) (service.ImportReport, error)
}

func (m *mockImportServicer) Import(ctx context.Context, filename string, r io.Reader, commit bool) (service.ImportReport, error) {
	return m.importFn(ctx, filename, r, commit)
}

var _ handler.ImportServicer = (*mockImportServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, opts domain.ExportOptions) (domain.ExportFile, error)
}

func (m *mockExportServicer) Export(ctx context.Context, opts domain.ExportOptions) (domain.ExportFile, error) {
	return m.export(ctx, opts)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- mock InvoiceServicer --------------------------------------------------

type mockInvoiceServicer struct {
	create     func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Invoice, error)
	search     func(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Invoice], error)
	update     func(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	delete     func(ctx context.Context, id uuid.UUID) error
	bulkDelete func(ctx context.Context, ids []uuid.UUID) (domain.BulkResult, error)
	preview    func(items []domain.InvoiceItem) ([]domain.InvoiceItem, domain.InvoiceTotals, error)
}

func (m *mockInvoiceServicer) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.create(ctx, inv)
}
func (m *mockInvoiceServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	return m.getByID(ctx, id)
}
func (m *mockInvoiceServicer) Search(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Invoice], error) {
	return m.search(ctx, text, p)
}
func (m *mockInvoiceServicer) Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return m.update(ctx, inv)
}
func (m *mockInvoiceServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockInvoiceServicer) BulkDelete(ctx context.Context, ids []uuid.UUID) (domain.BulkResult, error) {
	return m.bulkDelete(ctx, ids)
}
func (m *mockInvoiceServicer) Preview(items []domain.InvoiceItem) ([]domain.InvoiceItem, domain.InvoiceTotals, error) {
	return m.preview(items)
}

var _ handler.InvoiceServicer = (*mockInvoiceServicer)(nil)

// ---- mock ProductServicer / CompanySettingsServicer ------------------------

type mockProductServicer struct {
	create  func(ctx context.Context, p domain.Product) (domain.Product, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Product, error)
	list    func(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Product], error)
	update  func(ctx context.Context, p domain.Product) (domain.Product, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductServicer) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.create(ctx, p)
}
func (m *mockProductServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return m.getByID(ctx, id)
}
func (m *mockProductServicer) List(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Product], error) {
	return m.list(ctx, text, p)
}
func (m *mockProductServicer) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	return m.update(ctx, p)
}
func (m *mockProductServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.ProductServicer = (*mockProductServicer)(nil)

type mockCompanySettingsServicer struct {
	get   func(ctx context.Context) (domain.CompanySettings, error)
	save  func(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error)
	reset func(ctx context.Context) error
}

func (m *mockCompanySettingsServicer) Get(ctx context.Context) (domain.CompanySettings, error) {
	return m.get(ctx)
}
func (m *mockCompanySettingsServicer) Save(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error) {
	return m.save(ctx, s)
}
func (m *mockCompanySettingsServicer) Reset(ctx context.Context) error {
	return m.reset(ctx)
}

var _ handler.CompanySettingsServicer = (*mockCompanySettingsServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svcs handler.Services) http.Handler {
	return newHTTPHandlerEnv(svcs, false)
}

func newHTTPHandlerEnv(svcs handler.Services, production bool) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svcs, logger, production).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body io.Reader) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
