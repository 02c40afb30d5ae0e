// Package handler implements the HTTP handlers for the back-office API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (customer.go, tag.go, invoice.go, ...) but share the same Server
// struct so they can access its dependencies. Routes wires them into chi.
package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/service"
)

// CustomerServicer defines the customer operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type CustomerServicer interface {
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.CustomerPatch) (domain.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (domain.Customer, error)
	Search(ctx context.Context, params domain.CustomerSearchParams) (domain.Page[domain.Customer], error)
}

// TagServicer defines the tag catalog and tag attachment operations.
type TagServicer interface {
	List(ctx context.Context) ([]domain.TagWithUsage, error)
	Create(ctx context.Context, name string) (domain.Tag, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error)
	Replace(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error)
	Add(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error)
	Remove(ctx context.Context, customerID, tagID uuid.UUID) error
}

// ImportServicer parses uploaded customer files.
type ImportServicer interface {
	Import(ctx context.Context, filename string, r io.Reader, commit bool) (service.ImportReport, error)
}

// ExportServicer renders customer downloads.
type ExportServicer interface {
	Export(ctx context.Context, opts domain.ExportOptions) (domain.ExportFile, error)
}

// InvoiceServicer defines the invoice operations.
type InvoiceServicer interface {
	Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error)
	Search(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Invoice], error)
	Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, ids []uuid.UUID) (domain.BulkResult, error)
	Preview(items []domain.InvoiceItem) ([]domain.InvoiceItem, domain.InvoiceTotals, error)
}

// ProductServicer defines the product catalog operations.
type ProductServicer interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Product], error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompanySettingsServicer reads and writes the issuer details.
type CompanySettingsServicer interface {
	Get(ctx context.Context) (domain.CompanySettings, error)
	Save(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error)
	Reset(ctx context.Context) error
}

// Services bundles every dependency of Server. Tests set only what they exercise.
type Services struct {
	Customers CustomerServicer
	Tags      TagServicer
	Import    ImportServicer
	Export    ExportServicer
	Invoices  InvoiceServicer
	Products  ProductServicer
	Company   CompanySettingsServicer
}

// Server holds the handler dependencies.
type Server struct {
	customers CustomerServicer
	tags      TagServicer
	importer  ImportServicer
	exporter  ExportServicer
	invoices  InvoiceServicer
	products  ProductServicer
	company   CompanySettingsServicer

	logger *slog.Logger
	// hideInternal replaces 500 messages with a generic one.
	hideInternal bool
}

// NewServer constructs the Server. With production set, internal error
// details never reach the client.
func NewServer(svcs Services, logger *slog.Logger, production bool) *Server {
	return &Server{
		customers:    svcs.Customers,
		tags:         svcs.Tags,
		importer:     svcs.Import,
		exporter:     svcs.Export,
		invoices:     svcs.Invoices,
		products:     svcs.Products,
		company:      svcs.Company,
		logger:       logger,
		hideInternal: production,
	}
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", s.CreateCustomer)
		r.Get("/search", s.SearchCustomers)
		r.Get("/export", s.ExportCustomers)
		r.Post("/export", s.ExportSelectedCustomers)
		r.Post("/import", s.ImportCustomers)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetCustomer)
			r.Put("/", s.UpdateCustomer)
			r.Delete("/", s.DeleteCustomer)
			r.Post("/restore", s.RestoreCustomer)

			r.Get("/tags", s.ListCustomerTags)
			r.Put("/tags", s.ReplaceCustomerTags)
			r.Post("/tags", s.AddCustomerTags)
			r.Delete("/tags/{tagId}", s.RemoveCustomerTag)
		})
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.ListTags)
		r.Post("/", s.CreateTag)
		r.Get("/{id}", s.GetTag)
		r.Put("/{id}", s.RenameTag)
		r.Delete("/{id}", s.DeleteTag)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", s.ListInvoices)
		r.Post("/", s.CreateInvoice)
		r.Post("/preview", s.PreviewInvoice)
		r.Post("/bulk/delete", s.BulkDeleteInvoices)
		r.Get("/{id}", s.GetInvoice)
		r.Put("/{id}", s.UpdateInvoice)
		r.Delete("/{id}", s.DeleteInvoice)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.ListProducts)
		r.Post("/", s.CreateProduct)
		r.Get("/{id}", s.GetProduct)
		r.Put("/{id}", s.UpdateProduct)
		r.Delete("/{id}", s.DeleteProduct)
	})

	r.Get("/company-settings", s.GetCompanySettings)
	r.Put("/company-settings", s.SaveCompanySettings)
	r.Delete("/company-settings", s.ResetCompanySettings)

	return r
}
