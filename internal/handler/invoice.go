package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/backoffice/internal/domain"
)

var invoiceMessages = errorMessages{notFound: "invoice not found", conflict: "invoice number already exists"}

// InvoiceItemRequest is one line of an invoice write or preview.
// Quantity accepts a JSON number or a decimal string.
type InvoiceItemRequest struct {
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice int64           `json:"unit_price"`
}

// InvoiceRequest is the body of POST /invoices and PUT /invoices/{id}.
type InvoiceRequest struct {
	IssueDate        openapi_types.Date   `json:"issue_date"`
	CustomerID       *openapi_types.UUID  `json:"customer_id"`
	BillingName      string               `json:"billing_name"`
	BillingAddress   string               `json:"billing_address"`
	BillingHonorific string               `json:"billing_honorific"`
	Notes            string               `json:"notes"`
	Items            []InvoiceItemRequest `json:"items"`
}

// PreviewRequest is the body of POST /invoices/preview.
type PreviewRequest struct {
	Items []InvoiceItemRequest `json:"items"`
}

// BulkDeleteRequest is the body of POST /invoices/bulk/delete.
type BulkDeleteRequest struct {
	InvoiceIDs []openapi_types.UUID `json:"invoice_ids"`
}

// InvoiceItemResponse is one line of an invoice.
type InvoiceItemResponse struct {
	ID        openapi_types.UUID `json:"id"`
	ItemName  string             `json:"item_name"`
	Quantity  decimal.Decimal    `json:"quantity"`
	UnitPrice int64              `json:"unit_price"`
	Amount    int64              `json:"amount"`
	SortOrder int                `json:"sort_order"`
}

// InvoiceResponse is the JSON shape of an invoice. List replies omit items.
type InvoiceResponse struct {
	ID               openapi_types.UUID    `json:"id"`
	InvoiceNumber    string                `json:"invoice_number"`
	IssueDate        openapi_types.Date    `json:"issue_date"`
	CustomerID       *openapi_types.UUID   `json:"customer_id"`
	BillingName      string                `json:"billing_name"`
	BillingAddress   string                `json:"billing_address"`
	BillingHonorific string                `json:"billing_honorific"`
	Notes            string                `json:"notes"`
	Subtotal         *int64                `json:"subtotal,omitempty"`
	Tax              *int64                `json:"tax,omitempty"`
	TotalAmount      int64                 `json:"total_amount"`
	Items            []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// TotalsResponse is the reply of POST /invoices/preview.
type TotalsResponse struct {
	Items    []InvoiceItemResponse `json:"items"`
	Subtotal int64                 `json:"subtotal"`
	Tax      int64                 `json:"tax"`
	Total    int64                 `json:"total"`
}

// ListInvoices handles GET /invoices?q=&page=&limit=.
func (s *Server) ListInvoices(w http.ResponseWriter, r *http.Request) {
	page, err := s.invoices.Search(r.Context(), r.URL.Query().Get("q"), pagination(r))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(page, invoiceToResponse))
}

// CreateInvoice handles POST /invoices.
func (s *Server) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := s.invoices.Create(r.Context(), req.invoice(uuid.Nil))
	if err != nil {
		s.respondError(w, r, err, invoiceMessages)
		return
	}
	writeJSON(w, http.StatusCreated, invoiceToResponse(inv))
}

// GetInvoice handles GET /invoices/{id}.
func (s *Server) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	inv, err := s.invoices.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, invoiceMessages)
		return
	}
	writeJSON(w, http.StatusOK, invoiceToResponse(inv))
}

// UpdateInvoice handles PUT /invoices/{id}. Items are replaced wholesale.
func (s *Server) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	var req InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inv, err := s.invoices.Update(r.Context(), req.invoice(id))
	if err != nil {
		s.respondError(w, r, err, invoiceMessages)
		return
	}
	writeJSON(w, http.StatusOK, invoiceToResponse(inv))
}

// DeleteInvoice handles DELETE /invoices/{id}.
func (s *Server) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	if err := s.invoices.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, invoiceMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "invoice deleted"})
}

// BulkDeleteInvoices handles POST /invoices/bulk/delete. Partial success
// is a 200; only a batch where nothing succeeded is a 500.
func (s *Server) BulkDeleteInvoices(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.invoices.BulkDelete(r.Context(), req.InvoiceIDs)
	if err != nil {
		s.respondError(w, r, err, invoiceMessages)
		return
	}
	if res.AllFailed() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   ErrorDetail{Code: "internal_error", Message: "no invoices were deleted"},
			"results": res,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": res})
}

// PreviewInvoice handles POST /invoices/preview.
func (s *Server) PreviewInvoice(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items, totals, err := s.invoices.Preview(itemsFromRequest(req.Items))
	if err != nil {
		s.respondError(w, r, err, errorMessages{})
		return
	}
	writeJSON(w, http.StatusOK, TotalsResponse{
		Items:    itemsToResponse(items),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
	})
}

func (req InvoiceRequest) invoice(id uuid.UUID) domain.Invoice {
	return domain.Invoice{
		ID:               id,
		IssueDate:        req.IssueDate.Time,
		CustomerID:       req.CustomerID,
		BillingName:      req.BillingName,
		BillingAddress:   req.BillingAddress,
		BillingHonorific: req.BillingHonorific,
		Notes:            req.Notes,
		Items:            itemsFromRequest(req.Items),
	}
}

func itemsFromRequest(in []InvoiceItemRequest) []domain.InvoiceItem {
	out := make([]domain.InvoiceItem, len(in))
	for i, it := range in {
		out[i] = domain.InvoiceItem{ItemName: it.ItemName, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return out
}

func itemsToResponse(items []domain.InvoiceItem) []InvoiceItemResponse {
	out := make([]InvoiceItemResponse, len(items))
	for i, it := range items {
		out[i] = InvoiceItemResponse{
			ID:        it.ID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Amount:    it.Amount,
			SortOrder: it.SortOrder,
		}
	}
	return out
}

func invoiceToResponse(inv domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		IssueDate:        openapi_types.Date{Time: inv.IssueDate},
		CustomerID:       inv.CustomerID,
		BillingName:      inv.BillingName,
		BillingAddress:   inv.BillingAddress,
		BillingHonorific: inv.BillingHonorific,
		Notes:            inv.Notes,
		TotalAmount:      inv.TotalAmount,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
	if len(inv.Items) > 0 {
		sub := domain.Subtotal(inv.Items)
		tax := domain.Tax(sub)
		resp.Subtotal, resp.Tax = &sub, &tax
		resp.Items = itemsToResponse(inv.Items)
	}
	return resp
}
