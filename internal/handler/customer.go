package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/backoffice/internal/domain"
)

var customerMessages = errorMessages{notFound: "customer not found"}

// CustomerRequest is the body of POST /customers and PUT /customers/{id}.
// Absent fields are left unchanged on update. Dates are YYYY-MM-DD strings;
// an empty string clears them.
type CustomerRequest struct {
	CustomerType      *string `json:"customer_type"`
	CompanyName       *string `json:"company_name"`
	Name              *string `json:"name"`
	NameKana          *string `json:"name_kana"`
	Class             *string `json:"class"`
	BirthDate         *string `json:"birth_date"`
	PostalCode        *string `json:"postal_code"`
	Prefecture        *string `json:"prefecture"`
	City              *string `json:"city"`
	Address           *string `json:"address"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	ContractStartDate *string `json:"contract_start_date"`
	InvoiceMethod     *string `json:"invoice_method"`
	PaymentTerms      *string `json:"payment_terms"`
	Memo              *string `json:"memo"`
}

// CustomerResponse is the JSON shape of a customer.
type CustomerResponse struct {
	ID                openapi_types.UUID  `json:"id"`
	CustomerType      string              `json:"customer_type"`
	CompanyName       string              `json:"company_name"`
	Name              string              `json:"name"`
	NameKana          string              `json:"name_kana"`
	Class             string              `json:"class"`
	BirthDate         *openapi_types.Date `json:"birth_date"`
	PostalCode        string              `json:"postal_code"`
	Prefecture        string              `json:"prefecture"`
	City              string              `json:"city"`
	Address           string              `json:"address"`
	Phone             string              `json:"phone"`
	Email             string              `json:"email"`
	ContractStartDate *openapi_types.Date `json:"contract_start_date"`
	InvoiceMethod     string              `json:"invoice_method"`
	PaymentTerms      string              `json:"payment_terms"`
	Memo              string              `json:"memo"`
	Tags              []TagResponse       `json:"tags"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	DeletedAt         *time.Time          `json:"deleted_at,omitempty"`
}

// PageResponse is one page of results with pagination metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	Limit      int   `json:"limit"`
}

func pageResponse[D, T any](p domain.Page[D], convert func(D) T) PageResponse[T] {
	data := make([]T, len(p.Data))
	for i, d := range p.Data {
		data[i] = convert(d)
	}
	return PageResponse[T]{
		Data:       data,
		TotalCount: p.TotalCount,
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Limit:      p.Limit,
	}
}

// SearchCustomers handles GET /customers/search.
func (s *Server) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tagIDs, tagFilter := queryUUIDs(r, "tagIds")
	params := domain.NewCustomerSearchParams(
		q.Get("searchText"),
		q.Get("customerType"),
		q.Get("class"),
		tagIDs,
		pagination(r),
		q.Get("sortBy"),
		q.Get("sortOrder"),
	)
	params.TagFilter = tagFilter

	page, err := s.customers.Search(r.Context(), params)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(page, customerToResponse))
}

// CreateCustomer handles POST /customers.
func (s *Server) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}

	c, err := s.customers.Create(r.Context(), patch.Apply(domain.Customer{}))
	if err != nil {
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusCreated, customerToResponse(c))
}

// GetCustomer handles GET /customers/{id}.
func (s *Server) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	c, err := s.customers.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(c))
}

// UpdateCustomer handles PUT /customers/{id} as a partial update.
func (s *Server) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	var req CustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}

	c, err := s.customers.Update(r.Context(), id, patch)
	if err != nil {
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(c))
}

// DeleteCustomer handles DELETE /customers/{id}.
func (s *Server) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	if err := s.customers.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "customer deleted"})
}

// RestoreCustomer handles POST /customers/{id}/restore.
func (s *Server) RestoreCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	c, err := s.customers.Restore(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, errorMessages{notFound: "deleted customer not found"})
		return
	}
	writeJSON(w, http.StatusOK, customerToResponse(c))
}

// patch converts the request into a CustomerPatch. Malformed dates are
// reported as field errors.
func (req CustomerRequest) patch() (domain.CustomerPatch, error) {
	p := domain.CustomerPatch{
		CompanyName:  req.CompanyName,
		Name:         req.Name,
		NameKana:     req.NameKana,
		Class:        req.Class,
		PostalCode:   req.PostalCode,
		Prefecture:   req.Prefecture,
		City:         req.City,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		PaymentTerms: req.PaymentTerms,
		Memo:         req.Memo,
	}
	if req.CustomerType != nil {
		ct := domain.CustomerType(*req.CustomerType)
		p.CustomerType = &ct
	}
	if req.InvoiceMethod != nil {
		im := domain.InvoiceMethod(*req.InvoiceMethod)
		p.InvoiceMethod = &im
	}

	var errs domain.FieldErrors
	var err error
	if p.BirthDate, err = parseDateField(req.BirthDate); err != nil {
		errs = append(errs, domain.FieldError{Field: "birth_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if p.ContractStartDate, err = parseDateField(req.ContractStartDate); err != nil {
		errs = append(errs, domain.FieldError{Field: "contract_start_date", Message: "must be a date in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		return domain.CustomerPatch{}, errs
	}
	return p, nil
}

// parseDateField maps nil to "unchanged", "" to "clear" and anything else
// to a parsed date.
func parseDateField(s *string) (**time.Time, error) {
	if s == nil {
		return nil, nil
	}
	if *s == "" {
		var cleared *time.Time
		return &cleared, nil
	}
	t, err := time.Parse(openapi_types.DateFormat, *s)
	if err != nil {
		return nil, err
	}
	tp := &t
	return &tp, nil
}

func customerToResponse(c domain.Customer) CustomerResponse {
	tags := make([]TagResponse, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = tagToResponse(t)
	}
	return CustomerResponse{
		ID:                c.ID,
		CustomerType:      string(c.CustomerType),
		CompanyName:       c.CompanyName,
		Name:              c.Name,
		NameKana:          c.NameKana,
		Class:             c.Class,
		BirthDate:         dateResponse(c.BirthDate),
		PostalCode:        c.PostalCode,
		Prefecture:        c.Prefecture,
		City:              c.City,
		Address:           c.Address,
		Phone:             c.Phone,
		Email:             c.Email,
		ContractStartDate: dateResponse(c.ContractStartDate),
		InvoiceMethod:     string(c.InvoiceMethod),
		PaymentTerms:      c.PaymentTerms,
		Memo:              c.Memo,
		Tags:              tags,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		DeletedAt:         c.DeletedAt,
	}
}

func dateResponse(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}
