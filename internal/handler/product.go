package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/backoffice/internal/domain"
)

var productMessages = errorMessages{notFound: "product not found", conflict: "product code already in use"}

// ProductRequest is the body of POST /products and PUT /products/{id}.
type ProductRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	UnitPrice   int64  `json:"unit_price"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
}

// ProductResponse is the JSON shape of a product.
type ProductResponse struct {
	ID          openapi_types.UUID `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	UnitPrice   int64              `json:"unit_price"`
	Unit        string             `json:"unit"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ListProducts handles GET /products?q=&page=&limit=.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := s.products.List(r.Context(), r.URL.Query().Get("q"), pagination(r))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(page, productToResponse))
}

// CreateProduct handles POST /products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.products.Create(r.Context(), req.product(uuid.Nil))
	if err != nil {
		s.respondError(w, r, err, productMessages)
		return
	}
	writeJSON(w, http.StatusCreated, productToResponse(p))
}

// GetProduct handles GET /products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	p, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, productMessages)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// UpdateProduct handles PUT /products/{id}.
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.products.Update(r.Context(), req.product(id))
	if err != nil {
		s.respondError(w, r, err, productMessages)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(p))
}

// DeleteProduct handles DELETE /products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, productMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "product deleted"})
}

func (req ProductRequest) product(id uuid.UUID) domain.Product {
	return domain.Product{
		ID:          id,
		Code:        req.Code,
		Name:        req.Name,
		UnitPrice:   req.UnitPrice,
		Unit:        req.Unit,
		Description: req.Description,
	}
}

func productToResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		UnitPrice:   p.UnitPrice,
		Unit:        p.Unit,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
