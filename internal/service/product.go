package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
	"github.com/pkordes/backoffice/internal/validate"
)

// ProductService manages the product catalog.
type ProductService struct {
	products  repo.ProductRepo
	validator *validate.Validator
}

// NewProductService constructs a ProductService.
func NewProductService(products repo.ProductRepo, v *validate.Validator) *ProductService {
	return &ProductService{products: products, validator: v}
}

// Create validates and inserts a product.
func (s *ProductService) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	p = trimProduct(p)
	if errs := s.validator.Struct(validate.ProductFieldsFrom(p)); len(errs) > 0 {
		return domain.Product{}, fmt.Errorf("service.ProductService.Create: %w", errs)
	}
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("service.ProductService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns an active product.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("service.ProductService.GetByID: %w", err)
	}
	return p, nil
}

// List returns one page of products matching text.
func (s *ProductService) List(ctx context.Context, text string, p domain.PaginationParams) (domain.Page[domain.Product], error) {
	products, total, err := s.products.List(ctx, SearchTerms(text), p)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("service.ProductService.List: %w", err)
	}
	return domain.NewPage(products, total, p), nil
}

// Update overwrites a product.
func (s *ProductService) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	p = trimProduct(p)
	if errs := s.validator.Struct(validate.ProductFieldsFrom(p)); len(errs) > 0 {
		return domain.Product{}, fmt.Errorf("service.ProductService.Update: %w", errs)
	}
	updated, err := s.products.Update(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("service.ProductService.Update: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("service.ProductService.Delete: %w", err)
	}
	return nil
}

func trimProduct(p domain.Product) domain.Product {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.Unit = strings.TrimSpace(p.Unit)
	return p
}
