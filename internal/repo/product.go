package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/backoffice/internal/domain"
)

// ProductRepo defines the persistence operations for catalog Products.
type ProductRepo interface {
	// Create inserts a product. A code already used by an active product
	// yields domain.ErrConflict.
	Create(ctx context.Context, p domain.Product) (domain.Product, error)

	// GetByID returns an active product or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)

	// List returns one page of active products whose code or name matches
	// every term, ordered by code then name, plus the total match count.
	List(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Product, int64, error)

	// Update overwrites all mutable fields of an active product.
	Update(ctx context.Context, p domain.Product) (domain.Product, error)

	// SoftDelete marks an active product deleted. Its code becomes free for reuse.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// pgProductRepo is the Postgres implementation of ProductRepo.
type pgProductRepo struct {
	db db
}

// NewProductRepo constructs a ProductRepo backed by the provided db connection.
func NewProductRepo(db db) ProductRepo {
	return &pgProductRepo{db: db}
}

const productColumns = `id, code, name, unit_price, unit, description, created_at, updated_at, deleted_at`

func (r *pgProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	q := `
		INSERT INTO products (code, name, unit_price, unit, description)
		VALUES (@code, @name, @unit_price, @unit, @description)
		RETURNING ` + productColumns

	created, err := scanProduct(r.db.QueryRow(ctx, q, productArgs(p)))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Create: %w", err)
	}
	return created, nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = @id AND deleted_at IS NULL`

	p, err := scanProduct(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.GetByID: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Product, int64, error) {
	conds := []string{"deleted_at IS NULL"}
	args := pgx.NamedArgs{}
	for i, term := range terms {
		key := "term" + strconv.Itoa(i)
		conds = append(conds, fmt.Sprintf("(code ILIKE @%[1]s OR name ILIKE @%[1]s)", key))
		args[key] = containsPattern(term)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM products`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ProductRepo.List: count: %w", err)
	}

	q := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY code NULLS LAST, name, id LIMIT @limit OFFSET @offset`
	args["limit"] = p.Limit
	args["offset"] = p.Offset()

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ProductRepo.List: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ProductRepo.List: scan: %w", err)
		}
		products = append(products, prod)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ProductRepo.List: rows: %w", err)
	}
	return products, total, nil
}

func (r *pgProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	q := `
		UPDATE products
		SET code        = @code,
		    name        = @name,
		    unit_price  = @unit_price,
		    unit        = @unit,
		    description = @description,
		    updated_at  = now()
		WHERE id = @id AND deleted_at IS NULL
		RETURNING ` + productColumns

	args := productArgs(p)
	args["id"] = p.ID

	updated, err := scanProduct(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Product{}, fmt.Errorf("repo.ProductRepo.Update: %w", err)
	}
	return updated, nil
}

func (r *pgProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE products SET deleted_at = now(), updated_at = now() WHERE id = @id AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ProductRepo.SoftDelete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProductRepo.SoftDelete: %w", domain.ErrNotFound)
	}
	return nil
}

func productArgs(p domain.Product) pgx.NamedArgs {
	return pgx.NamedArgs{
		"code":        nullText(p.Code),
		"name":        p.Name,
		"unit_price":  p.UnitPrice,
		"unit":        nullText(p.Unit),
		"description": nullText(p.Description),
	}
}

// scanProduct maps a single database row into a domain.Product.
func scanProduct(s scanner) (domain.Product, error) {
	var (
		p                       domain.Product
		id                      pgtype.UUID
		code, unit, description pgtype.Text
		deletedAt               pgtype.Timestamptz
	)
	err := s.Scan(&id, &code, &p.Name, &p.UnitPrice, &unit, &description,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Product{}, mapError(err)
	}
	p.ID = uuid.UUID(id.Bytes)
	p.Code = code.String
	p.Unit = unit.String
	p.Description = description.String
	p.DeletedAt = timestampPtr(deletedAt)
	return p, nil
}
