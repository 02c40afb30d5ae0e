package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/backoffice/internal/domain"
)

// TagRepo defines the persistence operations for Tags and the customer_tags join table.
type TagRepo interface {
	// Create inserts a tag. Returns domain.ErrConflict if the name is taken.
	Create(ctx context.Context, name string) (domain.Tag, error)

	// GetByID retrieves a single tag. Returns domain.ErrNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// GetOrCreate returns the tag named name, inserting it first if needed.
	GetOrCreate(ctx context.Context, name string) (domain.Tag, error)

	// ListWithUsage returns all tags ordered by name, each with the number of
	// active customers carrying it.
	ListWithUsage(ctx context.Context) ([]domain.TagWithUsage, error)

	// Rename changes a tag's name. Returns domain.ErrNotFound if missing and
	// domain.ErrConflict if another tag already uses the name.
	Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error)

	// Delete removes every association of the tag and then the tag itself,
	// in one transaction. Returns how many customers carried the tag.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)

	// ExistingIDs returns the subset of ids that name existing tags.
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	// ListByCustomer returns the tags linked to a customer in link order.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error)

	// ListByCustomers returns the tags of several customers in one query,
	// keyed by customer id. Customers without tags are absent from the map.
	ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)

	// CustomerIDsWithAnyTag returns the distinct customers linked to at least
	// one of tagIDs.
	CustomerIDsWithAnyTag(ctx context.Context, tagIDs []uuid.UUID) ([]uuid.UUID, error)

	// ReplaceForCustomer swaps the customer's whole tag set for tagIDs in one
	// transaction. An empty tagIDs clears all links.
	ReplaceForCustomer(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) error

	// AddToCustomer links tagIDs to the customer, skipping existing links.
	// Returns the number of links actually created.
	AddToCustomer(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) (int64, error)

	// RemoveFromCustomer unlinks one tag from a customer.
	// Returns domain.ErrNotFound if the tag is not linked to the customer.
	RemoveFromCustomer(ctx context.Context, customerID, tagID uuid.UUID) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Create inserts a new tag row.
func (r *pgTagRepo) Create(ctx context.Context, name string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name)
		VALUES (@name)
		RETURNING id, name, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a tag by primary key.
func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	const q = `SELECT id, name, created_at FROM tags WHERE id = @id`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetOrCreate inserts a tag by name or returns the existing row.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when
// the conflict handler skips the insert.
func (r *pgTagRepo) GetOrCreate(ctx context.Context, name string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name)
		VALUES (@name)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetOrCreate: %w", err)
	}
	return result, nil
}

// ListWithUsage returns every tag with its active-customer count.
func (r *pgTagRepo) ListWithUsage(ctx context.Context) ([]domain.TagWithUsage, error) {
	const q = `
		SELECT t.id, t.name, t.created_at, count(c.id)
		FROM tags t
		LEFT JOIN customer_tags ct ON ct.tag_id = t.id
		LEFT JOIN customers c ON c.id = ct.customer_id AND c.deleted_at IS NULL
		GROUP BY t.id
		ORDER BY t.name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListWithUsage: %w", err)
	}
	defer rows.Close()

	tags := []domain.TagWithUsage{}
	for rows.Next() {
		var (
			tu domain.TagWithUsage
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &tu.Name, &tu.CreatedAt, &tu.CustomerCount); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListWithUsage: scan: %w", err)
		}
		tu.ID = uuid.UUID(id.Bytes)
		tags = append(tags, tu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListWithUsage: rows: %w", err)
	}
	return tags, nil
}

// Rename updates a tag's name; the unique index rejects collisions.
func (r *pgTagRepo) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error) {
	const q = `
		UPDATE tags SET name = @name
		WHERE id = @id
		RETURNING id, name, created_at`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Rename: %w", err)
	}
	return result, nil
}

// Delete removes the tag's associations and then the tag, atomically.
func (r *pgTagRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var unlinked int64
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM customer_tags WHERE tag_id = @id`, pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		unlinked = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM tags WHERE id = @id`, pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	return unlinked, nil
}

// ExistingIDs filters ids down to those present in the tags table.
func (r *pgTagRepo) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT id FROM tags WHERE id = ANY(@ids)`

	found, err := r.queryIDs(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ExistingIDs: %w", err)
	}
	return found, nil
}

// ListByCustomer returns a customer's tags ordered by when they were linked.
func (r *pgTagRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN customer_tags ct ON ct.tag_id = t.id
		WHERE ct.customer_id = @customer_id
		ORDER BY ct.created_at, t.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"customer_id": customerID})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByCustomer: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByCustomer: scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByCustomer: rows: %w", err)
	}
	return tags, nil
}

// ListByCustomers batches ListByCustomer for a page or an export.
func (r *pgTagRepo) ListByCustomers(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	const q = `
		SELECT ct.customer_id, t.id, t.name, t.created_at
		FROM tags t
		JOIN customer_tags ct ON ct.tag_id = t.id
		WHERE ct.customer_id = ANY(@customer_ids)
		ORDER BY ct.customer_id, ct.created_at, t.name`

	out := make(map[uuid.UUID][]domain.Tag)
	if len(customerIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"customer_ids": customerIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByCustomers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			customerID, id pgtype.UUID
			tag            domain.Tag
		)
		if err := rows.Scan(&customerID, &id, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListByCustomers: scan: %w", err)
		}
		tag.ID = uuid.UUID(id.Bytes)
		cid := uuid.UUID(customerID.Bytes)
		out[cid] = append(out[cid], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByCustomers: rows: %w", err)
	}
	return out, nil
}

// CustomerIDsWithAnyTag resolves tag ids to the customers carrying any of them.
func (r *pgTagRepo) CustomerIDsWithAnyTag(ctx context.Context, tagIDs []uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT customer_id FROM customer_tags WHERE tag_id = ANY(@tag_ids)`

	ids, err := r.queryIDs(ctx, q, pgx.NamedArgs{"tag_ids": tagIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.CustomerIDsWithAnyTag: %w", err)
	}
	return ids, nil
}

// ReplaceForCustomer deletes the customer's links and inserts the new set
// inside one transaction, so a failure leaves the old set in place.
func (r *pgTagRepo) ReplaceForCustomer(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM customer_tags WHERE customer_id = @customer_id`,
			pgx.NamedArgs{"customer_id": customerID}); err != nil {
			return err
		}
		_, err := insertCustomerTags(ctx, tx, customerID, tagIDs)
		return err
	})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.ReplaceForCustomer: %w", err)
	}
	return nil
}

// AddToCustomer links tags to a customer, ignoring pairs that already exist.
func (r *pgTagRepo) AddToCustomer(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) (int64, error) {
	n, err := insertCustomerTags(ctx, r.db, customerID, tagIDs)
	if err != nil {
		return 0, fmt.Errorf("repo.TagRepo.AddToCustomer: %w", err)
	}
	return n, nil
}

// RemoveFromCustomer deletes a single customer/tag link.
func (r *pgTagRepo) RemoveFromCustomer(ctx context.Context, customerID, tagID uuid.UUID) error {
	const q = `DELETE FROM customer_tags WHERE customer_id = @customer_id AND tag_id = @tag_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"customer_id": customerID, "tag_id": tagID})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.RemoveFromCustomer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.RemoveFromCustomer: %w", domain.ErrNotFound)
	}
	return nil
}

// insertCustomerTags inserts one link per tag id, preserving the order of
// tagIDs in created_at. Existing pairs are skipped.
func insertCustomerTags(ctx context.Context, d db, customerID uuid.UUID, tagIDs []uuid.UUID) (int64, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}
	const q = `
		INSERT INTO customer_tags (customer_id, tag_id)
		SELECT @customer_id, t.tag_id
		FROM unnest(@tag_ids::uuid[]) WITH ORDINALITY AS t(tag_id, ord)
		ORDER BY t.ord
		ON CONFLICT (customer_id, tag_id) DO NOTHING`

	tag, err := d.Exec(ctx, q, pgx.NamedArgs{"customer_id": customerID, "tag_ids": tagIDs})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgTagRepo) queryIDs(ctx context.Context, q string, args pgx.NamedArgs) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	if err := s.Scan(&id, &t.Name, &t.CreatedAt); err != nil {
		return domain.Tag{}, mapError(err)
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
