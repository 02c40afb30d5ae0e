package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pkordes/backoffice/internal/domain"
)

// InvoiceRepo defines the persistence operations for Invoices and their items.
// Items are always written together with their invoice.
type InvoiceRepo interface {
	// Create assigns the next invoice number and inserts the invoice and its
	// items in one transaction. Amounts must already be computed.
	Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)

	// GetByID returns an active invoice with its active items in sort order.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error)

	// Search returns one page of active invoices (without items) whose
	// number or billing name matches every term, newest issue date first,
	// plus the total match count.
	Search(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Invoice, int64, error)

	// Update overwrites the header and replaces all items in one transaction.
	// The invoice number never changes.
	Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)

	// SoftDelete removes an invoice's items and then soft-deletes the invoice,
	// in one transaction. Items are soft-deleted when the schema allows it;
	// otherwise they are hard-deleted and itemsHardDeleted reports true.
	SoftDelete(ctx context.Context, id uuid.UUID) (itemsHardDeleted bool, err error)
}

// pgInvoiceRepo is the Postgres implementation of InvoiceRepo.
type pgInvoiceRepo struct {
	db db
}

// NewInvoiceRepo constructs an InvoiceRepo backed by the provided db connection.
func NewInvoiceRepo(db db) InvoiceRepo {
	return &pgInvoiceRepo{db: db}
}

const invoiceColumns = `id, invoice_number, issue_date, customer_id, billing_name,
		billing_address, billing_honorific, notes, total_amount,
		created_at, updated_at, deleted_at`

// Create inserts the invoice header and items atomically.
func (r *pgInvoiceRepo) Create(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	q := `
		INSERT INTO invoices (invoice_number, issue_date, customer_id, billing_name,
			billing_address, billing_honorific, notes, total_amount)
		VALUES ('INV-' || to_char(@issue_date::date, 'YYYYMM') || '-' || lpad(nextval('invoice_number_seq')::text, 5, '0'),
			@issue_date, @customer_id, @billing_name,
			@billing_address, @billing_honorific, @notes, @total_amount)
		RETURNING ` + invoiceColumns

	var result domain.Invoice
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		created, err := scanInvoice(tx.QueryRow(ctx, q, invoiceArgs(inv)))
		if err != nil {
			return err
		}
		items, err := insertItems(ctx, tx, created.ID, inv.Items)
		if err != nil {
			return err
		}
		created.Items = items
		result = created
		return nil
	})
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("repo.InvoiceRepo.Create: %w", mapError(err))
	}
	return result, nil
}

// GetByID loads an active invoice and its items.
func (r *pgInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = @id AND deleted_at IS NULL`

	inv, err := scanInvoice(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("repo.InvoiceRepo.GetByID: %w", err)
	}
	items, err := listItems(ctx, r.db, id)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("repo.InvoiceRepo.GetByID: items: %w", err)
	}
	inv.Items = items
	return inv, nil
}

// Search returns one page of matching invoices and the total count.
func (r *pgInvoiceRepo) Search(ctx context.Context, terms []string, p domain.PaginationParams) ([]domain.Invoice, int64, error) {
	conds := []string{"deleted_at IS NULL"}
	args := pgx.NamedArgs{}
	for i, term := range terms {
		key := "term" + strconv.Itoa(i)
		conds = append(conds, fmt.Sprintf("(invoice_number ILIKE @%[1]s OR billing_name ILIKE @%[1]s)", key))
		args[key] = containsPattern(term)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM invoices`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.InvoiceRepo.Search: count: %w", err)
	}

	q := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		` ORDER BY issue_date DESC, invoice_number DESC LIMIT @limit OFFSET @offset`
	args["limit"] = p.Limit
	args["offset"] = p.Offset()

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.InvoiceRepo.Search: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.InvoiceRepo.Search: scan: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.InvoiceRepo.Search: rows: %w", err)
	}
	return invoices, total, nil
}

// Update rewrites the header and items of an active invoice.
func (r *pgInvoiceRepo) Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	q := `
		UPDATE invoices
		SET issue_date        = @issue_date,
		    customer_id       = @customer_id,
		    billing_name      = @billing_name,
		    billing_address   = @billing_address,
		    billing_honorific = @billing_honorific,
		    notes             = @notes,
		    total_amount      = @total_amount,
		    updated_at        = now()
		WHERE id = @id AND deleted_at IS NULL
		RETURNING ` + invoiceColumns

	args := invoiceArgs(inv)
	args["id"] = inv.ID

	var result domain.Invoice
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		updated, err := scanInvoice(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = @id`, pgx.NamedArgs{"id": inv.ID}); err != nil {
			return err
		}
		items, err := insertItems(ctx, tx, inv.ID, inv.Items)
		if err != nil {
			return err
		}
		updated.Items = items
		result = updated
		return nil
	})
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("repo.InvoiceRepo.Update: %w", err)
	}
	return result, nil
}

// SoftDelete retires an invoice and its items.
// The items step runs in a savepoint so a failed soft delete (e.g. a legacy
// schema without invoice_items.deleted_at) can fall back to a hard delete
// without aborting the outer transaction.
func (r *pgInvoiceRepo) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	var hardDeleted bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM invoices WHERE id = @id AND deleted_at IS NULL)`,
			pgx.NamedArgs{"id": id}).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}

		softErr := pgx.BeginFunc(ctx, tx, func(sp pgx.Tx) error {
			_, err := sp.Exec(ctx,
				`UPDATE invoice_items SET deleted_at = now() WHERE invoice_id = @id AND deleted_at IS NULL`,
				pgx.NamedArgs{"id": id})
			return err
		})
		if softErr != nil {
			hardDeleted = true
			if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = @id`, pgx.NamedArgs{"id": id}); err != nil {
				return fmt.Errorf("hard delete items after %v: %w", softErr, err)
			}
		}

		_, err := tx.Exec(ctx,
			`UPDATE invoices SET deleted_at = now(), updated_at = now() WHERE id = @id AND deleted_at IS NULL`,
			pgx.NamedArgs{"id": id})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("repo.InvoiceRepo.SoftDelete: %w", err)
	}
	return hardDeleted, nil
}

func invoiceArgs(inv domain.Invoice) pgx.NamedArgs {
	var customerID pgtype.UUID
	if inv.CustomerID != nil {
		customerID = pgtype.UUID{Bytes: *inv.CustomerID, Valid: true}
	}
	return pgx.NamedArgs{
		"issue_date":        pgtype.Date{Time: inv.IssueDate, Valid: true},
		"customer_id":       customerID,
		"billing_name":      inv.BillingName,
		"billing_address":   nullText(inv.BillingAddress),
		"billing_honorific": nullText(inv.BillingHonorific),
		"notes":             nullText(inv.Notes),
		"total_amount":      inv.TotalAmount,
	}
}

// insertItems writes items in slice order and returns them as stored.
func insertItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []domain.InvoiceItem) ([]domain.InvoiceItem, error) {
	const q = `
		INSERT INTO invoice_items (invoice_id, item_name, quantity, unit_price, amount, sort_order)
		VALUES (@invoice_id, @item_name, @quantity::numeric, @unit_price, @amount, @sort_order)
		RETURNING id, invoice_id, item_name, quantity::text, unit_price, amount, sort_order`

	out := make([]domain.InvoiceItem, 0, len(items))
	for i, it := range items {
		row := tx.QueryRow(ctx, q, pgx.NamedArgs{
			"invoice_id": invoiceID,
			"item_name":  it.ItemName,
			"quantity":   it.Quantity.String(),
			"unit_price": it.UnitPrice,
			"amount":     it.Amount,
			"sort_order": i,
		})
		stored, err := scanItem(row)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, stored)
	}
	return out, nil
}

func listItems(ctx context.Context, d db, invoiceID uuid.UUID) ([]domain.InvoiceItem, error) {
	const q = `
		SELECT id, invoice_id, item_name, quantity::text, unit_price, amount, sort_order
		FROM invoice_items
		WHERE invoice_id = @invoice_id AND deleted_at IS NULL
		ORDER BY sort_order`

	rows, err := d.Query(ctx, q, pgx.NamedArgs{"invoice_id": invoiceID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.InvoiceItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// scanInvoice maps a single database row into a domain.Invoice (without items).
func scanInvoice(s scanner) (domain.Invoice, error) {
	var (
		inv                       domain.Invoice
		id, customerID            pgtype.UUID
		issueDate                 pgtype.Date
		address, honorific, notes pgtype.Text
		deletedAt                 pgtype.Timestamptz
	)
	err := s.Scan(&id, &inv.InvoiceNumber, &issueDate, &customerID, &inv.BillingName,
		&address, &honorific, &notes, &inv.TotalAmount,
		&inv.CreatedAt, &inv.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Invoice{}, mapError(err)
	}
	inv.ID = uuid.UUID(id.Bytes)
	inv.IssueDate = issueDate.Time
	if customerID.Valid {
		cid := uuid.UUID(customerID.Bytes)
		inv.CustomerID = &cid
	}
	inv.BillingAddress = address.String
	inv.BillingHonorific = honorific.String
	inv.Notes = notes.String
	inv.DeletedAt = timestampPtr(deletedAt)
	return inv, nil
}

// scanItem maps a row into a domain.InvoiceItem. Quantity is selected as text
// so it round-trips through decimal without float conversion.
func scanItem(s scanner) (domain.InvoiceItem, error) {
	var (
		it            domain.InvoiceItem
		id, invoiceID pgtype.UUID
		qty           string
	)
	if err := s.Scan(&id, &invoiceID, &it.ItemName, &qty, &it.UnitPrice, &it.Amount, &it.SortOrder); err != nil {
		return domain.InvoiceItem{}, mapError(err)
	}
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return domain.InvoiceItem{}, fmt.Errorf("parse quantity %q: %w", qty, err)
	}
	it.ID = uuid.UUID(id.Bytes)
	it.InvoiceID = uuid.UUID(invoiceID.Bytes)
	it.Quantity = q
	return it, nil
}
