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

// CustomerRepo defines the persistence operations for Customers.
// Every read except ListForExport and Restore ignores soft-deleted rows.
type CustomerRepo interface {
	// Create inserts a new customer and returns the persisted record.
	Create(ctx context.Context, c domain.Customer) (domain.Customer, error)

	// GetByID retrieves an active customer.
	// Returns domain.ErrNotFound if it does not exist or is soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error)

	// Exists reports whether an active customer with id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Update overwrites the mutable fields of an active customer and refreshes
	// updated_at. Returns domain.ErrNotFound if no active row matches.
	Update(ctx context.Context, c domain.Customer) (domain.Customer, error)

	// SoftDelete sets deleted_at on an active customer. Tag links are kept.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Restore clears deleted_at on a soft-deleted customer.
	Restore(ctx context.Context, id uuid.UUID) (domain.Customer, error)

	// Search returns one page of active customers matching f.
	Search(ctx context.Context, f domain.CustomerFilter, p domain.PaginationParams, sortBy string, desc bool) ([]domain.Customer, error)

	// Count returns the number of active customers matching f.
	// It applies exactly the predicate Search applies.
	Count(ctx context.Context, f domain.CustomerFilter) (int64, error)

	// ListForExport returns customers ordered by created_at. A nil ids slice
	// means all customers. Soft-deleted rows are included only when asked.
	ListForExport(ctx context.Context, ids []uuid.UUID, includeDeleted bool) ([]domain.Customer, error)
}

// pgCustomerRepo is the Postgres implementation of CustomerRepo.
type pgCustomerRepo struct {
	db db
}

// NewCustomerRepo constructs a CustomerRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCustomerRepo(db db) CustomerRepo {
	return &pgCustomerRepo{db: db}
}

const customerColumns = `id, customer_type, company_name, name, name_kana, class, birth_date,
		postal_code, prefecture, city, address, phone, email,
		contract_start_date, invoice_method, payment_terms, memo,
		created_at, updated_at, deleted_at`

func customerArgs(c domain.Customer) pgx.NamedArgs {
	return pgx.NamedArgs{
		"customer_type":       string(c.CustomerType),
		"company_name":        nullText(c.CompanyName),
		"name":                c.Name,
		"name_kana":           nullText(c.NameKana),
		"class":               nullText(c.Class),
		"birth_date":          nullDate(c.BirthDate),
		"postal_code":         nullText(c.PostalCode),
		"prefecture":          nullText(c.Prefecture),
		"city":                nullText(c.City),
		"address":             nullText(c.Address),
		"phone":               nullText(c.Phone),
		"email":               nullText(c.Email),
		"contract_start_date": nullDate(c.ContractStartDate),
		"invoice_method":      nullText(string(c.InvoiceMethod)),
		"payment_terms":       nullText(c.PaymentTerms),
		"memo":                nullText(c.Memo),
	}
}

// Create inserts a new customer row and returns the full persisted record.
func (r *pgCustomerRepo) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	q := `
		INSERT INTO customers (customer_type, company_name, name, name_kana, class, birth_date,
			postal_code, prefecture, city, address, phone, email,
			contract_start_date, invoice_method, payment_terms, memo)
		VALUES (@customer_type, @company_name, @name, @name_kana, @class, @birth_date,
			@postal_code, @prefecture, @city, @address, @phone, @email,
			@contract_start_date, @invoice_method, @payment_terms, @memo)
		RETURNING ` + customerColumns

	result, err := scanCustomer(r.db.QueryRow(ctx, q, customerArgs(c)))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an active customer by primary key.
func (r *pgCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = @id AND deleted_at IS NULL`

	result, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.GetByID: %w", err)
	}
	return result, nil
}

// Exists reports whether an active customer with the given id exists.
func (r *pgCustomerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM customers WHERE id = @id AND deleted_at IS NULL)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&ok); err != nil {
		return false, fmt.Errorf("repo.CustomerRepo.Exists: %w", err)
	}
	return ok, nil
}

// Update overwrites all mutable fields and refreshes updated_at.
func (r *pgCustomerRepo) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	q := `
		UPDATE customers
		SET customer_type       = @customer_type,
		    company_name        = @company_name,
		    name                = @name,
		    name_kana           = @name_kana,
		    class               = @class,
		    birth_date          = @birth_date,
		    postal_code         = @postal_code,
		    prefecture          = @prefecture,
		    city                = @city,
		    address             = @address,
		    phone               = @phone,
		    email               = @email,
		    contract_start_date = @contract_start_date,
		    invoice_method      = @invoice_method,
		    payment_terms       = @payment_terms,
		    memo                = @memo,
		    updated_at          = now()
		WHERE id = @id AND deleted_at IS NULL
		RETURNING ` + customerColumns

	args := customerArgs(c)
	args["id"] = c.ID

	result, err := scanCustomer(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Update: %w", err)
	}
	return result, nil
}

// SoftDelete marks an active customer as deleted.
func (r *pgCustomerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE customers
		SET deleted_at = now(), updated_at = now()
		WHERE id = @id AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CustomerRepo.SoftDelete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CustomerRepo.SoftDelete: %w", domain.ErrNotFound)
	}
	return nil
}

// Restore clears deleted_at and returns the reactivated customer.
func (r *pgCustomerRepo) Restore(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	q := `
		UPDATE customers
		SET deleted_at = NULL, updated_at = now()
		WHERE id = @id AND deleted_at IS NOT NULL
		RETURNING ` + customerColumns

	result, err := scanCustomer(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("repo.CustomerRepo.Restore: %w", err)
	}
	return result, nil
}

// Search returns one page of customers matching f, ordered by an allow-listed column.
func (r *pgCustomerRepo) Search(ctx context.Context, f domain.CustomerFilter, p domain.PaginationParams, sortBy string, desc bool) ([]domain.Customer, error) {
	where, args := customerWhere(f)

	col, ok := domain.CustomerSortColumns[sortBy]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	q := `SELECT ` + customerColumns + ` FROM customers ` + where +
		` ORDER BY ` + col + ` ` + dir + ` NULLS LAST, id ` + dir +
		` LIMIT @limit OFFSET @offset`
	args["limit"] = p.Limit
	args["offset"] = p.Offset()

	customers, err := r.queryCustomers(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.Search: %w", err)
	}
	return customers, nil
}

// Count returns the number of rows Search would page through.
func (r *pgCustomerRepo) Count(ctx context.Context, f domain.CustomerFilter) (int64, error) {
	where, args := customerWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM customers `+where, args).Scan(&total); err != nil {
		return 0, fmt.Errorf("repo.CustomerRepo.Count: %w", err)
	}
	return total, nil
}

// ListForExport returns the customers to export, oldest first.
func (r *pgCustomerRepo) ListForExport(ctx context.Context, ids []uuid.UUID, includeDeleted bool) ([]domain.Customer, error) {
	var conds []string
	args := pgx.NamedArgs{}
	if !includeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if ids != nil {
		conds = append(conds, "id = ANY(@ids)")
		args["ids"] = ids
	}

	q := `SELECT ` + customerColumns + ` FROM customers`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY created_at, id`

	customers, err := r.queryCustomers(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.ListForExport: %w", err)
	}
	return customers, nil
}

func (r *pgCustomerRepo) queryCustomers(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return customers, nil
}

// customerWhere builds the WHERE clause shared by Search and Count.
// Each search term must match at least one of name, company_name, email or phone.
func customerWhere(f domain.CustomerFilter) (string, pgx.NamedArgs) {
	conds := []string{"deleted_at IS NULL"}
	args := pgx.NamedArgs{}

	if f.IDs != nil {
		conds = append(conds, "id = ANY(@ids)")
		args["ids"] = f.IDs
	}
	for i, term := range f.Terms {
		key := "term" + strconv.Itoa(i)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE @%[1]s OR company_name ILIKE @%[1]s OR email ILIKE @%[1]s OR phone ILIKE @%[1]s)", key))
		args[key] = containsPattern(term)
	}
	if f.CustomerType != "" {
		conds = append(conds, "customer_type = @customer_type")
		args["customer_type"] = string(f.CustomerType)
	}
	if f.Class != "" {
		conds = append(conds, "class = @class")
		args["class"] = f.Class
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// scanCustomer maps a single database row into a domain.Customer.
func scanCustomer(s scanner) (domain.Customer, error) {
	var (
		c                                               domain.Customer
		id                                              pgtype.UUID
		customerType                                    string
		companyName, nameKana, class                    pgtype.Text
		postalCode, prefecture, city, address           pgtype.Text
		phone, email, invoiceMethod, paymentTerms, memo pgtype.Text
		birthDate, contractStart                        pgtype.Date
		deletedAt                                       pgtype.Timestamptz
	)

	err := s.Scan(&id, &customerType, &companyName, &c.Name, &nameKana, &class, &birthDate,
		&postalCode, &prefecture, &city, &address, &phone, &email,
		&contractStart, &invoiceMethod, &paymentTerms, &memo,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt)
	if err != nil {
		return domain.Customer{}, mapError(err)
	}

	c.ID = uuid.UUID(id.Bytes)
	c.CustomerType = domain.CustomerType(customerType)
	c.CompanyName = companyName.String
	c.NameKana = nameKana.String
	c.Class = class.String
	c.BirthDate = datePtr(birthDate)
	c.PostalCode = postalCode.String
	c.Prefecture = prefecture.String
	c.City = city.String
	c.Address = address.String
	c.Phone = phone.String
	c.Email = email.String
	c.ContractStartDate = datePtr(contractStart)
	c.InvoiceMethod = domain.InvoiceMethod(invoiceMethod.String)
	c.PaymentTerms = paymentTerms.String
	c.Memo = memo.String
	c.DeletedAt = timestampPtr(deletedAt)
	return c, nil
}
