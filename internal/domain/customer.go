// Package domain contains the core data types for the back-office API.
// It depends only on small value libraries (uuid, decimal) and is imported by
// every other internal package (repo, service, csvio, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomerType distinguishes corporate customers from individuals.
type CustomerType string

const (
	CustomerTypeCompany  CustomerType = "company"
	CustomerTypePersonal CustomerType = "personal"
)

// Valid reports whether t is one of the known customer types.
func (t CustomerType) Valid() bool {
	return t == CustomerTypeCompany || t == CustomerTypePersonal
}

// InvoiceMethod is how invoices are delivered to a customer.
type InvoiceMethod string

const (
	InvoiceMethodMail  InvoiceMethod = "mail"
	InvoiceMethodEmail InvoiceMethod = "email"
)

// Customer is a company or individual the business bills.
// Optional text fields use "" for "not set"; the repo stores them as NULL.
// DeletedAt is nil for active customers.
type Customer struct {
	ID           uuid.UUID
	CustomerType CustomerType
	CompanyName  string
	Name         string
	NameKana     string
	Class        string
	BirthDate    *time.Time

	PostalCode string
	Prefecture string
	City       string
	Address    string
	Phone      string
	Email      string

	ContractStartDate *time.Time
	InvoiceMethod     InvoiceMethod
	PaymentTerms      string
	Memo              string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Tags is populated by read paths that join customer_tags; writes ignore it.
	Tags []Tag
}

// IsDeleted reports whether the customer has been soft-deleted.
func (c Customer) IsDeleted() bool {
	return c.DeletedAt != nil
}

// CustomerPatch carries a partial update. Nil fields are left unchanged.
// A pointer to "" clears an optional text field.
type CustomerPatch struct {
	CustomerType      *CustomerType
	CompanyName       *string
	Name              *string
	NameKana          *string
	Class             *string
	BirthDate         **time.Time
	PostalCode        *string
	Prefecture        *string
	City              *string
	Address           *string
	Phone             *string
	Email             *string
	ContractStartDate **time.Time
	InvoiceMethod     *InvoiceMethod
	PaymentTerms      *string
	Memo              *string
}

// Apply returns c with every non-nil patch field copied over.
func (p CustomerPatch) Apply(c Customer) Customer {
	if p.CustomerType != nil {
		c.CustomerType = *p.CustomerType
	}
	setString(&c.CompanyName, p.CompanyName)
	setString(&c.Name, p.Name)
	setString(&c.NameKana, p.NameKana)
	setString(&c.Class, p.Class)
	if p.BirthDate != nil {
		c.BirthDate = *p.BirthDate
	}
	setString(&c.PostalCode, p.PostalCode)
	setString(&c.Prefecture, p.Prefecture)
	setString(&c.City, p.City)
	setString(&c.Address, p.Address)
	setString(&c.Phone, p.Phone)
	setString(&c.Email, p.Email)
	if p.ContractStartDate != nil {
		c.ContractStartDate = *p.ContractStartDate
	}
	if p.InvoiceMethod != nil {
		c.InvoiceMethod = *p.InvoiceMethod
	}
	setString(&c.PaymentTerms, p.PaymentTerms)
	setString(&c.Memo, p.Memo)
	return c
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// CustomerSortColumns is the allow-list of sortable columns.
// Keys are API names; values are the SQL column they sort by.
var CustomerSortColumns = map[string]string{
	"name":       "name",
	"name_kana":  "name_kana",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// CustomerSearchParams is the normalized input of a customer search.
type CustomerSearchParams struct {
	SearchText   string
	CustomerType CustomerType
	Class        string
	TagIDs       []uuid.UUID
	Pagination   PaginationParams
	SortBy       string
	SortDesc     bool

	// TagFilter is set when tag ids were supplied, even if none of them
	// parsed. A supplied filter with no usable id matches nothing.
	TagFilter bool
	// MatchNone is set when a supplied exact-match value can never match,
	// such as an unknown customer type.
	MatchNone bool
}

// NewCustomerSearchParams applies defaults: unknown sort columns fall back to
// created_at and anything but "asc" sorts descending. An unknown customer
// type is not dropped; it marks the search as matching nothing.
func NewCustomerSearchParams(text, customerType, class string, tagIDs []uuid.UUID, p PaginationParams, sortBy, sortOrder string) CustomerSearchParams {
	if _, ok := CustomerSortColumns[sortBy]; !ok {
		sortBy = "created_at"
	}
	ct := CustomerType(customerType)
	matchNone := false
	if ct != "" && !ct.Valid() {
		ct, matchNone = "", true
	}
	return CustomerSearchParams{
		SearchText:   text,
		CustomerType: ct,
		Class:        class,
		TagIDs:       tagIDs,
		Pagination:   p,
		SortBy:       sortBy,
		SortDesc:     sortOrder != "asc",
		TagFilter:    len(tagIDs) > 0,
		MatchNone:    matchNone,
	}
}

// CustomerFilter is the store-level predicate shared by the count and page queries.
// A nil IDs slice means "no id restriction"; a non-nil empty slice matches nothing.
type CustomerFilter struct {
	Terms        []string
	CustomerType CustomerType
	Class        string
	IDs          []uuid.UUID
}
