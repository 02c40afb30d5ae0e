package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry that invoice lines can be picked from.
// Code is optional but unique among active products when set.
type Product struct {
	ID          uuid.UUID
	Code        string
	Name        string
	UnitPrice   int64
	Unit        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// CompanySettings is the issuing company's own details printed on invoices.
// There is exactly one settings row.
type CompanySettings struct {
	CompanyName        string
	PostalCode         string
	Address            string
	Phone              string
	Email              string
	RegistrationNumber string
	BankInfo           string
	UpdatedAt          time.Time
}
