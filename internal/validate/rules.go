package validate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/backoffice/internal/domain"
)

// dateLayout is the canonical date form accepted by every date rule.
const dateLayout = "2006-01-02"

// CustomerFields is the validation schema for a customer. Dates are strings
// so that imported rows with malformed dates fail here like any other field.
type CustomerFields struct {
	CustomerType      string   `json:"customer_type" validate:"required,oneof=company personal"`
	CompanyName       string   `json:"company_name" validate:"required_if=CustomerType company"`
	Name              string   `json:"name" validate:"notblank"`
	NameKana          string   `json:"name_kana"`
	Class             string   `json:"class"`
	BirthDate         string   `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	PostalCode        string   `json:"postal_code" validate:"omitempty,postal_code_jp"`
	Prefecture        string   `json:"prefecture"`
	City              string   `json:"city"`
	Address           string   `json:"address"`
	Phone             string   `json:"phone" validate:"omitempty,phone_jp"`
	Email             string   `json:"email" validate:"omitempty,loose_email"`
	ContractStartDate string   `json:"contract_start_date" validate:"omitempty,datetime=2006-01-02"`
	InvoiceMethod     string   `json:"invoice_method" validate:"omitempty,oneof=mail email"`
	PaymentTerms      string   `json:"payment_terms"`
	Memo              string   `json:"memo"`
	Tags              []string `json:"tags" validate:"dive,notblank,max=50"`
}

// CustomerFieldsFrom renders c into its validation schema.
func CustomerFieldsFrom(c domain.Customer) CustomerFields {
	return CustomerFields{
		CustomerType:      string(c.CustomerType),
		CompanyName:       c.CompanyName,
		Name:              c.Name,
		NameKana:          c.NameKana,
		Class:             c.Class,
		BirthDate:         formatDate(c.BirthDate),
		PostalCode:        c.PostalCode,
		Prefecture:        c.Prefecture,
		City:              c.City,
		Address:           c.Address,
		Phone:             c.Phone,
		Email:             c.Email,
		ContractStartDate: formatDate(c.ContractStartDate),
		InvoiceMethod:     string(c.InvoiceMethod),
		PaymentTerms:      c.PaymentTerms,
		Memo:              c.Memo,
	}
}

// Customer converts validated fields into a domain.Customer.
// Call it only after Struct reported no errors; unparsable dates become nil.
func (f CustomerFields) Customer() domain.Customer {
	return domain.Customer{
		CustomerType:      domain.CustomerType(f.CustomerType),
		CompanyName:       f.CompanyName,
		Name:              f.Name,
		NameKana:          f.NameKana,
		Class:             f.Class,
		BirthDate:         parseDate(f.BirthDate),
		PostalCode:        f.PostalCode,
		Prefecture:        f.Prefecture,
		City:              f.City,
		Address:           f.Address,
		Phone:             f.Phone,
		Email:             f.Email,
		ContractStartDate: parseDate(f.ContractStartDate),
		InvoiceMethod:     domain.InvoiceMethod(f.InvoiceMethod),
		PaymentTerms:      f.PaymentTerms,
		Memo:              f.Memo,
	}
}

// TagFields validates a tag name after trimming.
type TagFields struct {
	Name string `json:"name" validate:"notblank,max=50"`
}

// InvoiceFields is the validation schema for an invoice write.
type InvoiceFields struct {
	BillingName string       `json:"billing_name" validate:"notblank"`
	IssueDate   time.Time    `json:"issue_date" validate:"required"`
	Items       []ItemFields `json:"items" validate:"min=1,dive"`
}

// QuantityScale is the number of fractional digits an invoice quantity may
// carry; invoice_items.quantity is NUMERIC(12, 3).
const QuantityScale = 3

// ItemFields is the validation schema for one invoice line.
type ItemFields struct {
	ItemName  string          `json:"item_name" validate:"notblank"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice int64           `json:"unit_price" validate:"gte=0"`
}

// InvoiceFieldsFrom renders inv into its validation schema.
func InvoiceFieldsFrom(inv domain.Invoice) InvoiceFields {
	items := make([]ItemFields, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = ItemFields{ItemName: it.ItemName, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return InvoiceFields{BillingName: inv.BillingName, IssueDate: inv.IssueDate, Items: items}
}

// ItemsFields validates a bare item list, as used by the totals preview.
type ItemsFields struct {
	Items []ItemFields `json:"items" validate:"min=1,dive"`
}

// ItemsFieldsFrom renders items into their validation schema.
func ItemsFieldsFrom(items []domain.InvoiceItem) ItemsFields {
	return ItemsFields{Items: InvoiceFieldsFrom(domain.Invoice{Items: items}).Items}
}

// ProductFields is the validation schema for a product write.
type ProductFields struct {
	Code      string `json:"code" validate:"max=50"`
	Name      string `json:"name" validate:"notblank"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	Unit      string `json:"unit" validate:"max=20"`
}

// ProductFieldsFrom renders p into its validation schema.
func ProductFieldsFrom(p domain.Product) ProductFields {
	return ProductFields{Code: p.Code, Name: p.Name, UnitPrice: p.UnitPrice, Unit: p.Unit}
}

// CompanySettingsFields is the validation schema for the company settings.
type CompanySettingsFields struct {
	CompanyName string `json:"company_name" validate:"notblank"`
	PostalCode  string `json:"postal_code" validate:"omitempty,postal_code_jp"`
	Phone       string `json:"phone" validate:"omitempty,phone_jp"`
	Email       string `json:"email" validate:"omitempty,loose_email"`
}

// CompanySettingsFieldsFrom renders s into its validation schema.
func CompanySettingsFieldsFrom(s domain.CompanySettings) CompanySettingsFields {
	return CompanySettingsFields{
		CompanyName: s.CompanyName,
		PostalCode:  s.PostalCode,
		Phone:       s.Phone,
		Email:       s.Email,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
