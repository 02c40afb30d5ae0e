package validate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/validate"
)

func fieldsOf(errs domain.FieldErrors) map[string]string {
	m := make(map[string]string, len(errs))
	for _, e := range errs {
		m[e.Field] = e.Message
	}
	return m
}

func TestCustomerFields_Valid(t *testing.T) {
	v := validate.New()

	errs := v.Struct(validate.CustomerFields{
		CustomerType: "personal",
		Name:         "山田 太郎",
		PostalCode:   "1500001",
		Phone:        "090-1234-5678",
		Email:        "taro@example.jp",
		BirthDate:    "1985-04-12",
	})

	assert.Empty(t, errs)
}

func TestCustomerFields_OneErrorPerFailingField(t *testing.T) {
	v := validate.New()

	errs := v.Struct(validate.CustomerFields{
		CustomerType:  "alien",
		Name:          "   ",
		PostalCode:    "12-34567",
		Phone:         "090 1234 5678",
		Email:         "not-an-email",
		BirthDate:     "2024-02-30",
		InvoiceMethod: "fax",
	})

	got := fieldsOf(errs)
	assert.Len(t, errs, 7)
	assert.Equal(t, "must be one of: company personal", got["customer_type"])
	assert.Equal(t, "is required", got["name"])
	assert.Contains(t, got, "postal_code")
	assert.Equal(t, "may contain only digits and hyphens", got["phone"])
	assert.Contains(t, got, "email")
	assert.Contains(t, got, "birth_date")
	assert.Contains(t, got, "invoice_method")
}

func TestCustomerFields_CompanyNameRequiredForCompanies(t *testing.T) {
	v := validate.New()

	errs := v.Struct(validate.CustomerFields{CustomerType: "company", Name: "担当 花子"})
	require.Len(t, errs, 1)
	assert.Equal(t, "company_name", errs[0].Field)
	assert.Equal(t, "is required when customer_type is company", errs[0].Message)

	errs = v.Struct(validate.CustomerFields{CustomerType: "personal", Name: "個人 太郎"})
	assert.Empty(t, errs, "company_name is optional for individuals")
}

func TestCustomerFields_RoundTripsDomain(t *testing.T) {
	birth := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	c := domain.Customer{
		CustomerType:  domain.CustomerTypeCompany,
		CompanyName:   "株式会社サンプル",
		Name:          "鈴木 一郎",
		BirthDate:     &birth,
		InvoiceMethod: domain.InvoiceMethodEmail,
	}

	got := validate.CustomerFieldsFrom(c).Customer()

	assert.Equal(t, c.CompanyName, got.CompanyName)
	require.NotNil(t, got.BirthDate)
	assert.True(t, birth.Equal(*got.BirthDate))
	assert.Nil(t, got.ContractStartDate)
	assert.Equal(t, domain.InvoiceMethodEmail, got.InvoiceMethod)
}

func TestTagFields_MaxCountsRunes(t *testing.T) {
	v := validate.New()

	fifty := ""
	for range 50 {
		fifty += "あ"
	}
	assert.Empty(t, v.Struct(validate.TagFields{Name: fifty}))
	assert.Len(t, v.Struct(validate.TagFields{Name: fifty + "あ"}), 1)
	assert.Len(t, v.Struct(validate.TagFields{Name: ""}), 1)
}

func TestInvoiceFields_ItemPaths(t *testing.T) {
	v := validate.New()

	errs := v.Struct(validate.InvoiceFields{
		BillingName: "Acme",
		IssueDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Items: []validate.ItemFields{
			{ItemName: "ok", Quantity: decimal.NewFromInt(1), UnitPrice: 100},
			{ItemName: "", Quantity: decimal.Zero, UnitPrice: -1},
		},
	})

	got := fieldsOf(errs)
	assert.Len(t, errs, 3)
	assert.Contains(t, got, "items[1].item_name")
	assert.Equal(t, "must be greater than 0", got["items[1].quantity"])
	assert.Equal(t, "must be greater than or equal to 0", got["items[1].unit_price"])
}

func TestItemFields_QuantityScale(t *testing.T) {
	v := validate.New()

	for _, tc := range []struct {
		qty  string
		want string
	}{
		{"1.005", ""},
		{"2.5000", ""},
		{"1.0005", "must have at most 3 decimal places"},
		{"0.0004", "must have at most 3 decimal places"},
	} {
		t.Run(tc.qty, func(t *testing.T) {
			got := fieldsOf(v.Struct(validate.ItemsFields{Items: []validate.ItemFields{
				{ItemName: "x", Quantity: decimal.RequireFromString(tc.qty), UnitPrice: 10000},
			}}))

			assert.Equal(t, tc.want, got["items[0].quantity"])
		})
	}
}

func TestInvoiceFields_RequiresItemsAndDate(t *testing.T) {
	v := validate.New()

	got := fieldsOf(v.Struct(validate.InvoiceFields{BillingName: "Acme"}))

	assert.Contains(t, got, "issue_date")
	assert.Equal(t, "must have at least 1 entries", got["items"])
}

func TestCompanySettingsFields(t *testing.T) {
	v := validate.New()

	assert.Empty(t, v.Struct(validate.CompanySettingsFields{CompanyName: "Acme"}))

	got := fieldsOf(v.Struct(validate.CompanySettingsFields{Email: "bad"}))
	assert.Contains(t, got, "company_name")
	assert.Contains(t, got, "email")
}
