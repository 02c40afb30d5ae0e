// Package validate wraps go-playground/validator with the field rules shared
// by request handling and file import: Japanese postal codes, phone numbers,
// a loose email pattern and decimal comparisons.
//
// Failures come back as domain.FieldErrors keyed by JSON field name, so the
// handler can render them directly and the importer can attach row numbers.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pkordes/backoffice/internal/domain"
)

var (
	postalCodeRe = regexp.MustCompile(`^\d{3}-?\d{4}$`)
	phoneRe      = regexp.MustCompile(`^[0-9-]+$`)
	looseEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validator checks tagged structs. It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered:
// postal_code_jp, phone_jp, loose_email and notblank. Invoice items are
// also held to QuantityScale fractional digits.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimal.Decimal compares as a float64 so gt/gte/lt/lte work on it.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "postal_code_jp", matchString(postalCodeRe))
	mustRegister(v, "phone_jp", matchString(phoneRe))
	mustRegister(v, "loose_email", matchString(looseEmailRe))
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// The custom type func above hides the decimal from field-level rules,
	// so the scale of a quantity is checked on the whole item.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		it := sl.Current().Interface().(ItemFields)
		if !it.Quantity.Equal(it.Quantity.Truncate(QuantityScale)) {
			sl.ReportError(it.Quantity, "quantity", "Quantity", "decimal_scale", strconv.Itoa(QuantityScale))
		}
	}, ItemFields{})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validate: register " + tag + ": " + err.Error())
	}
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Struct validates s and returns one FieldError per failing field, or nil.
func (v *Validator) Struct(s any) domain.FieldErrors {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.FieldErrors{{Message: err.Error()}}
	}

	out := make(domain.FieldErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, domain.FieldError{
			Field:   fieldPath(e.Namespace()),
			Message: message(e),
		})
	}
	return out
}

// fieldPath drops the root struct name from a namespace such as
// "InvoiceFields.items[0].quantity".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "required_if":
		return "is required when " + requiredIfCondition(e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "must have at most " + e.Param() + " entries"
		}
		return "must be at most " + e.Param()
	case "min":
		if e.Kind() == reflect.Slice {
			return "must have at least " + e.Param() + " entries"
		}
		return "must be at least " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "decimal_scale":
		return "must have at most " + e.Param() + " decimal places"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "postal_code_jp":
		return "must be a postal code like 123-4567"
	case "phone_jp":
		return "may contain only digits and hyphens"
	case "loose_email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// requiredIfCondition turns "CustomerType company" into "customer_type is company".
func requiredIfCondition(param string) string {
	field, value, _ := strings.Cut(param, " ")
	return toSnake(field) + " is " + value
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
