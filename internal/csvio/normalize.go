package csvio

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	slashDateRe    = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})$`)
	japaneseDateRe = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
)

// foldCell trims a raw cell and folds full-width digits, letters and
// punctuation to ASCII.
func foldCell(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// normalizeCustomerType maps the localized labels to the enum values.
// Unrecognized input is returned unchanged so validation reports it.
func normalizeCustomerType(s string) string {
	switch strings.ToLower(s) {
	case "個人", "personal":
		return "personal"
	case "法人", "company":
		return "company"
	}
	return s
}

// normalizeInvoiceMethod maps the localized labels to the enum values.
func normalizeInvoiceMethod(s string) string {
	switch strings.ToLower(s) {
	case "郵送", "mail":
		return "mail"
	case "メール", "email", "e-mail":
		return "email"
	}
	return s
}

// normalizeDate turns YYYY/M/D, YYYY-M-D and YYYY年M月D日 into YYYY-MM-DD.
// Anything else is returned unchanged so validation reports it.
func normalizeDate(s string) string {
	m := slashDateRe.FindStringSubmatch(s)
	if m == nil {
		m = japaneseDateRe.FindStringSubmatch(s)
	}
	if m == nil {
		return s
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
}

// normalizePhone strips hyphens for duplicate detection.
func normalizePhone(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// splitTags splits a "a, b" cell into distinct non-empty names.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '、' }) {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
