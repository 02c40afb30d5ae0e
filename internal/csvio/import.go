package csvio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/validate"
)

// Parse-level failures. All wrap domain.ErrValidation so the handler
// answers 400 without knowing about this package.
var (
	ErrInvalidEncoding = fmt.Errorf("%w: file is not valid UTF-8", domain.ErrValidation)
	ErrMissingHeader   = fmt.Errorf("%w: file has no header row", domain.ErrValidation)
	ErrMalformedFile   = fmt.Errorf("%w: malformed file", domain.ErrValidation)
)

// MissingHeadersError reports required columns absent from the header row.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return "missing required headers: " + strings.Join(e.Missing, ", ")
}

func (e *MissingHeadersError) Unwrap() error { return domain.ErrValidation }

// ImportError is one failing field of one row. Row is the 1-based record
// number in the file, with the header as record 1.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DuplicateCluster groups rows sharing a normalized email or phone.
// Indices holds their record numbers, numbered like ImportError.Row.
type DuplicateCluster struct {
	Indices []int  `json:"indices"`
	Field   string `json:"field"`
	Value   string `json:"value"`
}

// ImportedCustomer is a row that passed validation.
type ImportedCustomer struct {
	Row      int
	Customer domain.Customer
	TagNames []string
}

// ImportResult is the outcome of parsing one file.
type ImportResult struct {
	Data       []ImportedCustomer
	Errors     []ImportError
	Headers    []string
	Duplicates []DuplicateCluster
	TotalRows  int
}

// Importer parses customer files. It is safe for concurrent use.
type Importer struct {
	validator *validate.Validator
}

// NewImporter returns an Importer that validates rows with v.
func NewImporter(v *validate.Validator) *Importer {
	return &Importer{validator: v}
}

// ParseCSV reads a UTF-8 CSV (optionally BOM-prefixed) and validates every row.
func (im *Importer) ParseCSV(r io.Reader) (ImportResult, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return ImportResult{}, fmt.Errorf("csvio.ParseCSV: read: %w", err)
	}
	if !utf8.Valid(data) {
		return ImportResult{}, ErrInvalidEncoding
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return im.parseRecords(records)
}

// ParseXLSX reads the first sheet of a workbook through the same pipeline.
func (im *Importer) ParseXLSX(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{}, ErrMissingHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return im.parseRecords(rows)
}

func (im *Importer) parseRecords(records [][]string) (ImportResult, error) {
	// Leading blank lines before the header are tolerated.
	start := 0
	for start < len(records) && blank(records[start]) {
		start++
	}
	if start == len(records) {
		return ImportResult{}, ErrMissingHeader
	}

	header := records[start]
	columns := make([]string, len(header))
	present := make(map[string]bool)
	result := ImportResult{Headers: make([]string, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		result.Headers[i] = h
		columns[i] = fieldForHeader(h)
		present[columns[i]] = true
	}

	var missing []string
	for _, f := range requiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return ImportResult{}, &MissingHeadersError{Missing: missing}
	}

	var parsed []parsedRow
	for i := start + 1; i < len(records); i++ {
		if blank(records[i]) {
			continue
		}
		// Record numbers count from the header, which is record 1.
		parsed = append(parsed, mapRow(i-start+1, columns, records[i]))
	}
	result.TotalRows = len(parsed)

	for _, p := range parsed {
		if errs := im.validator.Struct(p.fields); len(errs) > 0 {
			for _, fe := range errs {
				result.Errors = append(result.Errors, ImportError{Row: p.row, Field: fe.Field, Message: fe.Message})
			}
			continue
		}
		result.Data = append(result.Data, ImportedCustomer{
			Row:      p.row,
			Customer: p.fields.Customer(),
			TagNames: p.fields.Tags,
		})
	}

	result.Duplicates = findDuplicates(parsed)
	return result, nil
}

type parsedRow struct {
	row    int
	fields validate.CustomerFields
}

// mapRow copies cells into their fields and normalizes them.
func mapRow(row int, columns []string, record []string) parsedRow {
	var f validate.CustomerFields
	for i, key := range columns {
		if key == "" || i >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[i])
		switch key {
		case fieldCustomerType:
			f.CustomerType = normalizeCustomerType(foldCell(raw))
		case fieldCompanyName:
			f.CompanyName = raw
		case fieldName:
			f.Name = raw
		case fieldNameKana:
			f.NameKana = raw
		case fieldClass:
			f.Class = raw
		case fieldBirthDate:
			f.BirthDate = normalizeDate(foldCell(raw))
		case fieldPostalCode:
			f.PostalCode = foldCell(raw)
		case fieldPrefecture:
			f.Prefecture = raw
		case fieldCity:
			f.City = raw
		case fieldAddress:
			f.Address = raw
		case fieldPhone:
			f.Phone = foldCell(raw)
		case fieldEmail:
			f.Email = foldCell(raw)
		case fieldContractStartDate:
			f.ContractStartDate = normalizeDate(foldCell(raw))
		case fieldInvoiceMethod:
			f.InvoiceMethod = normalizeInvoiceMethod(foldCell(raw))
		case fieldPaymentTerms:
			f.PaymentTerms = raw
		case fieldMemo:
			f.Memo = raw
		case fieldTags:
			f.Tags = splitTags(raw)
		}
	}
	return parsedRow{row: row, fields: f}
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// findDuplicates clusters rows by lower-cased email and by hyphen-less phone.
// It runs over every parsed row, valid or not, and never rejects any.
func findDuplicates(rows []parsedRow) []DuplicateCluster {
	var clusters []DuplicateCluster
	clusters = append(clusters, cluster(rows, fieldEmail, func(f validate.CustomerFields) string {
		return strings.ToLower(f.Email)
	})...)
	clusters = append(clusters, cluster(rows, fieldPhone, func(f validate.CustomerFields) string {
		return normalizePhone(f.Phone)
	})...)
	return clusters
}

func cluster(rows []parsedRow, field string, key func(validate.CustomerFields) string) []DuplicateCluster {
	groups := make(map[string][]int)
	var order []string
	for _, r := range rows {
		k := key(r.fields)
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r.row)
	}

	var out []DuplicateCluster
	for _, k := range order {
		if len(groups[k]) > 1 {
			out = append(out, DuplicateCluster{Indices: groups[k], Field: field, Value: k})
		}
	}
	return out
}
