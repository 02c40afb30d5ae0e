package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/backoffice/internal/domain"
)

// utf8BOM makes spreadsheet applications detect the encoding of a CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Content types of the two export containers.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const exportSheet = "顧客一覧"

var customerTypeLabels = map[domain.CustomerType]string{
	domain.CustomerTypeCompany:  "法人",
	domain.CustomerTypePersonal: "個人",
}

var invoiceMethodLabels = map[domain.InvoiceMethod]string{
	domain.InvoiceMethodMail:  "郵送",
	domain.InvoiceMethodEmail: "メール",
}

// Records flattens customers into export rows, header first.
func Records(customers []domain.Customer, df domain.DateFormat) [][]string {
	out := make([][]string, 0, len(customers)+1)
	out = append(out, ExportHeaders)
	for _, c := range customers {
		out = append(out, record(c, df))
	}
	return out
}

func record(c domain.Customer, df domain.DateFormat) []string {
	tagNames := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		tagNames[i] = t.Name
	}
	return []string{
		c.ID.String(),
		label(customerTypeLabels, c.CustomerType),
		c.CompanyName,
		c.Name,
		c.NameKana,
		c.Class,
		formatDate(c.BirthDate, df),
		c.PostalCode,
		c.Prefecture,
		c.City,
		c.Address,
		c.Phone,
		c.Email,
		formatDate(c.ContractStartDate, df),
		label(invoiceMethodLabels, c.InvoiceMethod),
		c.PaymentTerms,
		strings.Join(tagNames, ", "),
		c.Memo,
		formatTimestamp(c.CreatedAt, df),
		formatTimestamp(c.UpdatedAt, df),
	}
}

// label returns the display label for v, or v itself when it has none.
func label[K ~string](labels map[K]string, v K) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return string(v)
}

func formatDate(t *time.Time, df domain.DateFormat) string {
	if t == nil {
		return ""
	}
	if df == domain.DateFormatJapanese {
		return t.Format("2006年1月2日")
	}
	return t.Format("2006-01-02")
}

func formatTimestamp(t time.Time, df domain.DateFormat) string {
	if t.IsZero() {
		return ""
	}
	if df == domain.DateFormatJapanese {
		return t.Format("2006年1月2日 15:04")
	}
	return t.Format(time.RFC3339)
}

// WriteCSV writes a BOM-prefixed CSV with CRLF line endings. Cells holding a
// quote, comma or line break are quoted, with embedded quotes doubled.
func WriteCSV(w io.Writer, customers []domain.Customer, df domain.DateFormat) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("csvio.WriteCSV: bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.WriteAll(Records(customers, df)); err != nil {
		return fmt.Errorf("csvio.WriteCSV: %w", err)
	}
	return nil
}

// WriteXLSX writes the same rows as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, customers []domain.Customer, df domain.DateFormat) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("csvio.WriteXLSX: rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("csvio.WriteXLSX: stream writer: %w", err)
	}
	for i, rec := range Records(customers, df) {
		cells := make([]any, len(rec))
		for j, v := range rec {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("csvio.WriteXLSX: cell name: %w", err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("csvio.WriteXLSX: row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("csvio.WriteXLSX: flush: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("csvio.WriteXLSX: write: %w", err)
	}
	return nil
}
