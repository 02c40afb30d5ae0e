package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateFormat selects how dates are rendered in exported files.
type DateFormat string

const (
	// DateFormatISO renders 2006-01-02 and RFC3339 timestamps.
	DateFormatISO DateFormat = "iso"
	// DateFormatJapanese renders 2006年1月2日 style dates.
	DateFormatJapanese DateFormat = "japanese"
)

// ExportFormat selects the output container.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportOptions controls a customer export.
// A nil IDs slice exports every customer; otherwise only the listed ones.
type ExportOptions struct {
	IDs            []uuid.UUID
	DateFormat     DateFormat
	IncludeDeleted bool
	Format         ExportFormat
}

// ExportFile is a rendered export ready to be sent to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportFilename builds "{prefix}_{YYYYMMDDTHHMMSSZ}.{ext}" in UTC.
func ExportFilename(prefix string, at time.Time, ext string) string {
	return prefix + "_" + at.UTC().Format("20060102T150405Z") + "." + ext
}
