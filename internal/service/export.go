package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkordes/backoffice/internal/csvio"
	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
)

// ExportService renders customers into downloadable CSV or XLSX files.
type ExportService struct {
	customers repo.CustomerRepo
	tags      repo.TagRepo
	logger    *slog.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(customers repo.CustomerRepo, tags repo.TagRepo, logger *slog.Logger) *ExportService {
	return &ExportService{customers: customers, tags: tags, logger: logger, now: time.Now}
}

// Export fetches the requested customers with their tags and renders them.
// It returns domain.ErrNotFound when no customer is left to export.
func (s *ExportService) Export(ctx context.Context, opts domain.ExportOptions) (domain.ExportFile, error) {
	customers, err := s.customers.ListForExport(ctx, opts.IDs, opts.IncludeDeleted)
	if err != nil {
		return domain.ExportFile{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if len(customers) == 0 {
		return domain.ExportFile{}, fmt.Errorf("service.ExportService.Export: no customers to export: %w", domain.ErrNotFound)
	}
	attachTags(ctx, s.tags, s.logger, customers)

	df := opts.DateFormat
	if df != domain.DateFormatJapanese {
		df = domain.DateFormatISO
	}

	var (
		buf  bytes.Buffer
		file = domain.ExportFile{Rows: len(customers)}
	)
	switch opts.Format {
	case domain.ExportFormatXLSX:
		err = csvio.WriteXLSX(&buf, customers, df)
		file.ContentType = csvio.ContentTypeXLSX
		file.Filename = domain.ExportFilename("customers", s.now(), "xlsx")
	default:
		err = csvio.WriteCSV(&buf, customers, df)
		file.ContentType = csvio.ContentTypeCSV
		file.Filename = domain.ExportFilename("customers", s.now(), "csv")
	}
	if err != nil {
		return domain.ExportFile{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	file.Body = buf.Bytes()
	return file, nil
}
