package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/backoffice/internal/csvio"
	"github.com/pkordes/backoffice/internal/repo"
)

// ImportReport is the parse report plus, for committed imports, how many
// rows were written.
type ImportReport struct {
	csvio.ImportResult
	Committed bool
	Imported  int
	Failed    int
}

// ImportService parses customer files and optionally persists the valid rows.
type ImportService struct {
	importer  *csvio.Importer
	customers repo.CustomerRepo
	tags      repo.TagRepo
	logger    *slog.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(importer *csvio.Importer, customers repo.CustomerRepo, tags repo.TagRepo, logger *slog.Logger) *ImportService {
	return &ImportService{importer: importer, customers: customers, tags: tags, logger: logger}
}

// Import parses r as CSV, or as XLSX when filename ends in .xlsx.
// Without commit it is a dry run. With commit each valid row becomes a
// customer and the tags named in its tag column are attached, creating any
// that do not exist yet. A row that fails to persist is reported as an
// ImportError and does not stop the rest. The customer insert and the tag
// writes are separate statements, so a row whose tags fail keeps its
// customer and the error names the created id.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader, commit bool) (ImportReport, error) {
	var (
		res csvio.ImportResult
		err error
	)
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		res, err = s.importer.ParseXLSX(r)
	} else {
		res, err = s.importer.ParseCSV(r)
	}
	if err != nil {
		return ImportReport{}, fmt.Errorf("service.ImportService.Import: %w", err)
	}

	report := ImportReport{ImportResult: res, Failed: len(rowsWithErrors(res.Errors))}
	if !commit {
		return report, nil
	}
	report.Committed = true

	for _, row := range res.Data {
		if err := s.persist(ctx, row); err != nil {
			s.logger.WarnContext(ctx, "import row failed", "row", row.Row, "error", err)
			report.Errors = append(report.Errors, csvio.ImportError{Row: row.Row, Message: err.Error()})
			report.Failed++
			continue
		}
		report.Imported++
	}
	return report, nil
}

func (s *ImportService) persist(ctx context.Context, row csvio.ImportedCustomer) error {
	c, err := s.customers.Create(ctx, row.Customer)
	if err != nil {
		return err
	}
	if len(row.TagNames) == 0 {
		return nil
	}
	if err := s.attachTags(ctx, c.ID, row.TagNames); err != nil {
		return fmt.Errorf("customer created (id %s) but tags not attached: %w", c.ID, err)
	}
	return nil
}

func (s *ImportService) attachTags(ctx context.Context, customerID uuid.UUID, names []string) error {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		tag, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
		ids = append(ids, tag.ID)
	}
	if _, err := s.tags.AddToCustomer(ctx, customerID, ids); err != nil {
		return err
	}
	return nil
}

func rowsWithErrors(errs []csvio.ImportError) map[int]bool {
	rows := make(map[int]bool, len(errs))
	for _, e := range errs {
		rows[e.Row] = true
	}
	return rows
}
