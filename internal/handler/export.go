package handler

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/backoffice/internal/csvio"
	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/service"
)

var exportMessages = errorMessages{notFound: "no customers to export"}

// ExportRequest is the body of POST /customers/export.
type ExportRequest struct {
	CustomerIDs    []openapi_types.UUID `json:"customer_ids"`
	DateFormat     string               `json:"dateFormat"`
	IncludeDeleted bool                 `json:"includeDeleted"`
	Format         string               `json:"format"`
}

// ImportResponse is the reply of POST /customers/import.
type ImportResponse struct {
	Success    bool                     `json:"success"`
	Committed  bool                     `json:"committed"`
	TotalRows  int                      `json:"total_rows"`
	Valid      int                      `json:"valid"`
	Imported   int                      `json:"imported"`
	Failed     int                      `json:"failed"`
	Headers    []string                 `json:"headers"`
	Data       []CustomerResponse       `json:"data"`
	Errors     []csvio.ImportError      `json:"errors"`
	Duplicates []csvio.DuplicateCluster `json:"duplicates"`
}

// ExportCustomers handles GET /customers/export.
// Query: dateFormat (iso|japanese), includeDeleted, format (csv|xlsx).
func (s *Server) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.export(w, r, domain.ExportOptions{
		DateFormat:     domain.DateFormat(q.Get("dateFormat")),
		IncludeDeleted: queryBool(r, "includeDeleted"),
		Format:         domain.ExportFormat(q.Get("format")),
	})
}

// ExportSelectedCustomers handles POST /customers/export for an id subset.
func (s *Server) ExportSelectedCustomers(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.CustomerIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, requestBody("customer_ids must not be empty"))
		return
	}
	s.export(w, r, domain.ExportOptions{
		IDs:            req.CustomerIDs,
		DateFormat:     domain.DateFormat(req.DateFormat),
		IncludeDeleted: req.IncludeDeleted,
		Format:         domain.ExportFormat(req.Format),
	})
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, opts domain.ExportOptions) {
	file, err := s.exporter.Export(r.Context(), opts)
	if err != nil {
		s.respondError(w, r, err, exportMessages)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

// ImportCustomers handles POST /customers/import. The upload is the
// multipart field "file"; ?commit=true persists the valid rows.
func (s *Server) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, requestBody("file is required"))
		return
	}
	defer file.Close()

	report, err := s.importer.Import(r.Context(), header.Filename, file, queryBool(r, "commit"))
	if err != nil {
		s.respondError(w, r, err, errorMessages{})
		return
	}
	writeJSON(w, http.StatusOK, importToResponse(report))
}

func importToResponse(rep service.ImportReport) ImportResponse {
	data := make([]CustomerResponse, len(rep.Data))
	for i, row := range rep.Data {
		c := row.Customer
		c.Tags = make([]domain.Tag, len(row.TagNames))
		for j, name := range row.TagNames {
			c.Tags[j] = domain.Tag{Name: name}
		}
		data[i] = customerToResponse(c)
	}
	errs := rep.Errors
	if errs == nil {
		errs = []csvio.ImportError{}
	}
	dups := rep.Duplicates
	if dups == nil {
		dups = []csvio.DuplicateCluster{}
	}
	return ImportResponse{
		Success:    len(rep.Errors) == 0,
		Committed:  rep.Committed,
		TotalRows:  rep.TotalRows,
		Valid:      len(rep.Data),
		Imported:   rep.Imported,
		Failed:     rep.Failed,
		Headers:    rep.Headers,
		Data:       data,
		Errors:     errs,
		Duplicates: dups,
	}
}
