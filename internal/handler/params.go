package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/backoffice/internal/domain"
)

// pathUUID binds the {name} path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	return id, err
}

// bindID binds the {id} path segment, writing a 400 when it is malformed.
func bindID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return bindPathUUID(w, r, "id")
}

func bindPathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := pathUUID(r, name)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid "+name+": must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt binds an optional integer query parameter. Malformed values
// read as absent so callers fall back to defaults.
func queryInt(r *http.Request, name string) *int {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil
	}
	return v
}

// queryBool binds an optional boolean query parameter; malformed reads as false.
func queryBool(r *http.Request, name string) bool {
	var v *bool
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil || v == nil {
		return false
	}
	return *v
}

// pagination reads page and limit from the query string.
func pagination(r *http.Request) domain.PaginationParams {
	return domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
}

// queryUUIDs collects name both as a repeated parameter and as a comma
// list. Values that are not UUIDs are dropped; the bool reports whether the
// parameter appeared at all.
func queryUUIDs(r *http.Request, name string) ([]uuid.UUID, bool) {
	values, supplied := r.URL.Query()[name]
	var out []uuid.UUID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
				out = append(out, id)
			}
		}
	}
	return out, supplied
}

// decodeJSON reads the request body into dst. It writes the error reply
// itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, requestBody("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}
