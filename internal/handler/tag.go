package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/backoffice/internal/domain"
)

var tagMessages = errorMessages{notFound: "tag not found", conflict: "tag name already exists"}

// TagResponse is the JSON shape of a tag.
type TagResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	CreatedAt time.Time          `json:"created_at"`
}

// TagWithUsageResponse adds the number of customers carrying the tag.
type TagWithUsageResponse struct {
	TagResponse
	CustomerCount int64 `json:"customer_count"`
}

// TagRequest is the body of POST /tags and PUT /tags/{id}.
type TagRequest struct {
	Name string `json:"name"`
}

// TagIDsRequest is the body of PUT and POST /customers/{id}/tags.
type TagIDsRequest struct {
	TagIDs []openapi_types.UUID `json:"tag_ids"`
}

// CustomerTagsResponse wraps a customer's tag list.
type CustomerTagsResponse struct {
	Success bool          `json:"success"`
	Data    []TagResponse `json:"data"`
}

// ListTags handles GET /tags.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	out := make([]TagWithUsageResponse, len(tags))
	for i, t := range tags {
		out[i] = TagWithUsageResponse{TagResponse: tagToResponse(t.Tag), CustomerCount: t.CustomerCount}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// CreateTag handles POST /tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := s.tags.Create(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err, tagMessages)
		return
	}
	writeJSON(w, http.StatusCreated, tagToResponse(tag))
}

// GetTag handles GET /tags/{id}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	tag, err := s.tags.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, tagMessages)
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(tag))
}

// RenameTag handles PUT /tags/{id}.
func (s *Server) RenameTag(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	var req TagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := s.tags.Rename(r.Context(), id, req.Name)
	if err != nil {
		s.respondError(w, r, err, tagMessages)
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(tag))
}

// DeleteTag handles DELETE /tags/{id}. The reply says how many customers
// lost the tag.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	n, err := s.tags.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, tagMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        fmt.Sprintf("tag deleted; removed from %d customers", n),
		"customer_count": n,
	})
}

// ListCustomerTags handles GET /customers/{id}/tags.
func (s *Server) ListCustomerTags(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	tags, err := s.tags.ListForCustomer(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusOK, customerTagsResponse(tags))
}

// ReplaceCustomerTags handles PUT /customers/{id}/tags.
func (s *Server) ReplaceCustomerTags(w http.ResponseWriter, r *http.Request) {
	id, req, ok := s.bindTagIDs(w, r)
	if !ok {
		return
	}
	tags, err := s.tags.Replace(r.Context(), id, req)
	if err != nil {
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusOK, customerTagsResponse(tags))
}

// AddCustomerTags handles POST /customers/{id}/tags.
func (s *Server) AddCustomerTags(w http.ResponseWriter, r *http.Request) {
	id, req, ok := s.bindTagIDs(w, r)
	if !ok {
		return
	}
	tags, err := s.tags.Add(r.Context(), id, req)
	if err != nil {
		s.respondError(w, r, err, errorMessages{
			notFound: "customer not found",
			conflict: "all tags are already attached to the customer",
		})
		return
	}
	writeJSON(w, http.StatusOK, customerTagsResponse(tags))
}

// RemoveCustomerTag handles DELETE /customers/{id}/tags/{tagId}.
func (s *Server) RemoveCustomerTag(w http.ResponseWriter, r *http.Request) {
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	tagID, ok := bindPathUUID(w, r, "tagId")
	if !ok {
		return
	}
	err := s.tags.Remove(r.Context(), id, tagID)
	if err != nil {
		if errors.Is(err, domain.ErrTagNotAttached) {
			writeJSON(w, http.StatusNotFound, notFoundBody("tag not attached to customer"))
			return
		}
		s.respondError(w, r, err, customerMessages)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) bindTagIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, []uuid.UUID, bool) {
	id, ok := bindID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	var req TagIDsRequest
	if !decodeJSON(w, r, &req) {
		return uuid.Nil, nil, false
	}
	return id, req.TagIDs, true
}

func customerTagsResponse(tags []domain.Tag) CustomerTagsResponse {
	data := make([]TagResponse, len(tags))
	for i, t := range tags {
		data[i] = tagToResponse(t)
	}
	return CustomerTagsResponse{Success: true, Data: data}
}

// tagToResponse converts a domain.Tag to its JSON shape.
func tagToResponse(t domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}
