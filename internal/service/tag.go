package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
	"github.com/pkordes/backoffice/internal/validate"
)

// TagService manages the tag catalog and the tags attached to customers.
type TagService struct {
	tags      repo.TagRepo
	customers repo.CustomerRepo
	validator *validate.Validator
}

// NewTagService constructs a TagService.
func NewTagService(tags repo.TagRepo, customers repo.CustomerRepo, v *validate.Validator) *TagService {
	return &TagService{tags: tags, customers: customers, validator: v}
}

// List returns every tag with the number of active customers carrying it.
func (s *TagService) List(ctx context.Context) ([]domain.TagWithUsage, error) {
	tags, err := s.tags.ListWithUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	return tags, nil
}

// Create trims and validates name, then inserts the tag.
func (s *TagService) Create(ctx context.Context, name string) (domain.Tag, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	tag, err := s.tags.Create(ctx, name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return tag, nil
}

// GetByID returns a single tag.
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.GetByID: %w", err)
	}
	return tag, nil
}

// Rename changes a tag's name under the same rules as Create.
func (s *TagService) Rename(ctx context.Context, id uuid.UUID, name string) (domain.Tag, error) {
	name, err := s.cleanName(name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Rename: %w", err)
	}
	tag, err := s.tags.Rename(ctx, id, name)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Rename: %w", err)
	}
	return tag, nil
}

// Delete removes a tag and all of its customer links. It returns the number
// of customers that carried the tag.
func (s *TagService) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	n, err := s.tags.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return n, nil
}

// ListForCustomer returns the tags attached to an active customer.
func (s *TagService) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Tag, error) {
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, fmt.Errorf("service.TagService.ListForCustomer: %w", err)
	}
	tags, err := s.tags.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.ListForCustomer: %w", err)
	}
	return tags, nil
}

// Replace makes tagIDs the customer's complete tag set. Duplicate ids are
// collapsed, so calling it twice with the same input is a no-op the second time.
func (s *TagService) Replace(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error) {
	ids, err := s.checkAttach(ctx, customerID, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Replace: %w", err)
	}
	if err := s.tags.ReplaceForCustomer(ctx, customerID, ids); err != nil {
		return nil, fmt.Errorf("service.TagService.Replace: %w", err)
	}
	tags, err := s.tags.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Replace: %w", err)
	}
	return tags, nil
}

// Add attaches tagIDs to the customer, keeping existing links.
// It returns domain.ErrConflict when every tag was already attached.
func (s *TagService) Add(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]domain.Tag, error) {
	ids, err := s.checkAttach(ctx, customerID, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Add: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("service.TagService.Add: %w", domain.FieldErrors{{Field: "tag_ids", Message: "must not be empty"}})
	}
	n, err := s.tags.AddToCustomer(ctx, customerID, ids)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Add: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("service.TagService.Add: all tags already attached: %w", domain.ErrConflict)
	}
	tags, err := s.tags.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Add: %w", err)
	}
	return tags, nil
}

// Remove detaches one tag from the customer.
func (s *TagService) Remove(ctx context.Context, customerID, tagID uuid.UUID) error {
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return fmt.Errorf("service.TagService.Remove: %w", err)
	}
	if err := s.tags.RemoveFromCustomer(ctx, customerID, tagID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = domain.ErrTagNotAttached
		}
		return fmt.Errorf("service.TagService.Remove: %w", err)
	}
	return nil
}

func (s *TagService) cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if errs := s.validator.Struct(validate.TagFields{Name: name}); len(errs) > 0 {
		return "", errs
	}
	return name, nil
}

func (s *TagService) requireCustomer(ctx context.Context, id uuid.UUID) error {
	ok, err := s.customers.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// checkAttach verifies the customer exists and every tag id is known.
// It returns tagIDs with duplicates removed, first occurrence kept.
func (s *TagService) checkAttach(ctx context.Context, customerID uuid.UUID, tagIDs []uuid.UUID) ([]uuid.UUID, error) {
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	ids := dedupeIDs(tagIDs)
	if len(ids) == 0 {
		return ids, nil
	}

	existing, err := s.tags.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	var unknown []string
	for _, id := range ids {
		if !known[id] {
			unknown = append(unknown, id.String())
		}
	}
	if len(unknown) > 0 {
		return nil, domain.FieldErrors{{
			Field:   "tag_ids",
			Message: "unknown tag ids: " + strings.Join(unknown, ", "),
		}}
	}
	return ids, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
