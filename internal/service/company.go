package service

import (
	"context"
	"fmt"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/repo"
	"github.com/pkordes/backoffice/internal/validate"
)

// CompanySettingsService reads and writes the issuer details.
type CompanySettingsService struct {
	settings  repo.CompanySettingsRepo
	validator *validate.Validator
}

// NewCompanySettingsService constructs a CompanySettingsService.
func NewCompanySettingsService(settings repo.CompanySettingsRepo, v *validate.Validator) *CompanySettingsService {
	return &CompanySettingsService{settings: settings, validator: v}
}

// Get returns the settings, or empty settings when none were saved.
func (s *CompanySettingsService) Get(ctx context.Context) (domain.CompanySettings, error) {
	cs, err := s.settings.Get(ctx)
	if err != nil {
		return domain.CompanySettings{}, fmt.Errorf("service.CompanySettingsService.Get: %w", err)
	}
	return cs, nil
}

// Save validates and stores the settings.
func (s *CompanySettingsService) Save(ctx context.Context, cs domain.CompanySettings) (domain.CompanySettings, error) {
	if errs := s.validator.Struct(validate.CompanySettingsFieldsFrom(cs)); len(errs) > 0 {
		return domain.CompanySettings{}, fmt.Errorf("service.CompanySettingsService.Save: %w", errs)
	}
	saved, err := s.settings.Upsert(ctx, cs)
	if err != nil {
		return domain.CompanySettings{}, fmt.Errorf("service.CompanySettingsService.Save: %w", err)
	}
	return saved, nil
}

// Reset clears the settings back to defaults.
func (s *CompanySettingsService) Reset(ctx context.Context) error {
	if err := s.settings.Reset(ctx); err != nil {
		return fmt.Errorf("service.CompanySettingsService.Reset: %w", err)
	}
	return nil
}
