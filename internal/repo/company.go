package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/backoffice/internal/domain"
)

// CompanySettingsRepo reads and writes the single company settings row.
type CompanySettingsRepo interface {
	// Get returns the stored settings, or zero-value settings when none exist.
	Get(ctx context.Context) (domain.CompanySettings, error)

	// Upsert creates or overwrites the settings row.
	Upsert(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error)

	// Reset removes the settings row so Get returns defaults again.
	Reset(ctx context.Context) error
}

type pgCompanySettingsRepo struct {
	db db
}

// NewCompanySettingsRepo constructs a CompanySettingsRepo backed by the provided db connection.
func NewCompanySettingsRepo(db db) CompanySettingsRepo {
	return &pgCompanySettingsRepo{db: db}
}

const companySettingsColumns = `company_name, postal_code, address, phone, email,
		registration_number, bank_info, updated_at`

func (r *pgCompanySettingsRepo) Get(ctx context.Context) (domain.CompanySettings, error) {
	q := `SELECT ` + companySettingsColumns + ` FROM company_settings WHERE id = 1`

	s, err := scanCompanySettings(r.db.QueryRow(ctx, q))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.CompanySettings{}, nil
	}
	if err != nil {
		return domain.CompanySettings{}, fmt.Errorf("repo.CompanySettingsRepo.Get: %w", err)
	}
	return s, nil
}

func (r *pgCompanySettingsRepo) Upsert(ctx context.Context, s domain.CompanySettings) (domain.CompanySettings, error) {
	q := `
		INSERT INTO company_settings (id, company_name, postal_code, address, phone,
			email, registration_number, bank_info)
		VALUES (1, @company_name, @postal_code, @address, @phone,
			@email, @registration_number, @bank_info)
		ON CONFLICT (id) DO UPDATE
		SET company_name        = EXCLUDED.company_name,
		    postal_code         = EXCLUDED.postal_code,
		    address             = EXCLUDED.address,
		    phone               = EXCLUDED.phone,
		    email               = EXCLUDED.email,
		    registration_number = EXCLUDED.registration_number,
		    bank_info           = EXCLUDED.bank_info,
		    updated_at          = now()
		RETURNING ` + companySettingsColumns

	saved, err := scanCompanySettings(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"company_name":        s.CompanyName,
		"postal_code":         s.PostalCode,
		"address":             s.Address,
		"phone":               s.Phone,
		"email":               s.Email,
		"registration_number": s.RegistrationNumber,
		"bank_info":           s.BankInfo,
	}))
	if err != nil {
		return domain.CompanySettings{}, fmt.Errorf("repo.CompanySettingsRepo.Upsert: %w", err)
	}
	return saved, nil
}

func (r *pgCompanySettingsRepo) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM company_settings WHERE id = 1`); err != nil {
		return fmt.Errorf("repo.CompanySettingsRepo.Reset: %w", err)
	}
	return nil
}

func scanCompanySettings(s scanner) (domain.CompanySettings, error) {
	var cs domain.CompanySettings
	err := s.Scan(&cs.CompanyName, &cs.PostalCode, &cs.Address, &cs.Phone, &cs.Email,
		&cs.RegistrationNumber, &cs.BankInfo, &cs.UpdatedAt)
	if err != nil {
		return domain.CompanySettings{}, mapError(err)
	}
	return cs, nil
}
