package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/backoffice/internal/domain"
)

// CompanySettingsBody is both the request and the reply of /company-settings.
type CompanySettingsBody struct {
	CompanyName        string     `json:"company_name"`
	PostalCode         string     `json:"postal_code"`
	Address            string     `json:"address"`
	Phone              string     `json:"phone"`
	Email              string     `json:"email"`
	RegistrationNumber string     `json:"registration_number"`
	BankInfo           string     `json:"bank_info"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// GetCompanySettings handles GET /company-settings.
func (s *Server) GetCompanySettings(w http.ResponseWriter, r *http.Request) {
	cs, err := s.company.Get(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToBody(cs))
}

// SaveCompanySettings handles PUT /company-settings.
func (s *Server) SaveCompanySettings(w http.ResponseWriter, r *http.Request) {
	var req CompanySettingsBody
	if !decodeJSON(w, r, &req) {
		return
	}
	cs, err := s.company.Save(r.Context(), domain.CompanySettings{
		CompanyName:        req.CompanyName,
		PostalCode:         req.PostalCode,
		Address:            req.Address,
		Phone:              req.Phone,
		Email:              req.Email,
		RegistrationNumber: req.RegistrationNumber,
		BankInfo:           req.BankInfo,
	})
	if err != nil {
		s.respondError(w, r, err, errorMessages{})
		return
	}
	writeJSON(w, http.StatusOK, settingsToBody(cs))
}

// ResetCompanySettings handles DELETE /company-settings.
func (s *Server) ResetCompanySettings(w http.ResponseWriter, r *http.Request) {
	if err := s.company.Reset(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "company settings reset"})
}

func settingsToBody(cs domain.CompanySettings) CompanySettingsBody {
	body := CompanySettingsBody{
		CompanyName:        cs.CompanyName,
		PostalCode:         cs.PostalCode,
		Address:            cs.Address,
		Phone:              cs.Phone,
		Email:              cs.Email,
		RegistrationNumber: cs.RegistrationNumber,
		BankInfo:           cs.BankInfo,
	}
	if !cs.UpdatedAt.IsZero() {
		body.UpdatedAt = &cs.UpdatedAt
	}
	return body
}
