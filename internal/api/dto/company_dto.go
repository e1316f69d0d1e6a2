package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// CompanyRequest payload for create and update.
type CompanyRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Note         string `json:"note"`
}

// CompanyResponse representation.
type CompanyResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCompanyResponse maps a company.
func NewCompanyResponse(company *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:           company.ID,
		Name:         company.Name,
		ContactEmail: company.ContactEmail,
		Phone:        company.Phone,
		Address:      company.Address,
		Note:         company.Note,
		CreatedAt:    company.CreatedAt,
		UpdatedAt:    company.UpdatedAt,
	}
}
