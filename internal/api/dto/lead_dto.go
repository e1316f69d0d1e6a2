package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// CreateLeadRequest payload. CompanyID is required from SuperAdmin
// callers and ignored otherwise.
type CreateLeadRequest struct {
	Name       string  `json:"lead_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Status     string  `json:"status"`
	Location   string  `json:"location"`
	Note       string  `json:"note"`
	AssignedID *string `json:"assigned_user_id"`
	CompanyID  string  `json:"company_id"`
}

// UpdateLeadRequest payload. Company and owner bindings never change.
type UpdateLeadRequest struct {
	Name       string  `json:"lead_name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Status     string  `json:"status"`
	Location   string  `json:"location"`
	Note       string  `json:"note"`
	AssignedID *string `json:"assigned_user_id"`
}

// LeadResponse representation.
type LeadResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"lead_name"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Status     domain.LeadStatus `json:"status"`
	Location   string            `json:"location"`
	Note       string            `json:"note"`
	CompanyID  string            `json:"company_id"`
	OwnerID    string            `json:"owner_user_id"`
	AssignedID *string           `json:"assigned_user_id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewLeadResponse maps a lead.
func NewLeadResponse(lead *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:         lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Status:     lead.Status,
		Location:   lead.Location,
		Note:       lead.Note,
		CompanyID:  lead.CompanyID,
		OwnerID:    lead.OwnerID,
		AssignedID: lead.AssignedID,
		CreatedAt:  lead.CreatedAt,
		UpdatedAt:  lead.UpdatedAt,
	}
}
