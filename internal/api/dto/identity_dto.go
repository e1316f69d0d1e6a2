package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// CreateProfileRequest payload for admin and user creation. CompanyID
// is required from SuperAdmin callers and ignored otherwise.
type CreateProfileRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
	CompanyID string `json:"company_id"`
}

// UpdateProfileRequest payload. Role and company cannot be changed.
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
}

// ProfileResponse representation. Password hash never leaves the service.
type ProfileResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Gender    string      `json:"gender,omitempty"`
	Address   string      `json:"address,omitempty"`
	Role      domain.Role `json:"role"`
	CompanyID string      `json:"company_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewProfileResponse maps an identity.
func NewProfileResponse(identity *domain.Identity) ProfileResponse {
	return ProfileResponse{
		ID:        identity.ID,
		Name:      identity.Name,
		Email:     identity.Email,
		Phone:     identity.Phone,
		Gender:    identity.Gender,
		Address:   identity.Address,
		Role:      identity.Role,
		CompanyID: identity.CompanyID,
		CreatedAt: identity.CreatedAt,
		UpdatedAt: identity.UpdatedAt,
	}
}
