package dto

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// CreateCommentRequest payload. The status records what the author
// observed on the lead at the time of writing.
type CreateCommentRequest struct {
	LeadID string `json:"lead_id"`
	Text   string `json:"comment_text"`
	Status string `json:"status"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Text   string `json:"comment_text"`
	Status string `json:"status"`
}

// CommentResponse representation. AuthorName and LeadName come from the
// listing join; a deleted lead renders as "Deleted Lead".
type CommentResponse struct {
	ID         string            `json:"id"`
	Text       string            `json:"comment_text"`
	Status     domain.LeadStatus `json:"status"`
	CompanyID  string            `json:"company_id"`
	LeadID     string            `json:"lead_id"`
	AuthorID   string            `json:"created_by_user_id"`
	AuthorName string            `json:"author_name,omitempty"`
	LeadName   string            `json:"lead_name,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		Text:       comment.Text,
		Status:     comment.Status,
		CompanyID:  comment.CompanyID,
		LeadID:     comment.LeadID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		LeadName:   comment.LeadName,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}
