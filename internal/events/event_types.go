package events

import (
	"time"

	"github.com/spec-kit/lead-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadCreated       EventType = "lead_created"
	EventLeadStatusChanged EventType = "lead_status_changed"
	EventLeadAssigned      EventType = "lead_assigned"
	EventLeadDeleted       EventType = "lead_deleted"
	EventCommentAdded      EventType = "comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	IdentityID string      `json:"identity_id"`
	Role       domain.Role `json:"role"`
	CompanyID  string      `json:"company_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LeadID    string      `json:"lead_id"`
	CompanyID string      `json:"company_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LeadCreatedPayload payload.
type LeadCreatedPayload struct {
	Name     string            `json:"name"`
	Status   domain.LeadStatus `json:"status"`
	Location string            `json:"location,omitempty"`
}

// LeadStatusChangedPayload payload.
type LeadStatusChangedPayload struct {
	OldStatus domain.LeadStatus `json:"old_status"`
	NewStatus domain.LeadStatus `json:"new_status"`
}

// LeadAssignedPayload payload.
type LeadAssignedPayload struct {
	AssignedID *string `json:"assigned_user_id,omitempty"`
}

// LeadDeletedPayload payload.
type LeadDeletedPayload struct {
	Name string `json:"name"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string            `json:"comment_id"`
	Status      domain.LeadStatus `json:"status"`
	TextPreview string            `json:"text_preview"`
}
