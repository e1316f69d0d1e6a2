package domain

import (
	"fmt"
	"time"
)

// LeadStatus is a free-form re-assignable value shared by leads and
// comments: any status may move to any other status. Only membership
// in the set below is validated.
type LeadStatus string

const (
	StatusNew            LeadStatus = "New"
	StatusInConversation LeadStatus = "In Conversation"
	StatusDNP            LeadStatus = "DNP"
	StatusDND            LeadStatus = "DND"
	StatusNotInterested  LeadStatus = "Not Interested"
	StatusOutOfReach     LeadStatus = "Out of reach"
	StatusWrongDetails   LeadStatus = "Wrong details"
	StatusRejected       LeadStatus = "Rejected"
	StatusPO             LeadStatus = "PO"
)

var leadStatuses = map[LeadStatus]struct{}{
	StatusNew:            {},
	StatusInConversation: {},
	StatusDNP:            {},
	StatusDND:            {},
	StatusNotInterested:  {},
	StatusOutOfReach:     {},
	StatusWrongDetails:   {},
	StatusRejected:       {},
	StatusPO:             {},
}

// ParseLeadStatus validates a status literal received at the boundary.
func ParseLeadStatus(value string) (LeadStatus, error) {
	status := LeadStatus(value)
	if _, ok := leadStatuses[status]; !ok {
		return "", fmt.Errorf("unknown lead status %q", value)
	}
	return status, nil
}

// Lead is a sales prospect owned by its creating identity and worked
// by its assignee. CompanyID is inherited from the creator at creation
// time and never changes.
type Lead struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Status     LeadStatus
	Location   string
	Note       string
	CompanyID  string
	OwnerID    string
	AssignedID *string
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
