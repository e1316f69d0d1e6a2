package domain

import "time"

// Comment is a timestamped status note on a lead. The lead must be
// live at creation; a later-deleted lead is tolerated for history and
// rendered as "Deleted Lead" by the listing layer.
type Comment struct {
	ID        string
	Text      string
	Status    LeadStatus
	CompanyID string
	LeadID    string
	AuthorID  string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Display-only join fields populated by listing queries.
	AuthorName string
	LeadName   string
}
