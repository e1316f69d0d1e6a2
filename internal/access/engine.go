// Package access centralizes the role/tenant policy behind every
// list, create, edit and soft-delete decision. All functions
// are pure: they read the actor and the record reference, return a
// decision, and perform no I/O. Unknown roles and missing company
// context always deny.
package access

import (
	"errors"

	"github.com/spec-kit/lead-service/internal/domain"
)

// EntityType identifies the collection a decision applies to. Admin
// and User profiles are distinct entity types because their rules
// differ (Admins cannot touch other Admins).
type EntityType string

const (
	EntityCompany      EntityType = "company"
	EntityAdminProfile EntityType = "admin_profile"
	EntityUserProfile  EntityType = "user_profile"
	EntityLead         EntityType = "lead"
	EntityComment      EntityType = "comment"
)

// SubScope optionally narrows a read scope to rows tied to the actor.
type SubScope string

const (
	ScopeAll          SubScope = "all"
	ScopeOwnedByMe    SubScope = "owned_by_me"
	ScopeAssignedToMe SubScope = "assigned_to_me"
	ScopeAuthoredByMe SubScope = "authored_by_me"
)

// Actor is the authenticated identity performing an operation.
// CompanyID is empty for SuperAdmin.
type Actor struct {
	ID        string
	Role      domain.Role
	CompanyID string
}

// Record references an existing row for per-row edit/delete checks.
// Only the fields relevant to the entity type need to be set.
type Record struct {
	Entity     EntityType
	CompanyID  string
	OwnerID    string
	AuthorID   string
	AssignedID string
}

// Filter is the declarative read scope the caller translates into a
// store query. The caller must always AND it with "not soft-deleted".
type Filter struct {
	// Denied yields an empty result set regardless of other fields.
	Denied bool

	CompanyID  *string
	OwnerID    *string
	AssignedID *string
	AuthorID   *string
}

// Unrestricted reports whether the filter imposes no predicate at all.
func (f Filter) Unrestricted() bool {
	return !f.Denied && f.CompanyID == nil && f.OwnerID == nil && f.AssignedID == nil && f.AuthorID == nil
}

// Matches applies the filter to a fetched record. Used for per-row
// affordances and for checking read access to a comment's parent lead.
func (f Filter) Matches(record Record) bool {
	if f.Denied {
		return false
	}
	if f.CompanyID != nil && record.CompanyID != *f.CompanyID {
		return false
	}
	if f.OwnerID != nil && record.OwnerID != *f.OwnerID {
		return false
	}
	if f.AssignedID != nil && record.AssignedID != *f.AssignedID {
		return false
	}
	if f.AuthorID != nil && record.AuthorID != *f.AuthorID {
		return false
	}
	return true
}

// Stamp carries the owning fields the caller must set on a draft
// before inserting it. Empty fields are not applicable to the entity.
type Stamp struct {
	CompanyID string
	OwnerID   string
	AuthorID  string
}

// StampTarget supplies context the actor does not carry: the chosen
// company for SuperAdmin-authored drafts, or the parent lead's company
// for comments.
type StampTarget struct {
	CompanyID string
}

var (
	// ErrInvalidRole signals an unrecognized role value. Callers must
	// treat it as access denied, never as a default-permit.
	ErrInvalidRole = errors.New("access: unrecognized role")
	// ErrUnknownEntity signals a structurally invalid entity type.
	ErrUnknownEntity = errors.New("access: unknown entity type")
	// ErrUnknownScope signals a sub-scope that does not apply to the
	// entity type.
	ErrUnknownScope = errors.New("access: sub-scope not applicable")
	// ErrMissingCompany signals that a draft needs an explicit company
	// (SuperAdmin-authored rows) and none was supplied.
	ErrMissingCompany = errors.New("access: company required")
	// ErrDenied signals a stamp request the actor is not allowed to make.
	ErrDenied = errors.New("access: denied")
)

var validEntities = map[EntityType]struct{}{
	EntityCompany:      {},
	EntityAdminProfile: {},
	EntityUserProfile:  {},
	EntityLead:         {},
	EntityComment:      {},
}

// ReadScope computes the listing filter for the actor and entity type.
// It errors only on structurally invalid input; a role that lacks the
// company context it needs gets a denied filter, not an error.
func ReadScope(actor Actor, entity EntityType, sub SubScope) (Filter, error) {
	if !domain.KnownRole(actor.Role) {
		return Filter{Denied: true}, ErrInvalidRole
	}
	if _, ok := validEntities[entity]; !ok {
		return Filter{Denied: true}, ErrUnknownEntity
	}
	if err := validateSubScope(entity, sub); err != nil {
		return Filter{Denied: true}, err
	}

	var filter Filter
	switch entity {
	case EntityCompany:
		// Company listing is SuperAdmin-only.
		if actor.Role != domain.RoleSuperAdmin {
			return Filter{Denied: true}, nil
		}
	default:
		if actor.Role != domain.RoleSuperAdmin {
			if actor.CompanyID == "" {
				return Filter{Denied: true}, nil
			}
			companyID := actor.CompanyID
			filter.CompanyID = &companyID
		}
	}

	actorID := actor.ID
	switch sub {
	case ScopeOwnedByMe:
		filter.OwnerID = &actorID
	case ScopeAssignedToMe:
		filter.AssignedID = &actorID
	case ScopeAuthoredByMe:
		filter.AuthorID = &actorID
	}
	return filter, nil
}

func validateSubScope(entity EntityType, sub SubScope) error {
	switch sub {
	case ScopeAll, "":
		return nil
	case ScopeOwnedByMe, ScopeAssignedToMe:
		if entity != EntityLead {
			return ErrUnknownScope
		}
		return nil
	case ScopeAuthoredByMe:
		if entity != EntityComment {
			return ErrUnknownScope
		}
		return nil
	default:
		return ErrUnknownScope
	}
}

// CanCreate reports whether the actor may insert into the collection.
func CanCreate(actor Actor, entity EntityType) bool {
	if !domain.KnownRole(actor.Role) {
		return false
	}
	switch entity {
	case EntityCompany, EntityAdminProfile:
		return actor.Role == domain.RoleSuperAdmin
	case EntityUserProfile:
		if actor.Role == domain.RoleSuperAdmin {
			return true
		}
		return actor.Role == domain.RoleAdmin && actor.CompanyID != ""
	case EntityLead, EntityComment:
		if actor.Role == domain.RoleSuperAdmin {
			return true
		}
		return actor.CompanyID != ""
	default:
		return false
	}
}

// CreateStamp returns the owning fields to set on a draft. SuperAdmin
// drafts for company-bound entities need target.CompanyID; comments
// always inherit the parent lead's company via the target.
func CreateStamp(actor Actor, entity EntityType, target StampTarget) (Stamp, error) {
	if !CanCreate(actor, entity) {
		if !domain.KnownRole(actor.Role) {
			return Stamp{}, ErrInvalidRole
		}
		return Stamp{}, ErrDenied
	}

	switch entity {
	case EntityCompany:
		return Stamp{}, nil
	case EntityAdminProfile:
		if target.CompanyID == "" {
			return Stamp{}, ErrMissingCompany
		}
		return Stamp{CompanyID: target.CompanyID}, nil
	case EntityUserProfile:
		if actor.Role == domain.RoleAdmin {
			// Admin may only stamp their own company.
			return Stamp{CompanyID: actor.CompanyID}, nil
		}
		if target.CompanyID == "" {
			return Stamp{}, ErrMissingCompany
		}
		return Stamp{CompanyID: target.CompanyID}, nil
	case EntityLead:
		companyID := actor.CompanyID
		if actor.Role == domain.RoleSuperAdmin {
			companyID = target.CompanyID
		}
		if companyID == "" {
			return Stamp{}, ErrMissingCompany
		}
		return Stamp{CompanyID: companyID, OwnerID: actor.ID}, nil
	case EntityComment:
		if target.CompanyID == "" {
			return Stamp{}, ErrMissingCompany
		}
		return Stamp{CompanyID: target.CompanyID, AuthorID: actor.ID}, nil
	default:
		return Stamp{}, ErrUnknownEntity
	}
}

// CanEdit reports whether the actor may update the record.
func CanEdit(actor Actor, record Record) bool {
	if !domain.KnownRole(actor.Role) {
		return false
	}
	if actor.Role == domain.RoleSuperAdmin {
		return true
	}
	switch record.Entity {
	case EntityCompany, EntityAdminProfile:
		return false
	case EntityUserProfile:
		return actor.Role == domain.RoleAdmin && sameCompany(actor, record)
	case EntityLead:
		return sameCompany(actor, record)
	case EntityComment:
		if actor.Role == domain.RoleAdmin {
			return true
		}
		return authoredBy(actor, record)
	default:
		return false
	}
}

// CanDelete reports whether the actor may soft-delete the record. It
// mirrors CanEdit except that a User may delete only leads they own,
// even though they may edit any in-company lead.
func CanDelete(actor Actor, record Record) bool {
	if !domain.KnownRole(actor.Role) {
		return false
	}
	if actor.Role == domain.RoleSuperAdmin {
		return true
	}
	switch record.Entity {
	case EntityCompany, EntityAdminProfile:
		return false
	case EntityUserProfile:
		return actor.Role == domain.RoleAdmin && sameCompany(actor, record)
	case EntityLead:
		if actor.Role == domain.RoleAdmin {
			return sameCompany(actor, record)
		}
		return actor.ID != "" && record.OwnerID == actor.ID
	case EntityComment:
		if actor.Role == domain.RoleAdmin {
			return true
		}
		return authoredBy(actor, record)
	default:
		return false
	}
}

func sameCompany(actor Actor, record Record) bool {
	return actor.CompanyID != "" && actor.CompanyID == record.CompanyID
}

func authoredBy(actor Actor, record Record) bool {
	return actor.ID != "" && record.AuthorID == actor.ID
}
