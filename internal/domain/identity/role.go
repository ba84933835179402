package identity

import (
	"github.com/arcollect/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Role represents a user's role as supplied by the identity collaborator.
// The set is closed: capability checks go through predicates on Role rather
// than string comparisons scattered across call sites.
type Role string

const (
	RoleOwner   Role = "OWNER"   // Organization owner
	RoleAdmin   Role = "ADMIN"   // Administrator
	RoleManager Role = "MANAGER" // Collections manager
	RoleAgent   Role = "AGENT"   // Collections agent
	RoleViewer  Role = "VIEWER"  // Read-only access
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleAgent, RoleViewer:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// CanAutoApprovePayments returns true if payments recorded by this role are
// created already approved, skipping the dual-control pending state.
func (r Role) CanAutoApprovePayments() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanApprove returns true if this role may approve or reject pending
// payments and change requests.
func (r Role) CanApprove() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

// CanDeleteDirectly returns true if this role may delete payments and
// communication logs without routing through an approval request.
func (r Role) CanDeleteDirectly() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanRecordPayments returns true if this role may record payments at all.
func (r Role) CanRecordPayments() bool {
	return r != RoleViewer
}

// Actor identifies the user performing an operation, as resolved by the
// identity/session collaborator.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor creates a validated Actor
func NewActor(id uuid.UUID, role Role) (Actor, error) {
	if id == uuid.Nil {
		return Actor{}, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if !role.IsValid() {
		return Actor{}, shared.NewDomainError("INVALID_ROLE", "Role is not valid")
	}
	return Actor{ID: id, Role: role}, nil
}
