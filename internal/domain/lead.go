package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLeadStatus is assigned when a lead is created without a status.
const DefaultLeadStatus = "new"

// Lead represents a sales lead owned by exactly one user.
//
// Status is a free-text category (e.g. "new", "waiting_reply", "closed");
// the system does not enforce a status vocabulary. LastActivityAt is
// touched on every update so stale leads can be surfaced for follow-up.
type Lead struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Contact        string
	Notes          string
	Status         string
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateLeadParams contains the validated parameters for creating a lead.
type CreateLeadParams struct {
	UserID  uuid.UUID
	Name    string
	Contact string
	Notes   string
	Status  string
}

// UpdateLeadParams contains parameters for updating a lead. Nil fields are
// left unchanged.
type UpdateLeadParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Name    *string
	Contact *string
	Notes   *string
	Status  *string
}
