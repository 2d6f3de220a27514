package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reminder is a scheduled nudge to follow up with a lead.
type Reminder struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Note      string
	TriggerAt time.Time
	IsDone    bool
	CreatedAt time.Time

	// Lead is populated on reads that join the owning lead.
	Lead *Lead
}

// CreateReminderParams contains the validated parameters for creating a
// reminder on one of the user's leads.
type CreateReminderParams struct {
	UserID    uuid.UUID
	LeadID    uuid.UUID
	Note      string
	TriggerAt time.Time
}
