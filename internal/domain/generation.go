package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationPurpose identifies the kind of message being generated.
type GenerationPurpose string

const (
	PurposeFollowUp GenerationPurpose = "follow_up"
	PurposePayment  GenerationPurpose = "payment"
)

// Valid reports whether p is a known purpose.
func (p GenerationPurpose) Valid() bool {
	return p == PurposeFollowUp || p == PurposePayment
}

func (p GenerationPurpose) String() string {
	return string(p)
}

// GenerationLogEntry is the immutable record of one generated message.
//
// It doubles as the audit trail and the sole input to AI-usage counting:
// every unit of usage charged against a quota corresponds to exactly one
// row, written in the same calendar month. Entries are never updated or
// deleted. The schema does not record whether the text came from the
// provider or the local fallback; that distinction exists only in
// application logs.
type GenerationLogEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	LeadID    uuid.UUID
	Purpose   GenerationPurpose
	Content   string
	Context   []byte // JSONB snapshot of the request context (tone, amount, ...)
	CreatedAt time.Time
}

// GenerationParams contains the validated parameters for one generation
// request.
type GenerationParams struct {
	UserID     uuid.UUID
	LeadID     uuid.UUID
	Purpose    GenerationPurpose
	LeadName   string
	LeadStatus string     // follow_up only
	DaysPassed int        // follow_up: days since last reply
	Amount     *float64   // payment only
	DueDate    *time.Time // payment only
	Tone       string     // raw tone alias, normalized by the composer
	Locale     string     // BCP 47 tag; unknown values fall back to English
}

// GenerationResult is the successful outcome of a generation request: the
// final text (provider or fallback) plus the usage summary recomputed
// after the audit entry was written.
type GenerationResult struct {
	Text  string
	Usage UsageSummary
}
