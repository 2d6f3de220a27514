package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// GenerationLogEntry is the database model for the generation_log table.
// Rows are append-only: the table is both the audit trail and the source
// of truth for AI-usage counting.
type GenerationLogEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	LeadID    uuid.UUID
	Purpose   string
	Content   string
	Context   pqtype.NullRawMessage
	CreatedAt time.Time
}

const countGenerationLogInWindow = `
SELECT COUNT(*)
FROM generation_log
WHERE user_id = $1
  AND created_at >= $2
  AND created_at < $3
`

// CountGenerationLogInWindowParams bounds the count to a half-open time
// window [From, To).
type CountGenerationLogInWindowParams struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

func (q *Queries) CountGenerationLogInWindow(ctx context.Context, arg CountGenerationLogInWindowParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countGenerationLogInWindow, arg.UserID, arg.From, arg.To).Scan(&count)
	return count, err
}

const createGenerationLogEntry = `
INSERT INTO generation_log (id, user_id, lead_id, purpose, content, context)
VALUES ($1, $2, $3, $4, $5, $6)
`

// CreateGenerationLogEntryParams contains the inputs for the unconditional
// append, used for plans without a usage limit.
type CreateGenerationLogEntryParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	LeadID  uuid.UUID
	Purpose string
	Content string
	Context pqtype.NullRawMessage
}

func (q *Queries) CreateGenerationLogEntry(ctx context.Context, arg CreateGenerationLogEntryParams) error {
	_, err := q.db.ExecContext(ctx, createGenerationLogEntry,
		arg.ID, arg.UserID, arg.LeadID, arg.Purpose, arg.Content, arg.Context)
	return err
}

// The conditional insert serializes the count-then-append sequence per
// user with a transaction-scoped advisory lock, so two concurrent requests
// from the same account cannot both slip under the limit. The cross join
// on the lock CTE forces the count to run after the lock is held.
const createGenerationLogEntryWithinLimit = `
WITH lock AS (
    SELECT pg_advisory_xact_lock(hashtext($2::text)) AS locked
), current_usage AS (
    SELECT COUNT(*) AS used
    FROM generation_log, lock
    WHERE user_id = $2
      AND created_at >= $7
      AND created_at < $8
)
INSERT INTO generation_log (id, user_id, lead_id, purpose, content, context)
SELECT $1, $2, $3, $4, $5, $6
FROM current_usage
WHERE used < $9
`

// CreateGenerationLogEntryWithinLimitParams contains the inputs for the
// atomic conditional append.
type CreateGenerationLogEntryWithinLimitParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	LeadID  uuid.UUID
	Purpose string
	Content string
	Context pqtype.NullRawMessage
	From    time.Time
	To      time.Time
	Limit   int64
}

// CreateGenerationLogEntryWithinLimit appends an entry only if the user's
// count in the window is still below the limit. It returns true if the
// row was inserted, false if the limit was already reached.
func (q *Queries) CreateGenerationLogEntryWithinLimit(ctx context.Context, arg CreateGenerationLogEntryWithinLimitParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, createGenerationLogEntryWithinLimit,
		arg.ID, arg.UserID, arg.LeadID, arg.Purpose, arg.Content, arg.Context,
		arg.From, arg.To, arg.Limit)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
