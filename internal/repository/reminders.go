package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Reminder is the database model for the reminders table. Reminders hang
// off leads, so user scoping goes through the owning lead.
type Reminder struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Note      sql.NullString
	TriggerAt time.Time
	IsDone    bool
	CreatedAt time.Time
}

// ReminderWithLead joins a reminder with its owning lead for list views.
type ReminderWithLead struct {
	Reminder
	LeadName    string
	LeadContact sql.NullString
	LeadStatus  string
}

const createReminder = `
INSERT INTO reminders (id, lead_id, note, trigger_at)
SELECT $1, l.id, $2, $3
FROM leads l
WHERE l.id = $4 AND l.user_id = $5
RETURNING id, lead_id, note, trigger_at, is_done, created_at
`

// CreateReminderParams contains the inputs for CreateReminder. The insert
// is scoped through the owning lead so a reminder cannot be attached to
// another account's lead.
type CreateReminderParams struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	UserID    uuid.UUID
	Note      sql.NullString
	TriggerAt time.Time
}

func (q *Queries) CreateReminder(ctx context.Context, arg CreateReminderParams) (Reminder, error) {
	row := q.db.QueryRowContext(ctx, createReminder,
		arg.ID, arg.Note, arg.TriggerAt, arg.LeadID, arg.UserID)
	var r Reminder
	err := row.Scan(&r.ID, &r.LeadID, &r.Note, &r.TriggerAt, &r.IsDone, &r.CreatedAt)
	return r, err
}

const listOpenRemindersForUserBetween = `
SELECT r.id, r.lead_id, r.note, r.trigger_at, r.is_done, r.created_at,
       l.name, l.contact, l.status
FROM reminders r
JOIN leads l ON l.id = r.lead_id
WHERE l.user_id = $1
  AND r.trigger_at >= $2
  AND r.trigger_at < $3
  AND r.is_done = false
ORDER BY r.trigger_at ASC
`

// ListOpenRemindersForUserBetweenParams bounds the list to a half-open
// trigger window [From, To).
type ListOpenRemindersForUserBetweenParams struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

func (q *Queries) ListOpenRemindersForUserBetween(ctx context.Context, arg ListOpenRemindersForUserBetweenParams) ([]ReminderWithLead, error) {
	rows, err := q.db.QueryContext(ctx, listOpenRemindersForUserBetween, arg.UserID, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []ReminderWithLead
	for rows.Next() {
		var r ReminderWithLead
		if err := rows.Scan(&r.ID, &r.LeadID, &r.Note, &r.TriggerAt, &r.IsDone, &r.CreatedAt,
			&r.LeadName, &r.LeadContact, &r.LeadStatus); err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

const markReminderDone = `
UPDATE reminders r
SET is_done = true
FROM leads l
WHERE r.id = $1 AND l.id = r.lead_id AND l.user_id = $2
`

// MarkReminderDoneParams contains the inputs for MarkReminderDone.
type MarkReminderDoneParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) MarkReminderDone(ctx context.Context, arg MarkReminderDoneParams) error {
	res, err := q.db.ExecContext(ctx, markReminderDone, arg.ID, arg.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
