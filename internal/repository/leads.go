package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Lead is the database model for the leads table.
type Lead struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Name           string
	Contact        sql.NullString
	Notes          sql.NullString
	Status         string
	LastActivityAt sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const leadColumns = `id, user_id, name, contact, notes, status, last_activity_at, created_at, updated_at`

func scanLead(row interface{ Scan(...interface{}) error }) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.UserID, &l.Name, &l.Contact, &l.Notes, &l.Status, &l.LastActivityAt, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

const createLead = `
INSERT INTO leads (id, user_id, name, contact, notes, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + leadColumns

// CreateLeadParams contains the inputs for CreateLead.
type CreateLeadParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Name    string
	Contact sql.NullString
	Notes   sql.NullString
	Status  string
}

func (q *Queries) CreateLead(ctx context.Context, arg CreateLeadParams) (Lead, error) {
	row := q.db.QueryRowContext(ctx, createLead, arg.ID, arg.UserID, arg.Name, arg.Contact, arg.Notes, arg.Status)
	return scanLead(row)
}

const getLeadByID = `
SELECT ` + leadColumns + `
FROM leads
WHERE id = $1 AND user_id = $2
`

// GetLeadByIDParams contains the inputs for GetLeadByID. The user scope is
// part of the lookup so a lead owned by another account behaves exactly
// like a missing lead.
type GetLeadByIDParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) GetLeadByID(ctx context.Context, arg GetLeadByIDParams) (Lead, error) {
	row := q.db.QueryRowContext(ctx, getLeadByID, arg.ID, arg.UserID)
	return scanLead(row)
}

const listLeadsByUserID = `
SELECT ` + leadColumns + `
FROM leads
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListLeadsByUserID(ctx context.Context, userID uuid.UUID) ([]Lead, error) {
	rows, err := q.db.QueryContext(ctx, listLeadsByUserID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

const countLeadsByUserID = `
SELECT COUNT(*)
FROM leads
WHERE user_id = $1
`

func (q *Queries) CountLeadsByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countLeadsByUserID, userID).Scan(&count)
	return count, err
}

const updateLead = `
UPDATE leads
SET name = COALESCE($3, name),
    contact = COALESCE($4, contact),
    notes = COALESCE($5, notes),
    status = COALESCE($6, status),
    last_activity_at = now(),
    updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + leadColumns

// UpdateLeadParams contains the inputs for UpdateLead. Invalid (null)
// fields leave the stored value unchanged.
type UpdateLeadParams struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Name    sql.NullString
	Contact sql.NullString
	Notes   sql.NullString
	Status  sql.NullString
}

func (q *Queries) UpdateLead(ctx context.Context, arg UpdateLeadParams) (Lead, error) {
	row := q.db.QueryRowContext(ctx, updateLead, arg.ID, arg.UserID, arg.Name, arg.Contact, arg.Notes, arg.Status)
	return scanLead(row)
}
