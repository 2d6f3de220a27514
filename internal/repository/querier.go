package repository

import (
	"context"

	"github.com/google/uuid"
)

// Querier is the interface the service layer depends on. *Queries is the
// production implementation; tests substitute in-memory fakes.
type Querier interface {
	// Users and sessions
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUserPlan(ctx context.Context, arg UpdateUserPlanParams) error
	CreateSession(ctx context.Context, arg CreateSessionParams) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context) error

	// Leads
	CreateLead(ctx context.Context, arg CreateLeadParams) (Lead, error)
	GetLeadByID(ctx context.Context, arg GetLeadByIDParams) (Lead, error)
	ListLeadsByUserID(ctx context.Context, userID uuid.UUID) ([]Lead, error)
	CountLeadsByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	UpdateLead(ctx context.Context, arg UpdateLeadParams) (Lead, error)

	// Generation log
	CountGenerationLogInWindow(ctx context.Context, arg CountGenerationLogInWindowParams) (int64, error)
	CreateGenerationLogEntry(ctx context.Context, arg CreateGenerationLogEntryParams) error
	CreateGenerationLogEntryWithinLimit(ctx context.Context, arg CreateGenerationLogEntryWithinLimitParams) (bool, error)

	// Reminders
	CreateReminder(ctx context.Context, arg CreateReminderParams) (Reminder, error)
	ListOpenRemindersForUserBetween(ctx context.Context, arg ListOpenRemindersForUserBetweenParams) ([]ReminderWithLead, error)
	MarkReminderDone(ctx context.Context, arg MarkReminderDoneParams) error
}

var _ Querier = (*Queries)(nil)
