package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/repository"
	"github.com/google/uuid"
)

// ReminderService surfaces due follow-up reminders.
type ReminderService interface {
	// Create attaches a reminder to one of the user's leads.
	// Returns domain.ENOTFOUND if the lead does not exist or belongs to
	// another account.
	Create(ctx context.Context, params domain.CreateReminderParams) (*domain.Reminder, error)

	// ListToday returns the user's open reminders triggering today,
	// ordered by trigger time. "Today" is the local calendar day of now.
	ListToday(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.Reminder, error)

	// MarkDone marks a reminder done, scoped through the owning lead.
	// Returns domain.ENOTFOUND if the reminder does not exist or belongs
	// to another account.
	MarkDone(ctx context.Context, id, userID uuid.UUID) error
}

type reminderService struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewReminderService creates a new ReminderService.
func NewReminderService(queries repository.Querier, logger *slog.Logger) ReminderService {
	return &reminderService{
		queries: queries,
		logger:  logger,
	}
}

// Create attaches a reminder to one of the user's leads.
func (s *reminderService) Create(ctx context.Context, params domain.CreateReminderParams) (*domain.Reminder, error) {
	const op = "reminder.create"

	if params.TriggerAt.IsZero() {
		return nil, domain.Invalid(op, "triggerAt is required")
	}

	row, err := s.queries.CreateReminder(ctx, repository.CreateReminderParams{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		UserID:    params.UserID,
		Note:      domain.ToNullString(params.Note),
		TriggerAt: params.TriggerAt,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "lead", params.LeadID.String())
		}
		return nil, domain.Internal(err, op, "failed to create reminder")
	}

	reminder := &domain.Reminder{
		ID:        row.ID,
		LeadID:    row.LeadID,
		Note:      domain.NullStringValue(row.Note),
		TriggerAt: row.TriggerAt,
		IsDone:    row.IsDone,
		CreatedAt: row.CreatedAt,
	}
	s.logger.Info("reminder created", "reminder_id", reminder.ID, "lead_id", reminder.LeadID)
	return reminder, nil
}

// ListToday returns the user's open reminders triggering today.
func (s *reminderService) ListToday(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.Reminder, error) {
	const op = "reminder.list_today"

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	rows, err := s.queries.ListOpenRemindersForUserBetween(ctx, repository.ListOpenRemindersForUserBetweenParams{
		UserID: userID,
		From:   start,
		To:     end,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list reminders")
	}

	reminders := make([]domain.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, domain.Reminder{
			ID:        row.ID,
			LeadID:    row.LeadID,
			Note:      domain.NullStringValue(row.Note),
			TriggerAt: row.TriggerAt,
			IsDone:    row.IsDone,
			CreatedAt: row.CreatedAt,
			Lead: &domain.Lead{
				ID:      row.LeadID,
				Name:    row.LeadName,
				Contact: domain.NullStringValue(row.LeadContact),
				Status:  row.LeadStatus,
			},
		})
	}
	return reminders, nil
}

// MarkDone marks a reminder done, scoped through the owning lead.
func (s *reminderService) MarkDone(ctx context.Context, id, userID uuid.UUID) error {
	const op = "reminder.mark_done"

	err := s.queries.MarkReminderDone(ctx, repository.MarkReminderDoneParams{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "reminder", id.String())
		}
		return domain.Internal(err, op, "failed to mark reminder done")
	}
	return nil
}
