// Package service contains the business logic layer.
//
// Services orchestrate interactions between the repository, external
// providers, and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
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

// =============================================================================
// Interface Definition
// =============================================================================

// UsageService computes usage summaries and mutates the account plan.
//
// Summaries are always recomputed from the lead and generation-log tables
// at the moment of the call; nothing is cached between requests, so a plan
// change or a new log entry is visible to the very next summary.
type UsageService interface {
	// GetUsageSummary returns the account's current usage against its plan.
	// Returns domain.ENOTFOUND if the user does not exist.
	GetUsageSummary(ctx context.Context, userID uuid.UUID) (domain.UsageSummary, error)

	// SummaryFor computes the usage summary for an already-loaded user,
	// avoiding a second user fetch on hot paths.
	SummaryFor(ctx context.Context, user *domain.User) (domain.UsageSummary, error)

	// SetPlan upgrades or downgrades the account plan. The change takes
	// effect immediately for subsequent summary computations.
	// Returns domain.EINVALID for unknown plans and domain.ENOTFOUND if
	// the user does not exist.
	SetPlan(ctx context.Context, userID uuid.UUID, plan domain.Plan) error
}

// MonthBounds returns the half-open window [start, end) of the calendar
// month containing asOf, in asOf's location. The half-open end is
// equivalent to an inclusive bound at the last instant of the month: an
// entry at 23:59:59.999 on the last day is inside, midnight of the next
// first is not.
func MonthBounds(asOf time.Time) (start, end time.Time) {
	start = time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, asOf.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// =============================================================================
// Implementation
// =============================================================================

type usageService struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewUsageService creates a new UsageService.
func NewUsageService(queries repository.Querier, logger *slog.Logger) UsageService {
	return &usageService{
		queries: queries,
		logger:  logger,
	}
}

// GetUsageSummary returns the account's current usage against its plan.
func (s *usageService) GetUsageSummary(ctx context.Context, userID uuid.UUID) (domain.UsageSummary, error) {
	const op = "usage.get_summary"

	user, err := s.getUser(ctx, op, userID)
	if err != nil {
		return domain.UsageSummary{}, err
	}
	return s.SummaryFor(ctx, user)
}

// SummaryFor computes the usage summary for an already-loaded user.
func (s *usageService) SummaryFor(ctx context.Context, user *domain.User) (domain.UsageSummary, error) {
	const op = "usage.summary"

	leadCount, err := s.queries.CountLeadsByUserID(ctx, user.ID)
	if err != nil {
		return domain.UsageSummary{}, domain.Internal(err, op, "failed to count leads")
	}

	start, end := MonthBounds(time.Now())
	aiUsage, err := s.queries.CountGenerationLogInWindow(ctx, repository.CountGenerationLogInWindowParams{
		UserID: user.ID,
		From:   start,
		To:     end,
	})
	if err != nil {
		return domain.UsageSummary{}, domain.Internal(err, op, "failed to count ai usage")
	}

	return domain.BuildUsageSummary(user.Plan, int(leadCount), int(aiUsage)), nil
}

// SetPlan upgrades or downgrades the account plan.
func (s *usageService) SetPlan(ctx context.Context, userID uuid.UUID, plan domain.Plan) error {
	const op = "usage.set_plan"

	if !plan.Valid() {
		return domain.Invalid(op, "plan must be either 'free' or 'pro'")
	}

	err := s.queries.UpdateUserPlan(ctx, repository.UpdateUserPlanParams{
		ID:   userID,
		Plan: plan.String(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "user", userID.String())
		}
		return domain.Internal(err, op, "failed to update plan")
	}

	s.logger.Info("plan changed", "user_id", userID, "plan", plan)
	return nil
}

// getUser loads a user and converts it to the domain type.
func (s *usageService) getUser(ctx context.Context, op string, userID uuid.UUID) (*domain.User, error) {
	row, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "user", userID.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch user")
	}
	user := userRowToDomain(row)
	return &user, nil
}

// userRowToDomain converts a repository user row to the domain type,
// normalizing the stored plan string.
func userRowToDomain(row repository.User) domain.User {
	return domain.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         domain.NullStringValue(row.Name),
		Plan:         domain.NormalizePlan(row.Plan),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
