// Package service contains the business logic layer.
//
// This file implements the lead service. Lead creation is the second
// quota-gated operation: free accounts are capped at a fixed number of
// leads, checked against the live count at creation time.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/metrics"
	"github.com/ewaller/leadloop/internal/repository"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// LeadService defines the interface for lead-related operations.
type LeadService interface {
	// Create creates a new lead, subject to the plan's lead limit.
	// Returns *domain.QuotaError when the limit is reached and
	// domain.EINVALID for validation errors.
	Create(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error)

	// GetByID retrieves a lead scoped to its owner.
	// Returns domain.ENOTFOUND if the lead does not exist or belongs to
	// another account.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Lead, error)

	// List retrieves all leads for a user, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Lead, error)

	// Update updates a lead's fields and touches its activity timestamp.
	// Returns domain.ENOTFOUND if the lead does not exist or belongs to
	// another account.
	Update(ctx context.Context, params domain.UpdateLeadParams) (*domain.Lead, error)

	// UpdateStatus changes only the lead's status.
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) (*domain.Lead, error)
}

// =============================================================================
// Implementation
// =============================================================================

type leadService struct {
	queries repository.Querier
	usage   UsageService
	logger  *slog.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(queries repository.Querier, usage UsageService, logger *slog.Logger) LeadService {
	return &leadService{
		queries: queries,
		usage:   usage,
		logger:  logger,
	}
}

// Create creates a new lead, subject to the plan's lead limit.
func (s *leadService) Create(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
	const op = "lead.create"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, domain.Invalid(op, "name is required")
	}

	summary, err := s.usage.GetUsageSummary(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	if !summary.CanCreateLead {
		s.logger.Info("lead creation denied",
			"user_id", params.UserID,
			"lead_count", summary.LeadCount,
		)
		metrics.QuotaDenialsTotal.WithLabelValues("lead").Inc()
		return nil, domain.QuotaExceeded(op, domain.ReasonLeadLimitReached, summary)
	}

	status := params.Status
	if status == "" {
		status = domain.DefaultLeadStatus
	}

	row, err := s.queries.CreateLead(ctx, repository.CreateLeadParams{
		ID:      uuid.New(),
		UserID:  params.UserID,
		Name:    name,
		Contact: domain.ToNullString(params.Contact),
		Notes:   domain.ToNullString(params.Notes),
		Status:  status,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create lead")
	}

	lead := leadRowToDomain(row)
	s.logger.Info("lead created", "lead_id", lead.ID, "user_id", params.UserID)
	return &lead, nil
}

// GetByID retrieves a lead scoped to its owner.
func (s *leadService) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Lead, error) {
	const op = "lead.get"

	row, err := s.queries.GetLeadByID(ctx, repository.GetLeadByIDParams{ID: id, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "lead", id.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch lead")
	}

	lead := leadRowToDomain(row)
	return &lead, nil
}

// List retrieves all leads for a user, newest first.
func (s *leadService) List(ctx context.Context, userID uuid.UUID) ([]domain.Lead, error) {
	const op = "lead.list"

	rows, err := s.queries.ListLeadsByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list leads")
	}

	leads := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, leadRowToDomain(row))
	}
	return leads, nil
}

// Update updates a lead's fields and touches its activity timestamp.
func (s *leadService) Update(ctx context.Context, params domain.UpdateLeadParams) (*domain.Lead, error) {
	const op = "lead.update"

	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return nil, domain.Invalid(op, "name cannot be empty")
	}

	row, err := s.queries.UpdateLead(ctx, repository.UpdateLeadParams{
		ID:      params.ID,
		UserID:  params.UserID,
		Name:    nullFromPtr(params.Name),
		Contact: nullFromPtr(params.Contact),
		Notes:   nullFromPtr(params.Notes),
		Status:  nullFromPtr(params.Status),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "lead", params.ID.String())
		}
		return nil, domain.Internal(err, op, "failed to update lead")
	}

	lead := leadRowToDomain(row)
	return &lead, nil
}

// UpdateStatus changes only the lead's status.
func (s *leadService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) (*domain.Lead, error) {
	const op = "lead.update_status"

	if strings.TrimSpace(status) == "" {
		return nil, domain.Invalid(op, "status is required")
	}
	return s.Update(ctx, domain.UpdateLeadParams{ID: id, UserID: userID, Status: &status})
}

// nullFromPtr converts an optional field to sql.NullString.
func nullFromPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// leadRowToDomain converts a repository lead row to the domain type.
func leadRowToDomain(row repository.Lead) domain.Lead {
	return domain.Lead{
		ID:             row.ID,
		UserID:         row.UserID,
		Name:           row.Name,
		Contact:        domain.NullStringValue(row.Contact),
		Notes:          domain.NullStringValue(row.Notes),
		Status:         row.Status,
		LastActivityAt: domain.NullTimeValue(row.LastActivityAt),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
