// Package service contains the business logic layer.
//
// This file implements the generation orchestrator: the request flow of
// admission check, prompt composition, provider call, fallback, audit
// logging, and response assembly.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ewaller/leadloop/internal/ai"
	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/metrics"
	"github.com/ewaller/leadloop/internal/repository"
	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// DefaultProviderTimeout bounds a single generation's provider call. A
// timeout is treated exactly like any other provider failure: the request
// falls back to the local template instead of hanging.
const DefaultProviderTimeout = 30 * time.Second

// Generation outcome labels for metrics and logs.
const (
	outcomeAI       = "ai"
	outcomeFallback = "fallback"
	outcomeDenied   = "denied"
)

// =============================================================================
// Interface Definition
// =============================================================================

// GenerationService coordinates one generation request end to end.
type GenerationService interface {
	// Generate runs the full pipeline for one request:
	//
	//   admit -> compose -> call provider -> (success | fallback) ->
	//   append audit entry -> recompute usage -> respond
	//
	// Returns *domain.QuotaError when the account's monthly AI limit is
	// reached (checked before the provider call, and enforced again
	// atomically at the audit append). Returns domain.ENOTFOUND when the
	// lead does not belong to the account. Provider failures are never
	// returned; they degrade to the deterministic fallback text.
	Generate(ctx context.Context, params domain.GenerationParams) (*domain.GenerationResult, error)
}

// =============================================================================
// Implementation
// =============================================================================

type generationService struct {
	queries  repository.Querier
	provider ai.Provider
	usage    UsageService
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGenerationService creates a new GenerationService. A zero timeout
// falls back to DefaultProviderTimeout.
func NewGenerationService(
	queries repository.Querier,
	provider ai.Provider,
	usage UsageService,
	timeout time.Duration,
	logger *slog.Logger,
) GenerationService {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &generationService{
		queries:  queries,
		provider: provider,
		usage:    usage,
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate runs the full pipeline for one request.
func (s *generationService) Generate(ctx context.Context, params domain.GenerationParams) (*domain.GenerationResult, error) {
	const op = "generation.request"

	if !params.Purpose.Valid() {
		return nil, domain.Invalid(op, "purpose must be either 'follow_up' or 'payment'")
	}

	// Verify the lead belongs to the requesting account before anything
	// else; a foreign lead behaves exactly like a missing one.
	lead, err := s.queries.GetLeadByID(ctx, repository.GetLeadByIDParams{
		ID:     params.LeadID,
		UserID: params.UserID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "lead", params.LeadID.String())
		}
		return nil, domain.Internal(err, op, "failed to fetch lead")
	}

	user, err := s.getUser(ctx, op, params.UserID)
	if err != nil {
		return nil, err
	}

	// Admitting. The check runs before any provider call so a request
	// that will be denied never spends provider quota.
	summary, err := s.usage.SummaryFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if !summary.CanUseAI {
		s.logger.Info("generation denied",
			"user_id", user.ID,
			"plan", user.Plan,
			"ai_usage", summary.AIUsageThisMonth,
		)
		metrics.GenerationsTotal.WithLabelValues(params.Purpose.String(), outcomeDenied).Inc()
		metrics.QuotaDenialsTotal.WithLabelValues("ai").Inc()
		return nil, domain.QuotaExceeded(op, domain.ReasonAILimitReached, summary)
	}

	// Composing. The lead name from the request wins; the stored name is
	// the fallback so older clients that omit it keep working.
	now := time.Now()
	composeParams := ai.ComposeParams{
		Purpose:    params.Purpose,
		LeadName:   params.LeadName,
		LeadStatus: params.LeadStatus,
		DaysPassed: params.DaysPassed,
		Amount:     params.Amount,
		DueDate:    params.DueDate,
		Tone:       params.Tone,
		Locale:     params.Locale,
		Now:        now,
	}
	if composeParams.LeadName == "" {
		composeParams.LeadName = lead.Name
	}
	prompt := ai.Compose(composeParams)

	// Calling, bounded by the provider timeout.
	text, outcome := s.callProvider(ctx, prompt, composeParams)

	// Logging: exactly one audit entry for the text the caller will
	// receive, whichever path produced it. For limited plans the append
	// is conditional on the monthly count so concurrent requests cannot
	// push a free account past its limit.
	if err := s.appendLogEntry(ctx, op, user, params, composeParams, text, now); err != nil {
		var qe *domain.QuotaError
		if errors.As(err, &qe) {
			metrics.GenerationsTotal.WithLabelValues(params.Purpose.String(), outcomeDenied).Inc()
			metrics.QuotaDenialsTotal.WithLabelValues("ai").Inc()
		}
		return nil, err
	}

	metrics.GenerationsTotal.WithLabelValues(params.Purpose.String(), outcome).Inc()
	s.logger.Info("generation completed",
		"user_id", user.ID,
		"lead_id", lead.ID,
		"purpose", params.Purpose,
		"outcome", outcome,
		"text_len", len(text),
	)

	// Responding: the summary is recomputed so it includes the entry
	// just written.
	fresh, err := s.usage.SummaryFor(ctx, user)
	if err != nil {
		return nil, err
	}

	return &domain.GenerationResult{Text: text, Usage: fresh}, nil
}

// callProvider invokes the completion provider with a bounded timeout and
// returns the final text plus the outcome label. Provider errors and
// empty responses both degrade to the deterministic fallback; this method
// cannot fail.
func (s *generationService) callProvider(ctx context.Context, prompt ai.Prompt, p ai.ComposeParams) (string, string) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.provider.Complete(callCtx, prompt)
	elapsed := time.Since(start)

	if err != nil || text == "" {
		if err == nil {
			err = ai.ErrEmptyResponse
		}
		s.logger.Warn("provider call failed, using fallback",
			"purpose", p.Purpose,
			"error", err,
			"elapsed_ms", elapsed.Milliseconds(),
		)
		metrics.ProviderRequestDuration.WithLabelValues(outcomeFallback).Observe(elapsed.Seconds())
		return ai.Fallback(p), outcomeFallback
	}

	metrics.ProviderRequestDuration.WithLabelValues(outcomeAI).Observe(elapsed.Seconds())
	return text, outcomeAI
}

// appendLogEntry writes the single audit entry for this request. Free
// plans go through the atomic conditional append; losing that race after
// the provider call still yields a structured denial with fresh usage.
func (s *generationService) appendLogEntry(
	ctx context.Context,
	op string,
	user *domain.User,
	params domain.GenerationParams,
	composeParams ai.ComposeParams,
	text string,
	now time.Time,
) error {
	entryCtx := s.marshalContext(composeParams)

	limits := domain.LimitsFor(user.Plan)
	if limits.AILimit == nil {
		err := s.queries.CreateGenerationLogEntry(ctx, repository.CreateGenerationLogEntryParams{
			ID:      uuid.New(),
			UserID:  user.ID,
			LeadID:  params.LeadID,
			Purpose: params.Purpose.String(),
			Content: text,
			Context: entryCtx,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to write generation log")
		}
		return nil
	}

	start, end := MonthBounds(now)
	inserted, err := s.queries.CreateGenerationLogEntryWithinLimit(ctx, repository.CreateGenerationLogEntryWithinLimitParams{
		ID:      uuid.New(),
		UserID:  user.ID,
		LeadID:  params.LeadID,
		Purpose: params.Purpose.String(),
		Content: text,
		Context: entryCtx,
		From:    start,
		To:      end,
		Limit:   int64(*limits.AILimit),
	})
	if err != nil {
		return domain.Internal(err, op, "failed to write generation log")
	}
	if !inserted {
		// A concurrent request used the last slot between our admission
		// check and this append.
		summary, err := s.usage.SummaryFor(ctx, user)
		if err != nil {
			return err
		}
		s.logger.Info("generation lost admission race", "user_id", user.ID)
		return domain.QuotaExceeded(op, domain.ReasonAILimitReached, summary)
	}
	return nil
}

// marshalContext snapshots the request context for the audit entry. The
// snapshot is informational; failures degrade to a null column.
func (s *generationService) marshalContext(p ai.ComposeParams) pqtype.NullRawMessage {
	snapshot := map[string]interface{}{
		"tone":   string(ai.NormalizeTone(p.Purpose, p.Tone)),
		"locale": p.Locale,
	}
	if p.Purpose == domain.PurposePayment {
		snapshot["days_overdue"] = p.DaysOverdue()
		if p.Amount != nil {
			snapshot["amount"] = *p.Amount
		}
	} else {
		snapshot["days_passed"] = p.DaysPassed
		if p.LeadStatus != "" {
			snapshot["status"] = p.LeadStatus
		}
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Warn("failed to marshal generation context", "error", err)
		return pqtype.NullRawMessage{}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

// getUser loads a user and converts it to the domain type.
func (s *generationService) getUser(ctx context.Context, op string, userID uuid.UUID) (*domain.User, error) {
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
