package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ewaller/leadloop/internal/auth"
	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/service"
	"github.com/google/uuid"
)

// AIHandler serves the text-generation endpoints.
//
// Routes handled:
// - POST /api/ai/follow-up -> FollowUp
// - POST /api/ai/payment   -> Payment
//
// Both endpoints always return text on success: provider failures degrade
// to deterministic template text rather than surfacing as errors. The
// only generation-specific failure a client sees is the 403 quota denial.
type AIHandler struct {
	generationService service.GenerationService
	logger            *slog.Logger
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(generationService service.GenerationService, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// =============================================================================
// Request / Response Types
// =============================================================================

type followUpRequest struct {
	LeadID     string `json:"leadId" validate:"required,uuid"`
	LeadName   string `json:"leadName" validate:"omitempty,max=200"`
	LeadStatus string `json:"leadStatus" validate:"omitempty,max=50"`
	DaysPassed int    `json:"daysPassed" validate:"gte=0"`
	Tone       string `json:"tone" validate:"omitempty,max=50"`
	Locale     string `json:"locale" validate:"omitempty,bcp47_language_tag"`
}

type paymentRequest struct {
	LeadID   string   `json:"leadId" validate:"required,uuid"`
	LeadName string   `json:"leadName" validate:"omitempty,max=200"`
	Amount   *float64 `json:"amount" validate:"required,gt=0"`
	DueDate  string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Tone     string   `json:"tone" validate:"omitempty,max=50"`
	Locale   string   `json:"locale" validate:"omitempty,bcp47_language_tag"`
}

type generationResponse struct {
	Text  string              `json:"text"`
	Usage domain.UsageSummary `json:"usage"`
}

// =============================================================================
// Handlers
// =============================================================================

// FollowUp handles POST /api/ai/follow-up.
func (h *AIHandler) FollowUp(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req followUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("ai.follow_up", "leadId must be a valid UUID"))
		return
	}

	result, err := h.generationService.Generate(r.Context(), domain.GenerationParams{
		UserID:     user.ID,
		LeadID:     leadID,
		Purpose:    domain.PurposeFollowUp,
		LeadName:   req.LeadName,
		LeadStatus: req.LeadStatus,
		DaysPassed: req.DaysPassed,
		Tone:       req.Tone,
		Locale:     req.Locale,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, generationResponse{Text: result.Text, Usage: result.Usage})
}

// Payment handles POST /api/ai/payment.
func (h *AIHandler) Payment(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("ai.payment", "leadId must be a valid UUID"))
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
		if err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("ai.payment", "dueDate must be YYYY-MM-DD"))
			return
		}
		dueDate = &parsed
	}

	result, err := h.generationService.Generate(r.Context(), domain.GenerationParams{
		UserID:   user.ID,
		LeadID:   leadID,
		Purpose:  domain.PurposePayment,
		LeadName: req.LeadName,
		Amount:   req.Amount,
		DueDate:  dueDate,
		Tone:     req.Tone,
		Locale:   req.Locale,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, generationResponse{Text: result.Text, Usage: result.Usage})
}

// RegisterRoutes registers AI routes behind the given auth middleware.
func (h *AIHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/ai/follow-up", requireUser(http.HandlerFunc(h.FollowUp)))
	mux.Handle("POST /api/ai/payment", requireUser(http.HandlerFunc(h.Payment)))
}
