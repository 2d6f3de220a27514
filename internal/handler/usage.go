package handler

import (
	"log/slog"
	"net/http"

	"github.com/ewaller/leadloop/internal/auth"
	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/service"
)

// UsageHandler serves the account's usage summary and plan changes.
//
// Routes handled:
// - GET  /api/usage           -> GetUsage
// - POST /api/usage/upgrade   -> Upgrade
// - POST /api/usage/downgrade -> Downgrade
type UsageHandler struct {
	usageService service.UsageService
	logger       *slog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usageService service.UsageService, logger *slog.Logger) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
		logger:       logger,
	}
}

// GetUsage handles GET /api/usage. The summary is recomputed on every
// call; there is no caching layer to go stale.
func (h *UsageHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	summary, err := h.usageService.SummaryFor(r.Context(), user)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Upgrade handles POST /api/usage/upgrade. Idempotent: upgrading an
// already-pro account succeeds.
func (h *UsageHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	h.setPlan(w, r, domain.PlanPro)
}

// Downgrade handles POST /api/usage/downgrade. The free limits apply
// immediately; existing data over the limit is kept but further creation
// is denied.
func (h *UsageHandler) Downgrade(w http.ResponseWriter, r *http.Request) {
	h.setPlan(w, r, domain.PlanFree)
}

func (h *UsageHandler) setPlan(w http.ResponseWriter, r *http.Request, plan domain.Plan) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if err := h.usageService.SetPlan(r.Context(), user.ID, plan); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	// Return the summary under the new plan so the client can refresh
	// its quota display in one round trip.
	summary, err := h.usageService.GetUsageSummary(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// RegisterRoutes registers usage routes behind the given auth middleware.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("GET /api/usage", requireUser(http.HandlerFunc(h.GetUsage)))
	mux.Handle("POST /api/usage/upgrade", requireUser(http.HandlerFunc(h.Upgrade)))
	mux.Handle("POST /api/usage/downgrade", requireUser(http.HandlerFunc(h.Downgrade)))
}
