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

// ReminderHandler serves the daily reminder feed.
//
// Routes handled:
// - POST  /api/reminders           -> Create
// - GET   /api/reminders/today     -> ListToday
// - PATCH /api/reminders/{id}/done -> MarkDone
type ReminderHandler struct {
	reminderService service.ReminderService
	logger          *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService service.ReminderService, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		logger:          logger,
	}
}

type createReminderRequest struct {
	LeadID    string    `json:"leadId" validate:"required,uuid"`
	Note      string    `json:"note" validate:"omitempty,max=500"`
	TriggerAt time.Time `json:"triggerAt" validate:"required"`
}

type reminderResponse struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"leadId"`
	LeadName  string    `json:"leadName,omitempty"`
	Note      string    `json:"note,omitempty"`
	TriggerAt time.Time `json:"triggerAt"`
}

// Create handles POST /api/reminders.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req createReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("reminder.create", "leadId must be a valid UUID"))
		return
	}

	reminder, err := h.reminderService.Create(r.Context(), domain.CreateReminderParams{
		UserID:    user.ID,
		LeadID:    leadID,
		Note:      req.Note,
		TriggerAt: req.TriggerAt,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, reminderResponse{
		ID:        reminder.ID.String(),
		LeadID:    reminder.LeadID.String(),
		Note:      reminder.Note,
		TriggerAt: reminder.TriggerAt,
	})
}

// ListToday handles GET /api/reminders/today.
func (h *ReminderHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	reminders, err := h.reminderService.ListToday(r.Context(), user.ID, time.Now())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]reminderResponse, 0, len(reminders))
	for _, rem := range reminders {
		resp := reminderResponse{
			ID:        rem.ID.String(),
			LeadID:    rem.LeadID.String(),
			Note:      rem.Note,
			TriggerAt: rem.TriggerAt,
		}
		if rem.Lead != nil {
			resp.LeadName = rem.Lead.Name
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

// MarkDone handles PATCH /api/reminders/{id}/done.
func (h *ReminderHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("reminder.parse_id", "reminder id must be a valid UUID"))
		return
	}

	if err := h.reminderService.MarkDone(r.Context(), id, user.ID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// RegisterRoutes registers reminder routes behind the given auth middleware.
func (h *ReminderHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/reminders", requireUser(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/reminders/today", requireUser(http.HandlerFunc(h.ListToday)))
	mux.Handle("PATCH /api/reminders/{id}/done", requireUser(http.HandlerFunc(h.MarkDone)))
}
