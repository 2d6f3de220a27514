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

// LeadHandler handles lead CRUD requests.
//
// Routes handled:
// - POST  /api/leads             -> Create
// - GET   /api/leads             -> List
// - GET   /api/leads/{id}        -> Get
// - PUT   /api/leads/{id}        -> Update
// - PATCH /api/leads/{id}/status -> UpdateStatus
type LeadHandler struct {
	leadService service.LeadService
	logger      *slog.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadService service.LeadService, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// =============================================================================
// Request / Response Types
// =============================================================================

type createLeadRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"omitempty,max=200"`
	Notes   string `json:"notes" validate:"omitempty,max=2000"`
	Status  string `json:"status" validate:"omitempty,max=50"`
}

type updateLeadRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Contact *string `json:"contact" validate:"omitempty,max=200"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
	Status  *string `json:"status" validate:"omitempty,max=50"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

type leadResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Contact        string     `json:"contact,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func toLeadResponse(l *domain.Lead) leadResponse {
	return leadResponse{
		ID:             l.ID.String(),
		Name:           l.Name,
		Contact:        l.Contact,
		Notes:          l.Notes,
		Status:         l.Status,
		LastActivityAt: l.LastActivityAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// =============================================================================
// Handlers
// =============================================================================

// Create handles POST /api/leads. Denied with a 403 quota error when the
// free plan's lead limit is reached.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	var req createLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	lead, err := h.leadService.Create(r.Context(), domain.CreateLeadParams{
		UserID:  user.ID,
		Name:    req.Name,
		Contact: req.Contact,
		Notes:   req.Notes,
		Status:  req.Status,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toLeadResponse(lead))
}

// List handles GET /api/leads, newest first.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	leads, err := h.leadService.List(r.Context(), user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]leadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, toLeadResponse(&leads[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get handles GET /api/leads/{id}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, ok := leadIDFromPath(w, r, h.logger)
	if !ok {
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id, user.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toLeadResponse(lead))
}

// Update handles PUT /api/leads/{id}. Absent fields are left unchanged.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, ok := leadIDFromPath(w, r, h.logger)
	if !ok {
		return
	}

	var req updateLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	lead, err := h.leadService.Update(r.Context(), domain.UpdateLeadParams{
		ID:      id,
		UserID:  user.ID,
		Name:    req.Name,
		Contact: req.Contact,
		Notes:   req.Notes,
		Status:  req.Status,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toLeadResponse(lead))
}

// UpdateStatus handles PATCH /api/leads/{id}/status.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	id, ok := leadIDFromPath(w, r, h.logger)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	lead, err := h.leadService.UpdateStatus(r.Context(), id, user.ID, req.Status)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toLeadResponse(lead))
}

// RegisterRoutes registers lead routes behind the given auth middleware.
func (h *LeadHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/leads", requireUser(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/leads", requireUser(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/leads/{id}", requireUser(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/leads/{id}", requireUser(http.HandlerFunc(h.Update)))
	mux.Handle("PATCH /api/leads/{id}/status", requireUser(http.HandlerFunc(h.UpdateStatus)))
}

// leadIDFromPath parses the {id} path value, writing a 400 on failure.
func leadIDFromPath(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, logger, domain.Invalid("lead.parse_id", "lead id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
