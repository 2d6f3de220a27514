package handler

import (
	"log/slog"
	"net/http"

	"github.com/ewaller/leadloop/internal/domain"
	"github.com/ewaller/leadloop/internal/service"
)

// =============================================================================
// Session Cookie Configuration
// =============================================================================

// Session cookie constants. These match the values in middleware/auth.go;
// the middleware package imports handler for error responses, so handler
// cannot import middleware.
const (
	// sessionCookieName is the name of the cookie that stores the session token.
	sessionCookieName = "leadloop_session"

	// sessionCookiePath ensures the cookie is sent with all requests.
	sessionCookiePath = "/"

	// sessionCookieMaxAge sets the cookie expiration (7 days = 604800 seconds).
	sessionCookieMaxAge = 7 * 24 * 60 * 60
)

// =============================================================================
// Handler Configuration
// =============================================================================

// AuthHandler handles authentication-related HTTP requests.
//
// Routes handled:
// - POST /api/auth/register -> Register
// - POST /api/auth/login    -> Login
// - POST /api/auth/logout   -> Logout
type AuthHandler struct {
	userService service.UserService
	logger      *slog.Logger
	isSecure    bool
}

// NewAuthHandler creates a new AuthHandler.
//
// Set isSecure to true in production to enable the Secure cookie flag.
func NewAuthHandler(userService service.UserService, logger *slog.Logger, isSecure bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// =============================================================================
// Request / Response Types
// =============================================================================

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Plan  domain.Plan `json:"plan"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Plan:  u.Plan,
	}
}

// =============================================================================
// Handlers
// =============================================================================

// Register handles POST /api/auth/register. New accounts start on the
// free plan and are logged in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	user, err := h.userService.Register(r.Context(), domain.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusCreated, sessionResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ValidationErrorResponse(w, r, h.logger, err)
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	respondJSON(w, http.StatusOK, sessionResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Logout handles POST /api/auth/logout. Invalidates the session named by
// the bearer token or cookie; succeeds even if no session exists.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionTokenFromRequest(r); token != "" {
		if err := h.userService.Logout(r.Context(), token); err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
	}

	h.clearSessionCookie(w)
	respondJSON(w, http.StatusNoContent, nil)
}

// RegisterRoutes registers all auth routes on the provided ServeMux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
}

// =============================================================================
// Cookie and Token Helpers
// =============================================================================

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     sessionCookiePath,
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   h.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     sessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionTokenFromRequest extracts the raw session token from the
// Authorization header (preferred) or the session cookie.
func sessionTokenFromRequest(r *http.Request) string {
	const bearerPrefix = "Bearer "
	if authz := r.Header.Get("Authorization"); len(authz) > len(bearerPrefix) &&
		authz[:len(bearerPrefix)] == bearerPrefix {
		return authz[len(bearerPrefix):]
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
