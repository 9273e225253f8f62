package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/auth"
	"github.com/hiroyoshii/twitter-clone-api/internal/monitoring"
	"github.com/hiroyoshii/twitter-clone-api/internal/service"
)

// AuthHandler serves registration, login, logout and the current-user
// lookup.
//
// SESSION COOKIE:
// The JWT never appears in a response body. Login stores it in an
// HttpOnly cookie, so browser JavaScript can never read it and an XSS
// bug can't exfiltrate the session. The cookie is:
//   - HttpOnly: JavaScript can't read it
//   - Secure: only sent over HTTPS
//   - SameSite=Lax: not sent on cross-site POSTs (CSRF protection)
//   - MaxAge = session TTL: browser and token expire together
type AuthHandler struct {
	authService *service.AuthService
	cookieName  string
	cookieTTL   int // seconds
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. cookieName and sessions come
// from config so tests and deployments can vary them.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionService, cookieName string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieName:  cookieName,
		cookieTTL:   int(sessions.TTL().Seconds()),
		logger:      logger,
	}
}

// registerRequest mirrors the registration body. Optional profile fields
// decode to nil pointers when absent.
type registerRequest struct {
	Email            string  `json:"e_mail"`
	Password         string  `json:"password"`
	UserID           string  `json:"user_id"`
	UserName         string  `json:"user_name"`
	PhoneNumber      *string `json:"phone_number"`
	SelfIntroduction *string `json:"self_introduction"`
	Place            *string `json:"place"`
	Birthday         *string `json:"birthday"`
	ProfileImg       *string `json:"profile_img"`
	AvatarImg        *string `json:"avatar_img"`
}

type loginRequest struct {
	Email    string `json:"e_mail"`
	Password string `json:"password"`
}

// messageResponse is the minimal `{"message": ...}` body used by login,
// logout and the root welcome endpoint.
type messageResponse struct {
	Message string `json:"message"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"e_mail":..., "password":..., "user_id":..., "user_name":..., ...}
//
// Returns the created user record. The PasswordHash field carries a
// `json:"-"` tag, so the hash can never leak into this response.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		UserID:           req.UserID,
		UserName:         req.UserName,
		PhoneNumber:      req.PhoneNumber,
		SelfIntroduction: req.SelfIntroduction,
		Place:            req.Place,
		Birthday:         req.Birthday,
		ProfileImg:       req.ProfileImg,
		AvatarImg:        req.AvatarImg,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	monitoring.RegisterSuccess.Inc()
	writeJSON(w, http.StatusOK, user)
}

// HandleLogin authenticates and establishes a session.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"e_mail":..., "password":...}
//
// On success the session JWT goes into the cookie; the body only says
// the login worked. Unknown e-mail and wrong password produce identical
// 401 responses.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	_, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		reason := "internal"
		if errors.Is(err, apperror.ErrUnauthorized) {
			reason = "bad_credentials"
		}
		monitoring.LoginFailure.WithLabelValues(reason).Inc()
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.cookieTTL,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	monitoring.LoginSuccess.Inc()
	writeJSON(w, http.StatusOK, messageResponse{Message: "login successful"})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Logout is stateless: the server keeps no session table, so "logging
// out" means telling the browser to drop the cookie. A captured token
// stays valid until its expiry; that trade-off is why the TTL is bounded.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "logout successful"})
}

// HandleMe returns the authenticated user's own record.
//
// HTTP: GET /auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// RequireAuth guards this route; reaching here without a user
		// means a routing mistake, not a client error.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
