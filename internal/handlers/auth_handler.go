package handlers

import (
	"errors"
	"net/http"
	"time"

	"momentary/internal/security"
	"momentary/internal/service"
)

// AuthHandler handles Telegram login, logout, and session introspection
type AuthHandler struct {
	authService  *service.AuthService
	participants *service.ParticipantService
	redirectURL  string
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, participants *service.ParticipantService, redirectURL string, sessionTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		participants: participants,
		redirectURL:  redirectURL,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// TelegramCallback verifies a Telegram login widget assertion and starts
// a session
func (h *AuthHandler) TelegramCallback(w http.ResponseWriter, r *http.Request) {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	token, _, err := h.authService.Login(params)
	switch {
	case errors.Is(err, service.ErrLoginFailed):
		respondWithError(w, http.StatusUnauthorized, "Invalid Telegram login payload", "", nil)
		return
	case errors.Is(err, service.ErrBanned):
		respondWithError(w, http.StatusForbidden, "Banned", "", nil)
		return
	case errors.Is(err, service.ErrRegistrationsClosed):
		respondWithError(w, http.StatusForbidden, "Registrations are closed", "", nil)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, "Login failed", "Telegram login failed", err)
		return
	}

	expires := time.Now().Add(h.sessionTTL)
	http.SetCookie(w, security.CreateSessionCookie(token, expires, h.cookieSecure))
	http.Redirect(w, r, h.redirectURL, http.StatusFound)
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(h.cookieSecure))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Me returns the logged-in user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	telegramID, ok := GetTelegramIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	participant, _, _, err := h.participants.Lookup(telegramID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load user", "Failed to load user", err)
		return
	}
	if participant == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"telegram_id": participant.TelegramID,
		"username":    participant.Username,
		"created_at":  participant.CreatedAt,
	})
}
