package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"momentary/internal/service"
)

// AdminHandler exposes owner-only web account administration
type AdminHandler struct {
	accountService *service.AccountService
	ownerID        int64
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountService *service.AccountService, ownerID int64) *AdminHandler {
	return &AdminHandler{accountService: accountService, ownerID: ownerID}
}

// RequireOwner restricts a handler to the bot owner's session
func (h *AdminHandler) RequireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		telegramID, ok := GetTelegramIDFromContext(r.Context())
		if !ok || telegramID != h.ownerID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// CreateAccount registers a new web account
func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.accountService.Create(req.Username, req.Password, req.IsAdmin)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		http.Error(w, "Username is already taken", http.StatusConflict)
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, "Failed to create account", "Failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       account.ID,
		"username": account.Username,
		"is_admin": account.IsAdmin,
	})
}

// ListAccounts returns all web accounts with photo counts
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListWithPhotoCounts()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list accounts", "Failed to list accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// SetAccountBanned flips an account's banned flag
func (h *AdminHandler) SetAccountBanned(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.accountService.SetBanned(accountID, req.Banned); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update account", "Failed to update account", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": accountID, "banned": req.Banned})
}
