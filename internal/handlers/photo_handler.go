package handlers

import (
	"net/http"
	"strconv"

	"momentary/internal/service"
)

// PhotoHandler serves photo listings
type PhotoHandler struct {
	photoService *service.PhotoService
	ownerID      int64
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *service.PhotoService, ownerID int64) *PhotoHandler {
	return &PhotoHandler{photoService: photoService, ownerID: ownerID}
}

// ListPhotos returns a user's photos with presigned URLs. Sessions may
// only read their own photos; the bot owner may read anyone's.
func (h *PhotoHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetTelegramIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	telegramID, err := strconv.ParseInt(r.PathValue("telegramID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	if sessionID != telegramID && sessionID != h.ownerID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	photos, err := h.photoService.ListForTelegramID(r.Context(), telegramID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list photos", "Failed to list photos", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":   telegramID,
		"photos": photos,
	})
}
