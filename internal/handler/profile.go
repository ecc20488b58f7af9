package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"blenderforge/internal/domain"
	"blenderforge/internal/domain/models"
	"blenderforge/internal/domain/services"
	"blenderforge/internal/httputil"
)

// ProfileHandler handles creator profile HTTP requests
type ProfileHandler struct {
	profileService services.ProfileService
	logger         *slog.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService services.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GetProfile retrieves a public profile by username
// GET /api/profiles/{username}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetProfile(r.Context(), r.PathValue("username"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// GetOwnProfile retrieves the caller's profile, creating a stub on first access
// GET /api/profiles/me
func (h *ProfileHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.GetOwnProfile(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UpdateProfile applies a partial update to the caller's profile
// PUT /api/profiles/me
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}

// UpdateAvatar uploads a new avatar image
// POST /api/profiles/me/avatar
func (h *ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if !isMultipart(r) {
		httputil.RespondError(w, http.StatusBadRequest, "expected a multipart form with an avatar part")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxArticleFormBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	upload, err := formUpload(r, "avatar")
	if err != nil {
		handleError(w, err)
		return
	}
	if upload == nil {
		handleError(w, fmt.Errorf("%w: missing avatar part", domain.ErrValidation))
		return
	}

	profile, err := h.profileService.UpdateAvatar(r.Context(), userID, upload)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, profile)
}
