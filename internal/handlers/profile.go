package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/abuildsit/borrowlog/internal/middleware"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/services"
	"github.com/abuildsit/borrowlog/internal/store"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRequest is the request body for creating or updating a profile
type ProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profileService.Get(ctx, userID)
	if err != nil {
		if !store.IsNotFound(err) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		}
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// CreateProfile handles POST /api/v1/profile (first login)
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.Register(ctx, userID, req.DisplayName)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create profile")
		respondStoreError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("Profile created")
	respondJSON(w, http.StatusCreated, profile)
}

// UpdateProfile handles PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.Update(ctx, userID, repository.ProfileUpdate{DisplayName: req.DisplayName})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateAvatar handles POST /api/v1/profile/avatar (multipart: photo)
func (h *ProfileHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		respondError(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	image, contentType, err := readPhoto(r, "photo")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.profileService.UpdateAvatar(ctx, userID, image, contentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update avatar")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}
