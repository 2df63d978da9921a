package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/abuildsit/borrowlog/internal/middleware"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/services"
)

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRequest is the request body for creating or updating a contact
type ContactRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ListContacts handles GET /api/v1/contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	contacts, err := h.contactService.List(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list contacts")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// CreateContact handles POST /api/v1/contacts
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}

	contact, err := h.contactService.Create(ctx, userID, req.Name, req.Email, req.Phone)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create contact")
		respondStoreError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("contact_id", contact.ID).Msg("Contact created")
	respondJSON(w, http.StatusCreated, contact)
}

// UpdateContact handles PUT /api/v1/contacts/{contact_id}
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	contactID := chi.URLParam(r, "contact_id")

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := repository.ContactUpdate{Email: req.Email, Phone: req.Phone}
	if req.Name != "" {
		update.Name = &req.Name
	}

	contact, err := h.contactService.Update(ctx, userID, contactID, update)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("contact_id", contactID).Msg("Failed to update contact")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/v1/contacts/{contact_id}
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	contactID := chi.URLParam(r, "contact_id")

	if err := h.contactService.Delete(ctx, userID, contactID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("contact_id", contactID).Msg("Failed to delete contact")
		respondStoreError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("contact_id", contactID).Msg("Contact deleted")
	w.WriteHeader(http.StatusNoContent)
}
