package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/abuildsit/borrowlog/internal/filter"
	"github.com/abuildsit/borrowlog/internal/middleware"
	"github.com/abuildsit/borrowlog/internal/services"
	"github.com/abuildsit/borrowlog/internal/status"
)

const maxPhotoBytes = 10 << 20 // 10 MiB

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService *services.LoanService
	filter      filter.Engine
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		filter:      filter.Engine{},
	}
}

// ListLoans handles GET /api/v1/loans?status=active,overdue&direction=lending
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	statusSet, err := parseStatusSet(r.URL.Query().Get("status"))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	direction, ok := filter.ParseDirection(r.URL.Query().Get("direction"))
	if !ok {
		respondError(w, "direction must be all, lending or borrowing", http.StatusBadRequest)
		return
	}

	loans, err := h.loanService.List(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list loans")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"loans": h.filter.Apply(loans, statusSet, direction),
		"total": len(loans),
	})
}

// GetLoan handles GET /api/v1/loans/{loan_id}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	loanID := chi.URLParam(r, "loan_id")

	loan, err := h.loanService.Get(ctx, userID, loanID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("loan_id", loanID).Msg("Failed to get loan")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, loan)
}

// CreateLoan handles POST /api/v1/loans (multipart: fields + photo)
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		respondError(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	in := services.CreateLoanInput{
		ItemName:          r.FormValue("item_name"),
		Description:       optionalFormValue(r, "description"),
		BorrowerID:        optionalFormValue(r, "borrower_id"),
		BorrowerContactID: optionalFormValue(r, "borrower_contact_id"),
	}
	if in.ItemName == "" {
		respondError(w, "item_name is required", http.StatusBadRequest)
		return
	}
	if v := r.FormValue("is_lending"); v != "" {
		lending, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, "is_lending must be a boolean", http.StatusBadRequest)
			return
		}
		in.IsLending = lending
	}
	if v := r.FormValue("due_date"); v != "" {
		due, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, "due_date must be RFC 3339", http.StatusBadRequest)
			return
		}
		in.DueDate = &due
	}

	photo, contentType, err := readPhoto(r, "photo")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	in.Photo = photo
	in.PhotoContentType = contentType

	loan, err := h.loanService.Create(ctx, userID, in)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("item_name", in.ItemName).Msg("Failed to create loan")
		respondStoreError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("loan_id", loan.ID).
		Bool("is_lending", loan.IsLending).
		Msg("Loan created")

	respondJSON(w, http.StatusCreated, loan)
}

// ReturnLoan handles POST /api/v1/loans/{loan_id}/return
func (h *LoanHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	loanID := chi.URLParam(r, "loan_id")

	var photo []byte
	var contentType string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			respondError(w, "Invalid multipart body", http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("photo"); err == nil {
			photo, contentType, err = readPhoto(r, "photo")
			if err != nil {
				respondError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	loan, err := h.loanService.MarkReturned(ctx, userID, loanID, photo, contentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("loan_id", loanID).Msg("Failed to mark loan returned")
		respondStoreError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("loan_id", loanID).Msg("Loan returned")
	respondJSON(w, http.StatusOK, loan)
}

// RequestReturn handles POST /api/v1/loans/{loan_id}/return-request
func (h *LoanHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	loanID := chi.URLParam(r, "loan_id")

	notification, err := h.loanService.RequestReturn(ctx, userID, loanID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("loan_id", loanID).Msg("Failed to request return")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, notification)
}

// DeleteLoan handles DELETE /api/v1/loans/{loan_id}
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	loanID := chi.URLParam(r, "loan_id")

	if err := h.loanService.Delete(ctx, userID, loanID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("loan_id", loanID).Msg("Failed to delete loan")
		respondStoreError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("loan_id", loanID).Msg("Loan deleted")
	w.WriteHeader(http.StatusNoContent)
}

// parseStatusSet turns "active,overdue" into a StatusSet; the empty
// string selects every status.
func parseStatusSet(raw string) (filter.StatusSet, error) {
	if raw == "" {
		return filter.NewStatusSet(), nil
	}
	var statuses []status.Status
	for _, token := range strings.Split(raw, ",") {
		s, err := status.Normalize(strings.TrimSpace(token))
		if err != nil {
			return filter.StatusSet{}, err
		}
		statuses = append(statuses, s)
	}
	return filter.NewStatusSet(statuses...), nil
}

func optionalFormValue(r *http.Request, field string) *string {
	if v := r.FormValue(field); v != "" {
		return &v
	}
	return nil
}

func readPhoto(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}
