// Package repository provides typed facades over the generic store
// client: each repository fixes one collection's name and field shape
// and canonicalizes status values on every read and write.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/status"
	"github.com/abuildsit/borrowlog/internal/store"
)

// LoanRepository handles store operations for loans
type LoanRepository struct {
	store store.Client
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(st store.Client) *LoanRepository {
	return &LoanRepository{store: st}
}

// CreateLoanParams are the caller-supplied fields for a new loan.
// Status is not one of them: every loan starts Active.
type CreateLoanParams struct {
	OwnerID           string
	BorrowerID        *string
	BorrowerContactID *string
	ItemName          string
	Description       *string
	PhotoURL          string
	IsLending         bool
	DueDate           *time.Time
}

// LoanUpdate carries a partial update; nil fields are left unchanged.
type LoanUpdate struct {
	ItemName       *string
	Description    *string
	DueDate        *time.Time
	Status         *status.Status
	ReturnDate     *time.Time
	ReturnPhotoURL *string
}

// Create inserts a new loan in Active status. A counterparty (either a
// registered borrower or a saved contact) and a photo are required, and
// the due date may not precede creation.
func (r *LoanRepository) Create(ctx context.Context, p CreateLoanParams) (*models.Loan, error) {
	if p.BorrowerID == nil && p.BorrowerContactID == nil {
		return nil, store.NewError(store.Validation, CollectionLoans, "a borrower or a borrower contact is required")
	}
	now := time.Now()
	if p.DueDate != nil && p.DueDate.Before(now) {
		return nil, store.NewError(store.Validation, CollectionLoans, "due_date may not precede creation")
	}

	rec := store.Record{
		"owner_id":   p.OwnerID,
		"item_name":  p.ItemName,
		"photo_url":  p.PhotoURL,
		"is_lending": p.IsLending,
		"status":     status.Active.Code(),
	}
	if p.BorrowerID != nil {
		rec["borrower_id"] = *p.BorrowerID
	}
	if p.BorrowerContactID != nil {
		rec["borrower_contact_id"] = *p.BorrowerContactID
	}
	if p.Description != nil {
		rec["description"] = *p.Description
	}
	if p.DueDate != nil {
		rec["due_date"] = *p.DueDate
	}

	created, err := r.store.Create(ctx, CollectionLoans, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}
	return loanFromRecord(created)
}

// GetByID retrieves a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	rec, err := r.store.FetchOne(ctx, CollectionLoans, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loanFromRecord(rec)
}

// ListForUser returns every loan where the user is the owner or the
// registered borrower. Contacts have no login identity, so
// borrower_contact_id never participates.
func (r *LoanRepository) ListForUser(ctx context.Context, userID string) ([]models.Loan, error) {
	order := &store.Ordering{Column: "created_at"}

	owned, err := r.store.FetchMany(ctx, CollectionLoans, map[string]any{"owner_id": userID}, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned loans: %w", err)
	}
	borrowed, err := r.store.FetchMany(ctx, CollectionLoans, map[string]any{"borrower_id": userID}, order)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowed loans: %w", err)
	}

	seen := make(map[string]bool, len(owned))
	loans := make([]models.Loan, 0, len(owned)+len(borrowed))
	for _, rec := range append(owned, borrowed...) {
		loan, err := loanFromRecord(rec)
		if err != nil {
			return nil, err
		}
		if seen[loan.ID] {
			continue
		}
		seen[loan.ID] = true
		loans = append(loans, *loan)
	}
	return loans, nil
}

// Update applies a partial update. The status/return_date pairing is
// enforced here: a loan becomes Returned only together with a return
// date, and a return date is meaningless on any other status.
func (r *LoanRepository) Update(ctx context.Context, id string, u LoanUpdate) (*models.Loan, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := store.Record{}
	if u.ItemName != nil {
		rec["item_name"] = *u.ItemName
	}
	if u.Description != nil {
		rec["description"] = *u.Description
	}
	if u.DueDate != nil {
		rec["due_date"] = *u.DueDate
	}
	if u.ReturnPhotoURL != nil {
		rec["return_photo_url"] = *u.ReturnPhotoURL
	}

	if u.Status != nil {
		next, err := status.Normalize(*u.Status)
		if err != nil {
			return nil, store.WrapError(store.UnknownStatus, CollectionLoans, err)
		}
		// Returned is terminal: no transition out, and no second return.
		if current.Status == status.Returned {
			return nil, store.NewError(store.Validation, CollectionLoans, "loan %s is already returned", id)
		}
		switch next {
		case status.Returned:
			if u.ReturnDate == nil && current.ReturnDate == nil {
				return nil, store.NewError(store.Validation, CollectionLoans, "return_date is required to mark a loan returned")
			}
		case status.Overdue:
			// Overdue is derived from the due date, never persisted.
			next = status.Active
		}
		rec["status"] = next.Code()
		if next != status.Returned {
			rec["return_date"] = nil
		}
	}
	if u.ReturnDate != nil {
		effective := current.Status
		if u.Status != nil {
			effective = *u.Status
		}
		if effective != status.Returned {
			return nil, store.NewError(store.Validation, CollectionLoans, "return_date is only valid on a returned loan")
		}
		rec["return_date"] = *u.ReturnDate
	}

	updated, err := r.store.Update(ctx, CollectionLoans, id, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}
	return loanFromRecord(updated)
}

// MarkReturned transitions a loan to Returned exactly once.
func (r *LoanRepository) MarkReturned(ctx context.Context, id string, returnDate time.Time, returnPhotoURL *string) (*models.Loan, error) {
	returned := status.Returned
	return r.Update(ctx, id, LoanUpdate{
		Status:         &returned,
		ReturnDate:     &returnDate,
		ReturnPhotoURL: returnPhotoURL,
	})
}

// Delete removes a loan by ID
func (r *LoanRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteOne(ctx, CollectionLoans, id); err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return nil
}

// loanFromRecord builds a Loan from a store record, canonicalizing the
// stored status. An unmapped status surfaces as an error rather than
// defaulting; masking lifecycle state is worse than failing the read.
func loanFromRecord(rec store.Record) (*models.Loan, error) {
	st, err := status.Normalize(rec["status"])
	if err != nil {
		return nil, store.WrapError(store.UnknownStatus, CollectionLoans, err)
	}
	return &models.Loan{
		ID:                asString(rec["id"]),
		OwnerID:           asString(rec["owner_id"]),
		BorrowerID:        asStringPtr(rec["borrower_id"]),
		BorrowerContactID: asStringPtr(rec["borrower_contact_id"]),
		ItemName:          asString(rec["item_name"]),
		Description:       asStringPtr(rec["description"]),
		PhotoURL:          asString(rec["photo_url"]),
		ReturnPhotoURL:    asStringPtr(rec["return_photo_url"]),
		Status:            st,
		IsLending:         asBool(rec["is_lending"]),
		DueDate:           asTimePtr(rec["due_date"]),
		ReturnDate:        asTimePtr(rec["return_date"]),
		CreatedAt:         asTime(rec["created_at"]),
		UpdatedAt:         asTime(rec["updated_at"]),
	}, nil
}
