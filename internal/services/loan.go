package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abuildsit/borrowlog/internal/blob"
	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/store"
)

// LoanService handles loan-related business logic
type LoanService struct {
	loanRepo      *repository.LoanRepository
	contactRepo   *repository.ContactRepository
	notifications *NotificationService
	blob          blob.Uploader
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo *repository.LoanRepository,
	contactRepo *repository.ContactRepository,
	notifications *NotificationService,
	uploader blob.Uploader,
) *LoanService {
	return &LoanService{
		loanRepo:      loanRepo,
		contactRepo:   contactRepo,
		notifications: notifications,
		blob:          uploader,
	}
}

// CreateLoanInput is the caller-facing shape of a new loan. The photo
// comes in as bytes and leaves as a blob-store URL.
type CreateLoanInput struct {
	ItemName          string
	Description       *string
	BorrowerID        *string
	BorrowerContactID *string
	IsLending         bool
	DueDate           *time.Time
	Photo             []byte
	PhotoContentType  string
}

// Create records a new loan for the user. The item photo is required
// at creation and is uploaded before the record is written, so a loan
// never exists without its photo.
func (s *LoanService) Create(ctx context.Context, userID string, in CreateLoanInput) (*models.Loan, error) {
	if len(in.Photo) == 0 {
		return nil, store.NewError(store.Validation, repository.CollectionLoans, "a photo of the item is required")
	}
	if in.BorrowerContactID != nil {
		contact, err := s.contactRepo.GetByID(ctx, *in.BorrowerContactID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve borrower contact: %w", err)
		}
		if contact.UserID != userID {
			return nil, store.NewError(store.Permission, repository.CollectionContacts, "contact %s does not belong to user", contact.ID)
		}
	}

	photoURL, err := s.blob.Upload(ctx, photoKey("loans"), contentTypeOrJPEG(in.PhotoContentType), in.Photo)
	if err != nil {
		return nil, fmt.Errorf("failed to upload loan photo: %w", err)
	}

	return s.loanRepo.Create(ctx, repository.CreateLoanParams{
		OwnerID:           userID,
		BorrowerID:        in.BorrowerID,
		BorrowerContactID: in.BorrowerContactID,
		ItemName:          in.ItemName,
		Description:       in.Description,
		PhotoURL:          photoURL,
		IsLending:         in.IsLending,
		DueDate:           in.DueDate,
	})
}

// Get returns a loan if the user is its owner or registered borrower.
func (s *LoanService) Get(ctx context.Context, userID, loanID string) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !canRead(loan, userID) {
		return nil, store.NewError(store.Permission, repository.CollectionLoans, "loan %s is not visible to user", loanID)
	}
	return loan, nil
}

// List returns every loan the user participates in.
func (s *LoanService) List(ctx context.Context, userID string) ([]models.Loan, error) {
	return s.loanRepo.ListForUser(ctx, userID)
}

// MarkReturned closes the loan: the owner records the return date and,
// optionally, a photo of the returned item. The registered counterparty
// gets a return confirmation.
func (s *LoanService) MarkReturned(ctx context.Context, userID, loanID string, returnPhoto []byte, contentType string) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.OwnerID != userID {
		return nil, store.NewError(store.Permission, repository.CollectionLoans, "only the owner may mark loan %s returned", loanID)
	}

	var returnPhotoURL *string
	if len(returnPhoto) > 0 {
		url, err := s.blob.Upload(ctx, photoKey("returns"), contentTypeOrJPEG(contentType), returnPhoto)
		if err != nil {
			return nil, fmt.Errorf("failed to upload return photo: %w", err)
		}
		returnPhotoURL = &url
	}

	returned, err := s.loanRepo.MarkReturned(ctx, loanID, time.Now(), returnPhotoURL)
	if err != nil {
		return nil, err
	}

	if returned.BorrowerID != nil {
		_, err := s.notifications.Notify(ctx, repository.CreateNotificationParams{
			RecipientID: *returned.BorrowerID,
			SenderID:    &userID,
			LoanID:      &returned.ID,
			Type:        models.NotificationReturnConfirmation,
			Message:     fmt.Sprintf("%q was marked returned", returned.ItemName),
		})
		if err != nil {
			// the loan is already closed; the notification is advisory
			return returned, nil
		}
	}
	return returned, nil
}

// RequestReturn asks the other party of the loan to arrange the return.
func (s *LoanService) RequestReturn(ctx context.Context, userID, loanID string) (*models.Notification, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !canRead(loan, userID) {
		return nil, store.NewError(store.Permission, repository.CollectionLoans, "loan %s is not visible to user", loanID)
	}

	recipient := loan.OwnerID
	if userID == loan.OwnerID {
		if loan.BorrowerID == nil {
			return nil, store.NewError(store.Validation, repository.CollectionLoans, "the counterparty of loan %s has no account to notify", loanID)
		}
		recipient = *loan.BorrowerID
	}

	return s.notifications.Notify(ctx, repository.CreateNotificationParams{
		RecipientID: recipient,
		SenderID:    &userID,
		LoanID:      &loan.ID,
		Type:        models.NotificationReturnRequest,
		Message:     fmt.Sprintf("Return requested for %q", loan.ItemName),
	})
}

// Delete removes a loan. Owner only.
func (s *LoanService) Delete(ctx context.Context, userID, loanID string) error {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return err
	}
	if loan.OwnerID != userID {
		return store.NewError(store.Permission, repository.CollectionLoans, "only the owner may delete loan %s", loanID)
	}
	return s.loanRepo.Delete(ctx, loanID)
}

func canRead(loan *models.Loan, userID string) bool {
	if loan.OwnerID == userID {
		return true
	}
	return loan.BorrowerID != nil && *loan.BorrowerID == userID
}

func photoKey(prefix string) string {
	return fmt.Sprintf("%s/%s.jpg", prefix, uuid.New().String())
}

func contentTypeOrJPEG(ct string) string {
	if ct == "" {
		return "image/jpeg"
	}
	return ct
}
