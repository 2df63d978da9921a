package services

import (
	"context"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/store"
)

// ContactService handles contact-related business logic
type ContactService struct {
	contactRepo *repository.ContactRepository
}

// NewContactService creates a new contact service
func NewContactService(contactRepo *repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

// List returns the user's contacts.
func (s *ContactService) List(ctx context.Context, userID string) ([]models.Contact, error) {
	return s.contactRepo.ListForUser(ctx, userID)
}

// Create adds a contact owned by the user.
func (s *ContactService) Create(ctx context.Context, userID string, name string, email, phone *string) (*models.Contact, error) {
	return s.contactRepo.Create(ctx, repository.CreateContactParams{
		UserID: userID,
		Name:   name,
		Email:  email,
		Phone:  phone,
	})
}

// Update applies a partial update to one of the user's contacts.
func (s *ContactService) Update(ctx context.Context, userID, contactID string, u repository.ContactUpdate) (*models.Contact, error) {
	if err := s.checkOwner(ctx, userID, contactID); err != nil {
		return nil, err
	}
	return s.contactRepo.Update(ctx, contactID, u)
}

// Delete removes one of the user's contacts. A contact still referenced
// by a loan stays: the constraint error is passed through untouched.
func (s *ContactService) Delete(ctx context.Context, userID, contactID string) error {
	if err := s.checkOwner(ctx, userID, contactID); err != nil {
		return err
	}
	return s.contactRepo.Delete(ctx, contactID)
}

func (s *ContactService) checkOwner(ctx context.Context, userID, contactID string) error {
	contact, err := s.contactRepo.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if contact.UserID != userID {
		return store.NewError(store.Permission, repository.CollectionContacts, "contact %s does not belong to user", contactID)
	}
	return nil
}
