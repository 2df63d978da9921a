package repository

import (
	"context"
	"fmt"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/store"
)

// ContactRepository handles store operations for contacts
type ContactRepository struct {
	store store.Client
}

// NewContactRepository creates a new contact repository
func NewContactRepository(st store.Client) *ContactRepository {
	return &ContactRepository{store: st}
}

// CreateContactParams are the caller-supplied fields for a new contact.
type CreateContactParams struct {
	UserID    string
	Name      string
	ContactID *string
	Email     *string
	Phone     *string
}

// ContactUpdate carries a partial update; nil fields are left unchanged.
type ContactUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// Create inserts a new contact owned by the given user.
func (r *ContactRepository) Create(ctx context.Context, p CreateContactParams) (*models.Contact, error) {
	rec := store.Record{
		"user_id": p.UserID,
		"name":    p.Name,
	}
	if p.ContactID != nil {
		rec["contact_id"] = *p.ContactID
	}
	if p.Email != nil {
		rec["email"] = *p.Email
	}
	if p.Phone != nil {
		rec["phone"] = *p.Phone
	}

	created, err := r.store.Create(ctx, CollectionContacts, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contactFromRecord(created), nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	rec, err := r.store.FetchOne(ctx, CollectionContacts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contactFromRecord(rec), nil
}

// ListForUser returns the contacts owned by a user.
func (r *ContactRepository) ListForUser(ctx context.Context, userID string) ([]models.Contact, error) {
	recs, err := r.store.FetchMany(ctx, CollectionContacts, map[string]any{"user_id": userID}, &store.Ordering{Column: "name"})
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	contacts := make([]models.Contact, len(recs))
	for i, rec := range recs {
		contacts[i] = *contactFromRecord(rec)
	}
	return contacts, nil
}

// Update applies a partial update to a contact.
func (r *ContactRepository) Update(ctx context.Context, id string, u ContactUpdate) (*models.Contact, error) {
	rec := store.Record{}
	if u.Name != nil {
		rec["name"] = *u.Name
	}
	if u.Email != nil {
		rec["email"] = *u.Email
	}
	if u.Phone != nil {
		rec["phone"] = *u.Phone
	}

	updated, err := r.store.Update(ctx, CollectionContacts, id, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contactFromRecord(updated), nil
}

// Delete removes a contact. A contact still referenced by a loan fails
// with a Constraint error; loans are never cascade-deleted.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteOne(ctx, CollectionContacts, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func contactFromRecord(rec store.Record) *models.Contact {
	return &models.Contact{
		ID:        asString(rec["id"]),
		UserID:    asString(rec["user_id"]),
		ContactID: asStringPtr(rec["contact_id"]),
		Name:      asString(rec["name"]),
		Email:     asStringPtr(rec["email"]),
		Phone:     asStringPtr(rec["phone"]),
		CreatedAt: asTime(rec["created_at"]),
	}
}
