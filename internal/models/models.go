package models

import (
	"time"

	"github.com/abuildsit/borrowlog/internal/status"
)

// Loan represents one lending/borrowing relationship instance.
// Exactly one of BorrowerID/BorrowerContactID may be nil: the
// counterparty is either a registered user or a saved contact.
type Loan struct {
	ID                string        `json:"id"`
	OwnerID           string        `json:"owner_id"`
	BorrowerID        *string       `json:"borrower_id,omitempty"`
	BorrowerContactID *string       `json:"borrower_contact_id,omitempty"`
	ItemName          string        `json:"item_name"`
	Description       *string       `json:"description,omitempty"`
	PhotoURL          string        `json:"photo_url"`
	ReturnPhotoURL    *string       `json:"return_photo_url,omitempty"`
	Status            status.Status `json:"status"`
	IsLending         bool          `json:"is_lending"`
	DueDate           *time.Time    `json:"due_date,omitempty"`
	ReturnDate        *time.Time    `json:"return_date,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Contact is a counterparty record owned by one user. ContactID links
// to a registered user's id when the contact later signs up.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ContactID *string   `json:"contact_id,omitempty"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification types.
const (
	NotificationDueDate            = "due_date"
	NotificationReturnRequest      = "return_request"
	NotificationReturnConfirmation = "return_confirmation"
)

// Notification is an event record addressed to one recipient. Only the
// read flag is ever mutated after creation.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	SenderID    *string   `json:"sender_id,omitempty"`
	LoanID      *string   `json:"loan_id,omitempty"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile holds per-user display data, one per authenticated user.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName *string   `json:"display_name,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
