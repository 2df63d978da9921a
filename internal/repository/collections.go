package repository

import "github.com/abuildsit/borrowlog/internal/store"

// Collection names used with the store client.
const (
	CollectionLoans         = "loans"
	CollectionContacts      = "contacts"
	CollectionNotifications = "notifications"
	CollectionProfiles      = "profiles"
)

// Schemas describes every collection this application stores. Passed to
// the store client by the composition root.
var Schemas = []store.Schema{
	{
		Name:  CollectionLoans,
		Table: "loans",
		Columns: []string{
			"id", "owner_id", "borrower_id", "borrower_contact_id",
			"item_name", "description", "photo_url", "return_photo_url",
			"status", "is_lending", "due_date", "return_date",
			"created_at", "updated_at",
		},
		Required: []string{"owner_id", "item_name", "photo_url", "status"},
	},
	{
		Name:     CollectionContacts,
		Table:    "contacts",
		Columns:  []string{"id", "user_id", "contact_id", "name", "email", "phone", "created_at"},
		Required: []string{"user_id", "name"},
		References: []store.Reference{
			{Collection: CollectionLoans, Field: "borrower_contact_id"},
		},
	},
	{
		Name:     CollectionNotifications,
		Table:    "notifications",
		Columns:  []string{"id", "recipient_id", "sender_id", "loan_id", "type", "message", "is_read", "created_at"},
		Required: []string{"recipient_id", "type", "message"},
	},
	{
		Name:     CollectionProfiles,
		Table:    "profiles",
		Columns:  []string{"id", "display_name", "avatar_url", "created_at", "updated_at"},
		Required: []string{"id"},
	},
}
