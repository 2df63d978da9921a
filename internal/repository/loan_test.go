package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuildsit/borrowlog/internal/status"
	"github.com/abuildsit/borrowlog/internal/store"
)

func newTestStore() *store.MemoryClient {
	return store.NewMemoryClient(Schemas)
}

func strPtr(s string) *string { return &s }

func TestLoanCreateDefaults(t *testing.T) {
	repo := NewLoanRepository(newTestStore())
	ctx := context.Background()

	loan, err := repo.Create(ctx, CreateLoanParams{
		OwnerID:           "u1",
		BorrowerContactID: strPtr("c1"),
		ItemName:          "Drill",
		PhotoURL:          "x",
		IsLending:         true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, loan.ID)
	assert.Equal(t, status.Active, loan.Status)
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, "u1", loan.OwnerID)
	assert.Equal(t, "c1", *loan.BorrowerContactID)
	assert.False(t, loan.CreatedAt.IsZero())
}

func TestLoanCreateValidation(t *testing.T) {
	repo := NewLoanRepository(newTestStore())
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name   string
		params CreateLoanParams
	}{
		{
			name:   "no counterparty",
			params: CreateLoanParams{OwnerID: "u1", ItemName: "Drill", PhotoURL: "x"},
		},
		{
			name:   "missing item name",
			params: CreateLoanParams{OwnerID: "u1", BorrowerContactID: strPtr("c1"), PhotoURL: "x"},
		},
		{
			name:   "missing photo",
			params: CreateLoanParams{OwnerID: "u1", BorrowerContactID: strPtr("c1"), ItemName: "Drill"},
		},
		{
			name: "due date in the past",
			params: CreateLoanParams{
				OwnerID: "u1", BorrowerContactID: strPtr("c1"),
				ItemName: "Drill", PhotoURL: "x", DueDate: &past,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.params)
			assert.True(t, store.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestLoanReturnedRequiresReturnDate(t *testing.T) {
	repo := NewLoanRepository(newTestStore())
	ctx := context.Background()

	loan, err := repo.Create(ctx, CreateLoanParams{
		OwnerID: "u1", BorrowerContactID: strPtr("c1"), ItemName: "Drill", PhotoURL: "x",
	})
	require.NoError(t, err)

	returned := status.Returned
	_, err = repo.Update(ctx, loan.ID, LoanUpdate{Status: &returned})
	assert.True(t, store.IsValidation(err), "Returned without return_date must be rejected, got %v", err)

	// return_date alone is just as inconsistent
	now := time.Now()
	_, err = repo.Update(ctx, loan.ID, LoanUpdate{ReturnDate: &now})
	assert.True(t, store.IsValidation(err))
}

func TestLoanMarkReturnedOnce(t *testing.T) {
	repo := NewLoanRepository(newTestStore())
	ctx := context.Background()

	loan, err := repo.Create(ctx, CreateLoanParams{
		OwnerID: "u1", BorrowerID: strPtr("u2"), ItemName: "Drill", PhotoURL: "x",
	})
	require.NoError(t, err)

	returnDate := time.Now()
	returned, err := repo.MarkReturned(ctx, loan.ID, returnDate, strPtr("return.jpg"))
	require.NoError(t, err)
	assert.Equal(t, status.Returned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, "return.jpg", *returned.ReturnPhotoURL)

	_, err = repo.MarkReturned(ctx, loan.ID, returnDate, nil)
	assert.True(t, store.IsValidation(err), "second return must be rejected, got %v", err)

	active := status.Active
	_, err = repo.Update(ctx, loan.ID, LoanUpdate{Status: &active})
	assert.True(t, store.IsValidation(err), "leaving Returned must be rejected, got %v", err)
}

func TestLoanReadNormalizesLegacyStatus(t *testing.T) {
	st := newTestStore()
	repo := NewLoanRepository(st)
	ctx := context.Background()

	// Rows written by older versions of the app carry snake_case
	// statuses instead of codes.
	rec, err := st.Create(ctx, CollectionLoans, store.Record{
		"owner_id": "u1", "borrower_id": "u2",
		"item_name": "Ladder", "photo_url": "y",
		"status": "pending_return", "is_lending": true,
	})
	require.NoError(t, err)

	loan, err := repo.GetByID(ctx, rec["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, status.Active, loan.Status)
}

func TestLoanReadUnknownStatusSurfaces(t *testing.T) {
	st := newTestStore()
	repo := NewLoanRepository(st)
	ctx := context.Background()

	rec, err := st.Create(ctx, CollectionLoans, store.Record{
		"owner_id": "u1", "borrower_id": "u2",
		"item_name": "Ladder", "photo_url": "y",
		"status": "archived", "is_lending": true,
	})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, rec["id"].(string))
	assert.Equal(t, store.UnknownStatus, store.KindOf(err))
}

func TestLoanListForUser(t *testing.T) {
	repo := NewLoanRepository(newTestStore())
	ctx := context.Background()

	owned, err := repo.Create(ctx, CreateLoanParams{
		OwnerID: "u1", BorrowerContactID: strPtr("c1"), ItemName: "Drill", PhotoURL: "a", IsLending: true,
	})
	require.NoError(t, err)
	borrowed, err := repo.Create(ctx, CreateLoanParams{
		OwnerID: "u2", BorrowerID: strPtr("u1"), ItemName: "Ladder", PhotoURL: "b",
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateLoanParams{
		OwnerID: "u3", BorrowerID: strPtr("u2"), ItemName: "Saw", PhotoURL: "c",
	})
	require.NoError(t, err)

	loans, err := repo.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, loans, 2)

	ids := []string{loans[0].ID, loans[1].ID}
	assert.Contains(t, ids, owned.ID)
	assert.Contains(t, ids, borrowed.ID)

	// return_date iff Returned, for every record a read hands back
	for _, l := range loans {
		assert.Equal(t, l.Status == status.Returned, l.ReturnDate != nil)
	}
}
