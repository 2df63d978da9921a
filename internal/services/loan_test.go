package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/repository"
	"github.com/abuildsit/borrowlog/internal/status"
	"github.com/abuildsit/borrowlog/internal/store"
)

type fakeUploader struct {
	uploads int
	fail    bool
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if f.fail {
		return "", store.NewError(store.Transport, "blob", "bucket unreachable")
	}
	f.uploads++
	return "https://blob.test/" + key, nil
}

type fixture struct {
	store         *store.MemoryClient
	loans         *LoanService
	contacts      *ContactService
	notifications *NotificationService
	uploader      *fakeUploader
}

func newFixture() *fixture {
	st := store.NewMemoryClient(repository.Schemas)
	uploader := &fakeUploader{}
	notifications := NewNotificationService(repository.NewNotificationRepository(st), nil)
	contactRepo := repository.NewContactRepository(st)
	return &fixture{
		store:         st,
		loans:         NewLoanService(repository.NewLoanRepository(st), contactRepo, notifications, uploader),
		contacts:      NewContactService(contactRepo),
		notifications: notifications,
		uploader:      uploader,
	}
}

func strPtr(s string) *string { return &s }

func TestLoanCreateUploadsPhoto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	contact, err := f.contacts.Create(ctx, "u1", "Alex", nil, nil)
	require.NoError(t, err)

	loan, err := f.loans.Create(ctx, "u1", CreateLoanInput{
		ItemName:          "Drill",
		BorrowerContactID: &contact.ID,
		IsLending:         true,
		Photo:             []byte("jpeg-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, status.Active, loan.Status)
	assert.Contains(t, loan.PhotoURL, "https://blob.test/loans/")
	assert.Equal(t, 1, f.uploader.uploads)
}

func TestLoanCreateRequiresPhoto(t *testing.T) {
	f := newFixture()

	_, err := f.loans.Create(context.Background(), "u1", CreateLoanInput{
		ItemName:   "Drill",
		BorrowerID: strPtr("u2"),
	})
	assert.True(t, store.IsValidation(err))
	assert.Zero(t, f.uploader.uploads)
}

func TestLoanCreateRejectsForeignContact(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	contact, err := f.contacts.Create(ctx, "someone-else", "Alex", nil, nil)
	require.NoError(t, err)

	_, err = f.loans.Create(ctx, "u1", CreateLoanInput{
		ItemName:          "Drill",
		BorrowerContactID: &contact.ID,
		Photo:             []byte("x"),
	})
	assert.True(t, store.IsPermission(err))
}

func TestLoanCreateUploadFailure(t *testing.T) {
	f := newFixture()
	f.uploader.fail = true

	_, err := f.loans.Create(context.Background(), "u1", CreateLoanInput{
		ItemName:   "Drill",
		BorrowerID: strPtr("u2"),
		Photo:      []byte("x"),
	})
	assert.Equal(t, store.Transport, store.KindOf(err))
}

func TestLoanVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	loan, err := f.loans.Create(ctx, "u1", CreateLoanInput{
		ItemName:   "Drill",
		BorrowerID: strPtr("u2"),
		Photo:      []byte("x"),
	})
	require.NoError(t, err)

	_, err = f.loans.Get(ctx, "u1", loan.ID)
	assert.NoError(t, err)
	_, err = f.loans.Get(ctx, "u2", loan.ID)
	assert.NoError(t, err, "the registered borrower may read the loan")
	_, err = f.loans.Get(ctx, "u3", loan.ID)
	assert.True(t, store.IsPermission(err))
}

func TestMarkReturnedNotifiesBorrower(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	loan, err := f.loans.Create(ctx, "u1", CreateLoanInput{
		ItemName:   "Drill",
		BorrowerID: strPtr("u2"),
		IsLending:  true,
		Photo:      []byte("x"),
	})
	require.NoError(t, err)

	_, err = f.loans.MarkReturned(ctx, "u2", loan.ID, nil, "")
	assert.True(t, store.IsPermission(err), "only the owner closes the loan")

	returned, err := f.loans.MarkReturned(ctx, "u1", loan.ID, []byte("back"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, status.Returned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	require.NotNil(t, returned.ReturnPhotoURL)

	ns, err := f.notifications.List(ctx, "u2", true)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, models.NotificationReturnConfirmation, ns[0].Type)
	assert.Equal(t, loan.ID, *ns[0].LoanID)

	_, err = f.loans.MarkReturned(ctx, "u1", loan.ID, nil, "")
	assert.True(t, store.IsValidation(err), "a loan is returned exactly once")
}

func TestRequestReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	loan, err := f.loans.Create(ctx, "u1", CreateLoanInput{
		ItemName:   "Ladder",
		BorrowerID: strPtr("u2"),
		IsLending:  true,
		Photo:      []byte("x"),
	})
	require.NoError(t, err)

	// owner asks the borrower
	n, err := f.loans.RequestReturn(ctx, "u1", loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", n.RecipientID)
	assert.Equal(t, models.NotificationReturnRequest, n.Type)

	// borrower offers the item back to the owner
	n, err = f.loans.RequestReturn(ctx, "u2", loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", n.RecipientID)

	_, err = f.loans.RequestReturn(ctx, "u3", loan.ID)
	assert.True(t, store.IsPermission(err))
}

func TestRequestReturnContactCounterparty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	contact, err := f.contacts.Create(ctx, "u1", "Alex", nil, nil)
	require.NoError(t, err)
	loan, err := f.loans.Create(ctx, "u1", CreateLoanInput{
		ItemName:          "Saw",
		BorrowerContactID: &contact.ID,
		IsLending:         true,
		Photo:             []byte("x"),
	})
	require.NoError(t, err)

	_, err = f.loans.RequestReturn(ctx, "u1", loan.ID)
	assert.True(t, store.IsValidation(err), "contacts have no account to notify")
}

func TestNotificationOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	n, err := f.notifications.Notify(ctx, repository.CreateNotificationParams{
		RecipientID: "u1",
		Type:        models.NotificationDueDate,
		Message:     "drill is due tomorrow",
	})
	require.NoError(t, err)

	_, err = f.notifications.MarkRead(ctx, "u2", n.ID)
	assert.True(t, store.IsPermission(err))

	read, err := f.notifications.MarkRead(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.notifications.Notify(ctx, repository.CreateNotificationParams{
			RecipientID: "u1",
			Type:        models.NotificationDueDate,
			Message:     fmt.Sprintf("reminder %d", i),
		})
		require.NoError(t, err)
	}

	count, err := f.notifications.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	unread, err := f.notifications.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
