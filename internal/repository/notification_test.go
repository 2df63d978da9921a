package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuildsit/borrowlog/internal/models"
	"github.com/abuildsit/borrowlog/internal/store"
)

func TestNotificationCreateAndMarkRead(t *testing.T) {
	repo := NewNotificationRepository(newTestStore())
	ctx := context.Background()

	n, err := repo.Create(ctx, CreateNotificationParams{
		RecipientID: "u1",
		SenderID:    strPtr("u2"),
		LoanID:      strPtr("l1"),
		Type:        models.NotificationReturnRequest,
		Message:     "u2 asked for the drill back",
	})
	require.NoError(t, err)
	assert.False(t, n.IsRead)

	read, err := repo.MarkRead(ctx, n.ID, true)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = repo.MarkRead(ctx, "missing", true)
	assert.True(t, store.IsNotFound(err))
}

func TestNotificationCreateUnknownType(t *testing.T) {
	repo := NewNotificationRepository(newTestStore())

	_, err := repo.Create(context.Background(), CreateNotificationParams{
		RecipientID: "u1",
		Type:        "marketing",
		Message:     "hello",
	})
	assert.True(t, store.IsValidation(err))
}

func TestNotificationListNewestFirst(t *testing.T) {
	st := newTestStore()
	repo := NewNotificationRepository(st)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		_, err := st.Create(ctx, CollectionNotifications, store.Record{
			"recipient_id": "u1",
			"type":         models.NotificationDueDate,
			"message":      msg,
			"is_read":      i == 0,
			"created_at":   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	all, err := repo.ListForRecipient(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.Equal(t, "first", all[2].Message)

	unread, err := repo.ListForRecipient(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	for _, n := range unread {
		assert.False(t, n.IsRead)
	}
}

func TestProfileLifecycle(t *testing.T) {
	repo := NewProfileRepository(newTestStore())
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	assert.True(t, store.IsNotFound(err))

	p, err := repo.Create(ctx, "u1", strPtr("Sam"))
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "Sam", *p.DisplayName)

	// one profile per user
	_, err = repo.Create(ctx, "u1", nil)
	assert.True(t, store.IsConstraint(err))

	updated, err := repo.Update(ctx, "u1", ProfileUpdate{AvatarURL: strPtr("https://img/avatar.png")})
	require.NoError(t, err)
	assert.Equal(t, "Sam", *updated.DisplayName)
	assert.Equal(t, "https://img/avatar.png", *updated.AvatarURL)
}
