package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/resourcedesk/internal/database/testutil"
	apperrors "github.com/charlesng35/resourcedesk/pkg/errors"
)

func TestNotificationServiceCreateAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	svc, err := NewNotificationService(db)
	require.NoError(t, err)

	ctx := context.Background()
	dto, err := svc.Create(ctx, CreateNotificationInput{
		UserID:    "u-1",
		RequestID: "REQ-1001",
		Type:      NotificationStatusChanged,
		Title:     "REQ-1001 approved",
		Message:   "Your request was approved",
		Metadata:  map[string]any{"status": "Approved"},
	})
	require.NoError(t, err)
	require.Equal(t, "info", dto.Severity)

	items, err := svc.ListForUser(ctx, ListNotificationsInput{UserID: "u-1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, dto.ID, items[0].ID)
	require.Equal(t, "Approved", items[0].Metadata["status"])
	require.False(t, items[0].IsRead)

	others, err := svc.ListForUser(ctx, ListNotificationsInput{UserID: "u-4"})
	require.NoError(t, err)
	require.Empty(t, others)

	exists, err := svc.Exists(ctx, "u-1", "REQ-1001", NotificationStatusChanged)
	require.NoError(t, err)
	require.True(t, exists)

	_, err = svc.Create(ctx, CreateNotificationInput{UserID: "u-1"})
	require.Error(t, err)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	svc, err := NewNotificationService(db)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Create(ctx, CreateNotificationInput{UserID: "u-1", Type: NotificationStatusChanged, Title: "one"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateNotificationInput{UserID: "u-1", Type: NotificationStatusChanged, Title: "two"})
	require.NoError(t, err)

	read, err := svc.MarkRead(ctx, "u-1", first.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	_, err = svc.MarkRead(ctx, "u-4", first.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	unread, err := svc.UnreadCount(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	onlyUnread, err := svc.ListForUser(ctx, ListNotificationsInput{UserID: "u-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, onlyUnread, 1)
	require.Equal(t, "two", onlyUnread[0].Title)

	updated, err := svc.MarkAllRead(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	unread, err = svc.UnreadCount(ctx, "u-1")
	require.NoError(t, err)
	require.Zero(t, unread)
}
