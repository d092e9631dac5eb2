package services

import (
	"context"
	"testing"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeNotificationStore struct {
	created []models.Notification
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	f.created = append(f.created, *notif)
	return nil
}

func (f *fakeNotificationStore) GetUserNotifications(ctx context.Context, recipientID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range f.created {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotificationStore) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	var n int64
	for _, notif := range f.created {
		if notif.RecipientID == recipientID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationStore) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	for i := range f.created {
		if f.created[i].ID == id && f.created[i].RecipientID == recipientID {
			f.created[i].IsRead = true
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeNotificationStore) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	var n int64
	for i := range f.created {
		if f.created[i].RecipientID == recipientID && !f.created[i].IsRead {
			f.created[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationStore) DeleteNotification(ctx context.Context, id, recipientID primitive.ObjectID) error {
	for i := range f.created {
		if f.created[i].ID == id && f.created[i].RecipientID == recipientID {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeNotificationStore) GetLatestByTypeAndTarget(ctx context.Context, recipientID primitive.ObjectID, notifType string, relatedID primitive.ObjectID) (*models.Notification, error) {
	for i := len(f.created) - 1; i >= 0; i-- {
		n := f.created[i]
		if n.RecipientID == recipientID && n.Type == notifType && n.RelatedID != nil && *n.RelatedID == relatedID {
			return &n, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeNotificationStore) DeleteExpiredNotifications(ctx context.Context) error {
	return nil
}

func TestNotificationTemplatesAndPriorities(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	ctx := context.Background()
	recipient := primitive.NewObjectID()
	sender := primitive.NewObjectID()
	target := primitive.NewObjectID()

	require.NoError(t, svc.NotifyNewResource(ctx, recipient, sender, "alice", "Week 3 notes", target))
	require.NoError(t, svc.NotifyResourceLiked(ctx, recipient, sender, "alice", "Week 3 notes", target))
	require.NoError(t, svc.NotifyRequestFulfilled(ctx, recipient, sender, "alice", "Past papers", target))
	require.NoError(t, svc.NotifyAchievementEarned(ctx, recipient, "First Upload", target))
	require.NoError(t, svc.NotifyDeadlineReminder(ctx, recipient, "Past papers", target, time.Now().Add(12*time.Hour)))

	require.Len(t, store.created, 5)

	byType := make(map[string]models.Notification, len(store.created))
	for _, n := range store.created {
		byType[n.Type] = n
	}

	assert.Equal(t, models.PriorityMedium, byType[models.NotifNewResource].Priority)
	assert.Equal(t, models.PriorityLow, byType[models.NotifResourceLiked].Priority)
	assert.Equal(t, models.PriorityHigh, byType[models.NotifRequestFulfilled].Priority)
	assert.Equal(t, models.PriorityMedium, byType[models.NotifAchievementEarned].Priority)
	assert.Equal(t, models.PriorityHigh, byType[models.NotifDeadlineReminder].Priority)

	// System events carry no sender.
	assert.Nil(t, byType[models.NotifAchievementEarned].SenderID)
	assert.Nil(t, byType[models.NotifDeadlineReminder].SenderID)
	require.NotNil(t, byType[models.NotifResourceLiked].SenderID)
	assert.Equal(t, sender, *byType[models.NotifResourceLiked].SenderID)

	assert.Equal(t, models.RelatedResource, byType[models.NotifNewResource].RelatedModel)
	assert.Equal(t, models.RelatedResourceRequest, byType[models.NotifRequestFulfilled].RelatedModel)
	assert.Equal(t, models.RelatedAchievement, byType[models.NotifAchievementEarned].RelatedModel)
	assert.Contains(t, byType[models.NotifNewResource].Message, "alice")
	assert.Contains(t, byType[models.NotifNewResource].Message, "Week 3 notes")
}

func TestMarkNotificationAsReadScoping(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	ctx := context.Background()
	recipient := primitive.NewObjectID()
	other := primitive.NewObjectID()
	target := primitive.NewObjectID()

	require.NoError(t, svc.NotifyResourceApproved(ctx, recipient, "Week 3 notes", target))
	notifID := store.created[0].ID

	// Another user cannot touch it.
	err := svc.MarkNotificationAsRead(ctx, notifID, other)
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.MarkNotificationAsRead(ctx, notifID, recipient))
	count, err := svc.CountUnread(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllAsRead(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	ctx := context.Background()
	recipient := primitive.NewObjectID()
	target := primitive.NewObjectID()

	require.NoError(t, svc.NotifyResourceApproved(ctx, recipient, "a", target))
	require.NoError(t, svc.NotifyResourceApproved(ctx, recipient, "b", target))
	require.NoError(t, svc.NotifyResourceApproved(ctx, primitive.NewObjectID(), "c", target))

	updated, err := svc.MarkAllAsRead(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
}

func TestDeleteNotificationScoping(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	ctx := context.Background()
	recipient := primitive.NewObjectID()
	target := primitive.NewObjectID()

	require.NoError(t, svc.NotifyResourceApproved(ctx, recipient, "a", target))
	notifID := store.created[0].ID

	err := svc.DeleteNotification(ctx, notifID, primitive.NewObjectID())
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.DeleteNotification(ctx, notifID, recipient))
	assert.Empty(t, store.created)
}

func TestLatestReminderFor(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store)

	ctx := context.Background()
	recipient := primitive.NewObjectID()
	requestID := primitive.NewObjectID()

	assert.Nil(t, svc.LatestReminderFor(ctx, recipient, requestID))

	require.NoError(t, svc.NotifyDeadlineReminder(ctx, recipient, "Past papers", requestID, time.Now().Add(6*time.Hour)))
	got := svc.LatestReminderFor(ctx, recipient, requestID)
	require.NotNil(t, got)
	assert.Equal(t, models.NotifDeadlineReminder, got.Type)
}
