package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// notificationStore is the slice of NotificationRepository the service uses.
type notificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, recipientID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	DeleteNotification(ctx context.Context, id, recipientID primitive.ObjectID) error
	GetLatestByTypeAndTarget(ctx context.Context, recipientID primitive.ObjectID, notifType string, relatedID primitive.ObjectID) (*models.Notification, error)
	DeleteExpiredNotifications(ctx context.Context) error
}

// NotificationService is the side-effect dispatcher: one typed function per
// event kind, each writing exactly one notification document. Callers invoke
// these after their primary mutation has persisted and must swallow any
// returned error; delivery is best effort, at most one write attempt.
type NotificationService struct {
	repo notificationStore
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo notificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) create(ctx context.Context, notif *models.Notification) error {
	return s.repo.CreateNotification(ctx, notif)
}

// NotifyNewResource tells an enrolled student about a fresh upload in their course.
func (s *NotificationService) NotifyNewResource(ctx context.Context, recipientID, senderID primitive.ObjectID, uploaderName, resourceTitle string, resourceID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     &senderID,
		Type:         models.NotifNewResource,
		Title:        "New resource in your course",
		Message:      fmt.Sprintf("%s uploaded \"%s\" to a course you are enrolled in.", uploaderName, resourceTitle),
		RelatedID:    &resourceID,
		RelatedModel: models.RelatedResource,
		Priority:     models.PriorityMedium,
	})
}

// NotifyResourceApproved tells an uploader their resource passed review.
func (s *NotificationService) NotifyResourceApproved(ctx context.Context, recipientID primitive.ObjectID, resourceTitle string, resourceID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		Type:         models.NotifResourceApproved,
		Title:        "Resource approved",
		Message:      fmt.Sprintf("Your resource \"%s\" has been approved and is now visible to everyone.", resourceTitle),
		RelatedID:    &resourceID,
		RelatedModel: models.RelatedResource,
		Priority:     models.PriorityMedium,
	})
}

// NotifyResourceLiked tells an uploader someone liked their resource.
func (s *NotificationService) NotifyResourceLiked(ctx context.Context, recipientID, senderID primitive.ObjectID, likerName, resourceTitle string, resourceID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     &senderID,
		Type:         models.NotifResourceLiked,
		Title:        "Your resource was liked",
		Message:      fmt.Sprintf("%s liked your resource \"%s\".", likerName, resourceTitle),
		RelatedID:    &resourceID,
		RelatedModel: models.RelatedResource,
		Priority:     models.PriorityLow,
	})
}

// NotifyResourceCommented tells an uploader someone commented on their resource.
func (s *NotificationService) NotifyResourceCommented(ctx context.Context, recipientID, senderID primitive.ObjectID, commenterName, resourceTitle string, resourceID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     &senderID,
		Type:         models.NotifResourceCommented,
		Title:        "New comment on your resource",
		Message:      fmt.Sprintf("%s commented on your resource \"%s\".", commenterName, resourceTitle),
		RelatedID:    &resourceID,
		RelatedModel: models.RelatedResource,
		Priority:     models.PriorityLow,
	})
}

// NotifyStudyGroupJoined tells a group creator someone joined.
func (s *NotificationService) NotifyStudyGroupJoined(ctx context.Context, recipientID, senderID primitive.ObjectID, joinerName, groupName string, groupID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     &senderID,
		Type:         models.NotifStudyGroupJoined,
		Title:        "New study group member",
		Message:      fmt.Sprintf("%s joined your study group \"%s\".", joinerName, groupName),
		RelatedID:    &groupID,
		RelatedModel: models.RelatedStudyGroup,
		Priority:     models.PriorityLow,
	})
}

// NotifyRequestFulfilled tells a requester their request was fulfilled.
func (s *NotificationService) NotifyRequestFulfilled(ctx context.Context, recipientID, senderID primitive.ObjectID, fulfillerName, requestTitle string, requestID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     &senderID,
		Type:         models.NotifRequestFulfilled,
		Title:        "Your request was fulfilled",
		Message:      fmt.Sprintf("%s fulfilled your request \"%s\".", fulfillerName, requestTitle),
		RelatedID:    &requestID,
		RelatedModel: models.RelatedResourceRequest,
		Priority:     models.PriorityHigh,
	})
}

// NotifyRequestCommented tells a requester someone commented on their request.
func (s *NotificationService) NotifyRequestCommented(ctx context.Context, recipientID, senderID primitive.ObjectID, commenterName, requestTitle string, requestID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		SenderID:     &senderID,
		Type:         models.NotifRequestCommented,
		Title:        "New comment on your request",
		Message:      fmt.Sprintf("%s commented on your request \"%s\".", commenterName, requestTitle),
		RelatedID:    &requestID,
		RelatedModel: models.RelatedResourceRequest,
		Priority:     models.PriorityLow,
	})
}

// NotifyAchievementEarned congratulates a user on a new badge. System
// generated, so there is no sender.
func (s *NotificationService) NotifyAchievementEarned(ctx context.Context, recipientID primitive.ObjectID, achievementName string, achievementID primitive.ObjectID) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		Type:         models.NotifAchievementEarned,
		Title:        "Achievement earned",
		Message:      fmt.Sprintf("Congratulations! You earned the \"%s\" achievement.", achievementName),
		RelatedID:    &achievementID,
		RelatedModel: models.RelatedAchievement,
		Priority:     models.PriorityMedium,
	})
}

// NotifyDeadlineReminder warns a requester their request's deadline is close.
func (s *NotificationService) NotifyDeadlineReminder(ctx context.Context, recipientID primitive.ObjectID, requestTitle string, requestID primitive.ObjectID, deadline time.Time) error {
	return s.create(ctx, &models.Notification{
		RecipientID:  recipientID,
		Type:         models.NotifDeadlineReminder,
		Title:        "Request deadline approaching",
		Message:      fmt.Sprintf("Your request \"%s\" reaches its deadline on %s.", requestTitle, deadline.Format("Jan 2, 15:04")),
		RelatedID:    &requestID,
		RelatedModel: models.RelatedResourceRequest,
		Priority:     models.PriorityHigh,
	})
}

// GetUserNotifications returns a page of the recipient's notifications.
func (s *NotificationService) GetUserNotifications(ctx context.Context, recipientID primitive.ObjectID, unreadOnly bool, page, limit int64) ([]models.Notification, int64, error) {
	return s.repo.GetUserNotifications(ctx, recipientID, unreadOnly, page, limit)
}

// CountUnread returns the recipient's unread notification count.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

// MarkNotificationAsRead flips one notification's read flag.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	err := s.repo.MarkAsRead(ctx, id, recipientID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("notification not found")
	}
	return err
}

// MarkAllAsRead flips all of the recipient's unread notifications.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

// DeleteNotification removes one notification owned by the recipient.
func (s *NotificationService) DeleteNotification(ctx context.Context, id, recipientID primitive.ObjectID) error {
	err := s.repo.DeleteNotification(ctx, id, recipientID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("notification not found")
	}
	return err
}

// LatestReminderFor returns the newest deadline reminder for a request, or
// nil when none exists. Used by the cron job to avoid duplicate reminders.
func (s *NotificationService) LatestReminderFor(ctx context.Context, recipientID, requestID primitive.ObjectID) *models.Notification {
	notif, err := s.repo.GetLatestByTypeAndTarget(ctx, recipientID, models.NotifDeadlineReminder, requestID)
	if err != nil {
		return nil
	}
	return notif
}

// DeleteExpiredNotifications removes notifications past their expiry.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}
