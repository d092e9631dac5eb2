package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. Convention for new kinds: the recipient is the party
// who should learn about the event, the sender is the actor who caused it
// (absent for system-generated events).
const (
	NotifNewResource       = "new_resource"
	NotifResourceApproved  = "resource_approved"
	NotifResourceLiked     = "resource_liked"
	NotifResourceCommented = "resource_commented"
	NotifStudyGroupJoined  = "study_group_joined"
	NotifStudyGroupMessage = "study_group_message"
	NotifRequestFulfilled  = "request_fulfilled"
	NotifRequestCommented  = "request_commented"
	NotifAchievementEarned = "achievement_earned"
	NotifDeadlineReminder  = "deadline_reminder"
	NotifSystem            = "system"
)

// Collection names a notification's related reference may point at.
const (
	RelatedResource        = "Resource"
	RelatedStudyGroup      = "StudyGroup"
	RelatedResourceRequest = "ResourceRequest"
	RelatedAchievement     = "Achievement"
	RelatedCourse          = "Course"
)

// Notification priorities. Social events are low, content lifecycle medium,
// fulfillment and deadlines high.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Notification is created by domain actions and mutated only by read-state
// transitions. RelatedModel must agree with the collection RelatedID actually
// points at; the dispatcher constructors are the only writers.
type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID  primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID     *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Type         string              `bson:"type" json:"type"`
	Title        string              `bson:"title" json:"title"`
	Message      string              `bson:"message" json:"message"`
	RelatedID    *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`
	RelatedModel string              `bson:"related_model,omitempty" json:"related_model,omitempty"`
	IsRead       bool                `bson:"is_read" json:"is_read"`
	ReadAt       *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	Priority     string              `bson:"priority" json:"priority"`
	ExpiresAt    time.Time           `bson:"expires_at" json:"expires_at"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
}
