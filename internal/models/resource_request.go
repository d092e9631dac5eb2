package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses. open → in-progress → fulfilled; any non-terminal
// state may move to closed. No transition leaves fulfilled.
const (
	RequestStatusOpen       = "open"
	RequestStatusInProgress = "in-progress"
	RequestStatusFulfilled  = "fulfilled"
	RequestStatusClosed     = "closed"
)

// AllowedPriorities lists the valid request priorities.
var AllowedPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// ResourceRequest asks the community for a missing resource.
type ResourceRequest struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title             string               `bson:"title" json:"title"`
	Description       string               `bson:"description,omitempty" json:"description,omitempty"`
	CourseID          primitive.ObjectID   `bson:"course_id" json:"course_id"`
	RequesterID       primitive.ObjectID   `bson:"requester_id" json:"requester_id"`
	Priority          string               `bson:"priority" json:"priority"`
	Deadline          time.Time            `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Status            string               `bson:"status" json:"status"`
	FulfilledBy       *primitive.ObjectID  `bson:"fulfilled_by,omitempty" json:"fulfilled_by,omitempty"`
	FulfilledResource *primitive.ObjectID  `bson:"fulfilled_resource,omitempty" json:"fulfilled_resource,omitempty"`
	Upvotes           []primitive.ObjectID `bson:"upvotes,omitempty" json:"upvotes,omitempty"`
	Comments          []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	IsActive          bool                 `bson:"is_active" json:"is_active"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}

// CanTransitionTo reports whether the request may move to the given status.
func (r *ResourceRequest) CanTransitionTo(status string) bool {
	switch r.Status {
	case RequestStatusOpen:
		return status == RequestStatusInProgress || status == RequestStatusFulfilled || status == RequestStatusClosed
	case RequestStatusInProgress:
		return status == RequestStatusFulfilled || status == RequestStatusClosed
	default:
		return false
	}
}
