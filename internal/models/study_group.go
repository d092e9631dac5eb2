package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Study group statuses. Open and full flip back and forth on join/leave;
// closed is reached only when the last member leaves.
const (
	GroupStatusOpen   = "open"
	GroupStatusFull   = "full"
	GroupStatusClosed = "closed"
)

// GroupMember records when a user joined; join time drives the deterministic
// ownership transfer when the creator leaves.
type GroupMember struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

// StudyGroup is a member-capped group tied to a course.
type StudyGroup struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CourseID    primitive.ObjectID `bson:"course_id" json:"course_id"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Members     []GroupMember      `bson:"members" json:"members"`
	MaxMembers  int                `bson:"max_members" json:"max_members"`
	MeetingTime string             `bson:"meeting_time,omitempty" json:"meeting_time,omitempty"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Status      string             `bson:"status" json:"status"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether the user is currently in the group.
func (g *StudyGroup) HasMember(userID primitive.ObjectID) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
