package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bookmark is a polymorphic reference: ResourceType names the collection the
// id points at. Allowed values are the RelatedModel* constants.
type Bookmark struct {
	ResourceType string             `bson:"resource_type" json:"resource_type"`
	ResourceID   primitive.ObjectID `bson:"resource_id" json:"resource_id"`
}

// User represents an account on the platform.
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username          string               `bson:"username" json:"username"`
	Email             string               `bson:"email" json:"email"`
	HashedPassword    string               `bson:"hashed_password" json:"-"`
	Role              string               `bson:"role" json:"role"` // "student" or "admin"
	ProfilePicture    string               `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	ProfilePictureID  string               `bson:"profile_picture_id,omitempty" json:"-"`
	Major             string               `bson:"major,omitempty" json:"major,omitempty"`
	Year              int                  `bson:"year,omitempty" json:"year,omitempty"`
	Bio               string               `bson:"bio,omitempty" json:"bio,omitempty"`
	EnrolledCourses   []primitive.ObjectID `bson:"enrolled_courses,omitempty" json:"enrolled_courses,omitempty"`
	ContributionCount int64                `bson:"contribution_count" json:"contribution_count"`
	Achievements      []primitive.ObjectID `bson:"achievements,omitempty" json:"achievements,omitempty"`
	Bookmarks         []Bookmark           `bson:"bookmarks,omitempty" json:"bookmarks,omitempty"`
	IsVerified        bool                 `bson:"is_verified" json:"is_verified"`
	VerifyToken       string               `bson:"verify_token,omitempty" json:"-"`
	ResetToken        string               `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExp     time.Time            `bson:"reset_token_exp,omitempty" json:"-"`
	CreatedAt         time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time            `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the safe projection returned to other users.
type PublicUser struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	Role           string             `json:"role"`
	ProfilePicture string             `json:"profile_picture,omitempty"`
	Major          string             `json:"major,omitempty"`
	Year           int                `json:"year,omitempty"`
}

// Public returns the safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		Major:          u.Major,
		Year:           u.Year,
	}
}
