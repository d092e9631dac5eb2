package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllowedCategories lists the valid resource categories.
var AllowedCategories = map[string]bool{
	"lecture_notes": true,
	"assignment":    true,
	"past_paper":    true,
	"textbook":      true,
	"slides":        true,
	"lab_report":    true,
	"other":         true,
}

// Comment is an embedded comment on a resource or request.
type Comment struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Username  string             `bson:"username" json:"username"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Resource is an uploaded course material. The file itself lives in the
// media CDN; only the retrieval URL and derived id are stored here.
type Resource struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	CourseID     primitive.ObjectID   `bson:"course_id" json:"course_id"`
	UploaderID   primitive.ObjectID   `bson:"uploader_id" json:"uploader_id"`
	FileURL      string               `bson:"file_url" json:"file_url"`
	FileName     string               `bson:"file_name" json:"file_name"`
	FileSize     int64                `bson:"file_size" json:"file_size"`
	FileType     string               `bson:"file_type" json:"file_type"`
	FilePublicID string               `bson:"file_public_id,omitempty" json:"-"`
	Category     string               `bson:"category" json:"category"`
	IsApproved   bool                 `bson:"is_approved" json:"is_approved"`
	IsPinned     bool                 `bson:"is_pinned" json:"is_pinned"`
	IsActive     bool                 `bson:"is_active" json:"is_active"`
	Likes        []primitive.ObjectID `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments     []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	Downloads    int64                `bson:"downloads" json:"downloads"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}
