package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a catalog entry resources and study groups hang off of.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Department  string             `bson:"department,omitempty" json:"department,omitempty"`
	Semester    string             `bson:"semester,omitempty" json:"semester,omitempty"`
	Instructor  string             `bson:"instructor,omitempty" json:"instructor,omitempty"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
