package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/campusshare/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CourseRepository handles database operations related to courses.
type CourseRepository struct {
	collection *mongo.Collection
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{
		collection: db.Collection("courses"),
	}
}

// CreateCourse inserts a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	course.CreatedAt = time.Now()
	course.UpdatedAt = time.Now()
	course.IsActive = true

	result, err := r.collection.InsertOne(ctx, course)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert course")
		return nil, fmt.Errorf("failed to insert course: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	course.ID = insertedID
	return course, nil
}

// GetCourseByID fetches an active course; soft-deleted courses are invisible.
func (r *CourseRepository) GetCourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&course)
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %v", err)
	}
	return &course, nil
}

// GetCourses fetches a page of active courses with optional filters.
func (r *CourseRepository) GetCourses(ctx context.Context, department, semester string, page, limit int64) ([]models.Course, int64, error) {
	filter := bson.M{"is_active": true}
	if department != "" {
		filter["department"] = department
	}
	if semester != "" {
		filter["semester"] = semester
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "code", Value: 1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch courses: %v", err)
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, 0, fmt.Errorf("failed to decode courses: %v", err)
	}
	return courses, total, nil
}

// UpdateCourse applies field updates to a course.
func (r *CourseRepository) UpdateCourse(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		logrus.WithError(err).WithField("courseID", id.Hex()).Error("Failed to update course")
		return fmt.Errorf("failed to update course: %v", err)
	}
	return nil
}

// SoftDeleteCourse marks a course inactive; the document itself stays.
func (r *CourseRepository) SoftDeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	return r.UpdateCourse(ctx, id, bson.M{"is_active": false})
}

// CountActiveCourses counts courses that have not been soft-deleted.
func (r *CourseRepository) CountActiveCourses(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"is_active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count courses: %v", err)
	}
	return count, nil
}
