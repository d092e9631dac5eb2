package services

import (
	"context"
	"strings"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseService encapsulates the business logic for the course catalog.
type CourseService struct {
	repo *repository.CourseRepository
}

// NewCourseService creates a new instance of CourseService.
func NewCourseService(repo *repository.CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

// ListCourses fetches a page of active courses.
func (s *CourseService) ListCourses(ctx context.Context, department, semester string, page, limit int64) ([]models.Course, int64, error) {
	return s.repo.GetCourses(ctx, department, semester, page, limit)
}

// GetCourse fetches one active course.
func (s *CourseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid course ID")
	}
	course, err := s.repo.GetCourseByID(ctx, objID)
	if err != nil {
		return nil, apperrors.NotFound("course not found")
	}
	return course, nil
}

// CreateCourse validates and stores a catalog entry. Admin only, enforced
// at the route.
func (s *CourseService) CreateCourse(ctx context.Context, course *models.Course, creatorID primitive.ObjectID) (*models.Course, error) {
	if strings.TrimSpace(course.Code) == "" || strings.TrimSpace(course.Name) == "" {
		return nil, apperrors.BadRequest("code and name are required")
	}
	course.CreatedBy = creatorID
	return s.repo.CreateCourse(ctx, course)
}

// UpdateCourse applies admin edits.
func (s *CourseService) UpdateCourse(ctx context.Context, id string, update bson.M) (*models.Course, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCourse(ctx, course.ID, update); err != nil {
		return nil, err
	}
	return s.repo.GetCourseByID(ctx, course.ID)
}

// DeleteCourse soft-deletes a course; existing resources keep pointing at it.
func (s *CourseService) DeleteCourse(ctx context.Context, id string) error {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.SoftDeleteCourse(ctx, course.ID)
}
