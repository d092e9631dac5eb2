package services

import (
	"context"
	"io"
	"strings"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"github.com/campusshare/backend/pkg/media"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fanOutCap bounds the new-resource notification fan-out per upload.
const fanOutCap = 50

// resourceFolder is the media CDN folder resources are uploaded into.
const resourceFolder = "resources"

type resourceStore interface {
	CreateResource(ctx context.Context, resource *models.Resource) (*models.Resource, error)
	GetResourceByID(ctx context.Context, id primitive.ObjectID) (*models.Resource, error)
	GetResources(ctx context.Context, filter repository.ResourceFilter, page, limit int64) ([]models.Resource, int64, error)
	GetRecentResources(ctx context.Context, limit int64) ([]models.Resource, error)
	GetPinnedResources(ctx context.Context) ([]models.Resource, error)
	UpdateResource(ctx context.Context, id primitive.ObjectID, update bson.M) error
	SoftDeleteResource(ctx context.Context, id primitive.ObjectID) error
	IncrementDownloads(ctx context.Context, id primitive.ObjectID) (int64, error)
	CountByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error)
	SumLikesByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error)
	SumDownloadsByUploader(ctx context.Context, uploaderID primitive.ObjectID) (int64, error)
	CountCommentsByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type resourceUserStore interface {
	IncrementContributionCount(ctx context.Context, userID primitive.ObjectID, delta int64) error
	GetUsersEnrolledInCourse(ctx context.Context, courseID primitive.ObjectID, limit int64) ([]models.User, error)
}

type courseLookup interface {
	GetCourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
}

type resourceNotifier interface {
	NotifyNewResource(ctx context.Context, recipientID, senderID primitive.ObjectID, uploaderName, resourceTitle string, resourceID primitive.ObjectID) error
	NotifyResourceApproved(ctx context.Context, recipientID primitive.ObjectID, resourceTitle string, resourceID primitive.ObjectID) error
	NotifyResourceLiked(ctx context.Context, recipientID, senderID primitive.ObjectID, likerName, resourceTitle string, resourceID primitive.ObjectID) error
	NotifyResourceCommented(ctx context.Context, recipientID, senderID primitive.ObjectID, commenterName, resourceTitle string, resourceID primitive.ObjectID) error
}

// awarder is the fire-and-forget achievement check shared by the domain services.
type awarder interface {
	CheckAndAward(ctx context.Context, userID primitive.ObjectID, achievementType string, count int64)
}

type mediaStore interface {
	Upload(ctx context.Context, file io.Reader, folder string) (*media.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// ResourceService encapsulates the business logic for resources.
type ResourceService struct {
	repo     resourceStore
	userRepo resourceUserStore
	courses  courseLookup
	notifier resourceNotifier
	awarder  awarder
	media    mediaStore
}

// NewResourceService creates a new instance of ResourceService.
func NewResourceService(repo resourceStore, userRepo resourceUserStore, courses courseLookup, notifier resourceNotifier, aw awarder, mediaStore mediaStore) *ResourceService {
	return &ResourceService{
		repo:     repo,
		userRepo: userRepo,
		courses:  courses,
		notifier: notifier,
		awarder:  aw,
		media:    mediaStore,
	}
}

// ListResources fetches a page of resources matching the filter.
func (s *ResourceService) ListResources(ctx context.Context, filter repository.ResourceFilter, page, limit int64) ([]models.Resource, int64, error) {
	return s.repo.GetResources(ctx, filter, page, limit)
}

// GetResource fetches one active resource; soft-deleted resources 404.
func (s *ResourceService) GetResource(ctx context.Context, id string) (*models.Resource, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid resource ID")
	}
	resource, err := s.repo.GetResourceByID(ctx, objID)
	if err != nil {
		return nil, apperrors.NotFound("resource not found")
	}
	return resource, nil
}

// GetRecentResources returns the newest resources.
func (s *ResourceService) GetRecentResources(ctx context.Context, limit int64) ([]models.Resource, error) {
	return s.repo.GetRecentResources(ctx, limit)
}

// GetPinnedResources returns pinned resources.
func (s *ResourceService) GetPinnedResources(ctx context.Context) ([]models.Resource, error) {
	return s.repo.GetPinnedResources(ctx)
}

// UploadInput carries the multipart upload alongside the resource metadata.
type UploadInput struct {
	Title       string
	Description string
	CourseID    string
	Category    string
	File        io.Reader
	FileName    string
	FileSize    int64
	FileType    string
}

// CreateResource uploads the file to the media store, persists the resource,
// then runs the side effects: contribution count, upload achievements, and a
// capped best-effort fan-out to users enrolled in the course.
func (s *ResourceService) CreateResource(ctx context.Context, input UploadInput, uploaderID primitive.ObjectID, uploaderName string) (*models.Resource, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.BadRequest("title is required")
	}
	if !models.AllowedCategories[input.Category] {
		return nil, apperrors.BadRequest("invalid category %q", input.Category)
	}
	courseID, err := primitive.ObjectIDFromHex(input.CourseID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid course ID")
	}
	if _, err := s.courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, apperrors.NotFound("course not found")
	}
	if input.File == nil {
		return nil, apperrors.BadRequest("file is required")
	}

	uploaded, err := s.media.Upload(ctx, input.File, resourceFolder)
	if err != nil {
		return nil, err
	}

	resource := &models.Resource{
		Title:        input.Title,
		Description:  input.Description,
		CourseID:     courseID,
		UploaderID:   uploaderID,
		FileURL:      uploaded.URL,
		FileName:     input.FileName,
		FileSize:     input.FileSize,
		FileType:     input.FileType,
		FilePublicID: uploaded.PublicID,
		Category:     input.Category,
	}

	created, err := s.repo.CreateResource(ctx, resource)
	if err != nil {
		return nil, err
	}

	// Side effects below are best effort: the upload already succeeded and
	// the response must reflect only that.
	if err := s.userRepo.IncrementContributionCount(ctx, uploaderID, 1); err != nil {
		logrus.WithError(err).Warn("Failed to bump contribution count")
	}

	if count, err := s.repo.CountByUploader(ctx, uploaderID); err == nil {
		s.awarder.CheckAndAward(ctx, uploaderID, models.AchievementUpload, count)
	} else {
		logrus.WithError(err).Warn("Failed to count uploads for achievement check")
	}

	s.fanOutNewResource(ctx, created, uploaderID, uploaderName)

	return created, nil
}

func (s *ResourceService) fanOutNewResource(ctx context.Context, resource *models.Resource, uploaderID primitive.ObjectID, uploaderName string) {
	enrolled, err := s.userRepo.GetUsersEnrolledInCourse(ctx, resource.CourseID, fanOutCap)
	if err != nil {
		logrus.WithError(err).Warn("Failed to fetch enrolled users for fan-out")
		return
	}
	for _, user := range enrolled {
		if user.ID == uploaderID {
			continue
		}
		if err := s.notifier.NotifyNewResource(ctx, user.ID, uploaderID, uploaderName, resource.Title, resource.ID); err != nil {
			logrus.WithError(err).WithField("recipient", user.ID.Hex()).Warn("Failed to send new resource notification")
		}
	}
}

// UpdateResource applies owner/admin edits to title, description or category.
func (s *ResourceService) UpdateResource(ctx context.Context, id string, actorID primitive.ObjectID, actorRole string, update bson.M) (*models.Resource, error) {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.UploaderID != actorID && actorRole != "admin" {
		return nil, apperrors.Forbidden("only the uploader or an admin can update this resource")
	}
	if category, ok := update["category"].(string); ok && !models.AllowedCategories[category] {
		return nil, apperrors.BadRequest("invalid category %q", category)
	}

	if err := s.repo.UpdateResource(ctx, resource.ID, update); err != nil {
		return nil, err
	}
	return s.repo.GetResourceByID(ctx, resource.ID)
}

// DeleteResource soft-deletes a resource; the CDN object is destroyed best
// effort afterwards.
func (s *ResourceService) DeleteResource(ctx context.Context, id string, actorID primitive.ObjectID, actorRole string) error {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if resource.UploaderID != actorID && actorRole != "admin" {
		return apperrors.Forbidden("only the uploader or an admin can delete this resource")
	}

	if err := s.repo.SoftDeleteResource(ctx, resource.ID); err != nil {
		return err
	}

	if resource.FilePublicID != "" {
		if err := s.media.Destroy(ctx, resource.FilePublicID); err != nil {
			logrus.WithError(err).WithField("resourceID", resource.ID.Hex()).Warn("Failed to delete backing media object")
		}
	}
	return nil
}

// ToggleLike adds or removes the actor's like and reports which branch was
// taken plus the new count. A fresh like notifies the uploader unless the
// actor is the uploader.
func (s *ResourceService) ToggleLike(ctx context.Context, id string, actorID primitive.ObjectID, actorName string) (liked bool, count int, err error) {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return false, 0, err
	}

	likes := resource.Likes
	found := -1
	for i, userID := range likes {
		if userID == actorID {
			found = i
			break
		}
	}
	if found >= 0 {
		likes = append(likes[:found], likes[found+1:]...)
	} else {
		likes = append(likes, actorID)
	}

	if err := s.repo.UpdateResource(ctx, resource.ID, bson.M{"likes": likes}); err != nil {
		return false, 0, err
	}
	liked = found < 0

	if liked && resource.UploaderID != actorID {
		if err := s.notifier.NotifyResourceLiked(ctx, resource.UploaderID, actorID, actorName, resource.Title, resource.ID); err != nil {
			logrus.WithError(err).Warn("Failed to send like notification")
		}
		if total, err := s.repo.SumLikesByUploader(ctx, resource.UploaderID); err == nil {
			s.awarder.CheckAndAward(ctx, resource.UploaderID, models.AchievementLike, total)
		} else {
			logrus.WithError(err).Warn("Failed to count likes for achievement check")
		}
	}

	return liked, len(likes), nil
}

// AddComment appends a comment and notifies the uploader unless the actor
// is the uploader.
func (s *ResourceService) AddComment(ctx context.Context, id string, actorID primitive.ObjectID, actorName, text string) (*models.Resource, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.BadRequest("comment text is required")
	}

	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	comments := append(resource.Comments, models.Comment{
		UserID:    actorID,
		Username:  actorName,
		Text:      text,
		CreatedAt: timeNow(),
	})
	if err := s.repo.UpdateResource(ctx, resource.ID, bson.M{"comments": comments}); err != nil {
		return nil, err
	}

	if resource.UploaderID != actorID {
		if err := s.notifier.NotifyResourceCommented(ctx, resource.UploaderID, actorID, actorName, resource.Title, resource.ID); err != nil {
			logrus.WithError(err).Warn("Failed to send comment notification")
		}
	}
	if total, err := s.repo.CountCommentsByUser(ctx, actorID); err == nil {
		s.awarder.CheckAndAward(ctx, actorID, models.AchievementComment, total)
	} else {
		logrus.WithError(err).Warn("Failed to count comments for achievement check")
	}

	return s.repo.GetResourceByID(ctx, resource.ID)
}

// Download bumps the counter, runs the uploader's download achievement
// check, and returns the file URL for the client to fetch.
func (s *ResourceService) Download(ctx context.Context, id string) (string, error) {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return "", err
	}

	if _, err := s.repo.IncrementDownloads(ctx, resource.ID); err != nil {
		return "", err
	}

	if total, err := s.repo.SumDownloadsByUploader(ctx, resource.UploaderID); err == nil {
		s.awarder.CheckAndAward(ctx, resource.UploaderID, models.AchievementDownload, total)
	} else {
		logrus.WithError(err).Warn("Failed to count downloads for achievement check")
	}

	return resource.FileURL, nil
}

// SetPinned pins or unpins a resource. Admin only, enforced by the caller's
// route middleware; re-checked here.
func (s *ResourceService) SetPinned(ctx context.Context, id string, actorRole string, pinned bool) (*models.Resource, error) {
	if actorRole != "admin" {
		return nil, apperrors.Forbidden("only admins can pin resources")
	}
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateResource(ctx, resource.ID, bson.M{"is_pinned": pinned}); err != nil {
		return nil, err
	}
	return s.repo.GetResourceByID(ctx, resource.ID)
}

// Approve marks a resource approved and notifies the uploader.
func (s *ResourceService) Approve(ctx context.Context, id string, actorRole string) (*models.Resource, error) {
	if actorRole != "admin" {
		return nil, apperrors.Forbidden("only admins can approve resources")
	}
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource.IsApproved {
		return nil, apperrors.BadRequest("resource is already approved")
	}
	if err := s.repo.UpdateResource(ctx, resource.ID, bson.M{"is_approved": true}); err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyResourceApproved(ctx, resource.UploaderID, resource.Title, resource.ID); err != nil {
		logrus.WithError(err).Warn("Failed to send approval notification")
	}

	return s.repo.GetResourceByID(ctx, resource.ID)
}
