package services

import (
	"context"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardService is a read-only fan-in over every collection. No caching;
// every call re-queries.
type DashboardService struct {
	userRepo     *repository.UserRepository
	courseRepo   *repository.CourseRepository
	resourceRepo *repository.ResourceRepository
	groupRepo    *repository.StudyGroupRepository
	requestRepo  *repository.ResourceRequestRepository
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	resourceRepo *repository.ResourceRepository,
	groupRepo *repository.StudyGroupRepository,
	requestRepo *repository.ResourceRequestRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		resourceRepo: resourceRepo,
		groupRepo:    groupRepo,
		requestRepo:  requestRepo,
	}
}

// AdminStats is the global platform view.
type AdminStats struct {
	TotalUsers        int64               `json:"total_users"`
	ActiveCourses     int64               `json:"active_courses"`
	ApprovedResources int64               `json:"approved_resources"`
	ActiveStudyGroups int64               `json:"active_study_groups"`
	TotalRequests     int64               `json:"total_requests"`
	NewUsers30d       int64               `json:"new_users_30d"`
	NewResources30d   int64               `json:"new_resources_30d"`
	RecentUsers       []models.PublicUser `json:"recent_users"`
	RecentResources   []models.Resource   `json:"recent_resources"`
}

// StudentStats is the caller's personal view.
type StudentStats struct {
	EnrolledCourses   int               `json:"enrolled_courses"`
	ContributionCount int64             `json:"contribution_count"`
	StudyGroups       int64             `json:"study_groups"`
	RecentResources   []models.Resource `json:"recent_resources"`
	RecentGroups      []models.StudyGroup `json:"recent_groups"`
	Bookmarks         []BookmarkDetail  `json:"bookmarks"`
}

// BookmarkDetail resolves a polymorphic bookmark into its document.
type BookmarkDetail struct {
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	Detail       interface{} `json:"detail,omitempty"`
}

// GetAdminStats builds the admin dashboard.
func (s *DashboardService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	since := time.Now().AddDate(0, 0, -30)

	totalUsers, err := s.userRepo.CountUsers(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	activeCourses, err := s.courseRepo.CountActiveCourses(ctx)
	if err != nil {
		return nil, err
	}
	approvedResources, err := s.resourceRepo.CountResources(ctx, true, time.Time{})
	if err != nil {
		return nil, err
	}
	activeGroups, err := s.groupRepo.CountActiveGroups(ctx)
	if err != nil {
		return nil, err
	}
	totalRequests, err := s.requestRepo.CountRequests(ctx)
	if err != nil {
		return nil, err
	}
	newUsers, err := s.userRepo.CountUsers(ctx, since)
	if err != nil {
		return nil, err
	}
	newResources, err := s.resourceRepo.CountResources(ctx, false, since)
	if err != nil {
		return nil, err
	}
	recentUsers, err := s.userRepo.GetRecentUsers(ctx, 5)
	if err != nil {
		return nil, err
	}
	recentResources, err := s.resourceRepo.GetRecentResources(ctx, 5)
	if err != nil {
		return nil, err
	}

	publicUsers := make([]models.PublicUser, 0, len(recentUsers))
	for i := range recentUsers {
		publicUsers = append(publicUsers, recentUsers[i].Public())
	}

	return &AdminStats{
		TotalUsers:        totalUsers,
		ActiveCourses:     activeCourses,
		ApprovedResources: approvedResources,
		ActiveStudyGroups: activeGroups,
		TotalRequests:     totalRequests,
		NewUsers30d:       newUsers,
		NewResources30d:   newResources,
		RecentUsers:       publicUsers,
		RecentResources:   recentResources,
	}, nil
}

// GetStudentStats builds the caller's personal dashboard.
func (s *DashboardService) GetStudentStats(ctx context.Context, userID primitive.ObjectID) (*StudentStats, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("user not found")
	}

	memberships, err := s.groupRepo.CountByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	recentResources, err := s.resourceRepo.GetRecentResourcesByUploader(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	recentGroups, err := s.groupRepo.GetStudyGroupsByMember(ctx, userID, 3)
	if err != nil {
		return nil, err
	}

	bookmarks := user.Bookmarks
	if len(bookmarks) > 5 {
		bookmarks = bookmarks[:5]
	}

	return &StudentStats{
		EnrolledCourses:   len(user.EnrolledCourses),
		ContributionCount: user.ContributionCount,
		StudyGroups:       memberships,
		RecentResources:   recentResources,
		RecentGroups:      recentGroups,
		Bookmarks:         s.resolveBookmarks(ctx, bookmarks),
	}, nil
}

// resolveBookmarks maps each polymorphic pair to its document through a
// kind → accessor table. Unresolvable bookmarks are kept without detail.
func (s *DashboardService) resolveBookmarks(ctx context.Context, bookmarks []models.Bookmark) []BookmarkDetail {
	resolvers := map[string]func(context.Context, primitive.ObjectID) (interface{}, error){
		models.RelatedResource: func(ctx context.Context, id primitive.ObjectID) (interface{}, error) {
			return s.resourceRepo.GetResourceByID(ctx, id)
		},
		models.RelatedStudyGroup: func(ctx context.Context, id primitive.ObjectID) (interface{}, error) {
			return s.groupRepo.GetStudyGroupByID(ctx, id)
		},
		models.RelatedResourceRequest: func(ctx context.Context, id primitive.ObjectID) (interface{}, error) {
			return s.requestRepo.GetRequestByID(ctx, id)
		},
		models.RelatedCourse: func(ctx context.Context, id primitive.ObjectID) (interface{}, error) {
			return s.courseRepo.GetCourseByID(ctx, id)
		},
	}

	details := make([]BookmarkDetail, 0, len(bookmarks))
	for _, b := range bookmarks {
		detail := BookmarkDetail{ResourceType: b.ResourceType, ResourceID: b.ResourceID.Hex()}
		if resolve, ok := resolvers[b.ResourceType]; ok {
			doc, err := resolve(ctx, b.ResourceID)
			if err != nil {
				logrus.WithError(err).WithField("bookmark", b.ResourceID.Hex()).Warn("Failed to resolve bookmark")
			} else {
				detail.Detail = doc
			}
		}
		details = append(details, detail)
	}
	return details
}

// ResourceStats groups active resources by category and course.
type ResourceStats struct {
	Total      int64                      `json:"total"`
	Approved   int64                      `json:"approved"`
	ByCategory []repository.CategoryCount `json:"by_category"`
	ByCourse   []repository.CourseCount   `json:"by_course"`
}

// GetResourceStats builds the resource breakdown view.
func (s *DashboardService) GetResourceStats(ctx context.Context) (*ResourceStats, error) {
	total, err := s.resourceRepo.CountResources(ctx, false, time.Time{})
	if err != nil {
		return nil, err
	}
	approved, err := s.resourceRepo.CountResources(ctx, true, time.Time{})
	if err != nil {
		return nil, err
	}
	byCategory, err := s.resourceRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	byCourse, err := s.resourceRepo.CountByCourse(ctx)
	if err != nil {
		return nil, err
	}

	return &ResourceStats{
		Total:      total,
		Approved:   approved,
		ByCategory: byCategory,
		ByCourse:   byCourse,
	}, nil
}

// UserActivity tallies one user's platform activity.
type UserActivity struct {
	Uploads           int64 `json:"uploads"`
	LikesReceived     int64 `json:"likes_received"`
	LikesGiven        int64 `json:"likes_given"`
	CommentsAuthored  int64 `json:"comments_authored"`
	DownloadsReceived int64 `json:"downloads_received"`
	StudyGroups       int64 `json:"study_groups"`
	RequestsFulfilled int64 `json:"requests_fulfilled"`
}

// GetUserActivity builds the activity view for one user. Callers enforce
// admin-or-self.
func (s *DashboardService) GetUserActivity(ctx context.Context, userID primitive.ObjectID) (*UserActivity, error) {
	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		return nil, apperrors.NotFound("user not found")
	}

	uploads, err := s.resourceRepo.CountByUploader(ctx, userID)
	if err != nil {
		return nil, err
	}
	likesReceived, err := s.resourceRepo.SumLikesByUploader(ctx, userID)
	if err != nil {
		return nil, err
	}
	likesGiven, err := s.resourceRepo.CountLikesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	comments, err := s.resourceRepo.CountCommentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	downloads, err := s.resourceRepo.SumDownloadsByUploader(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.groupRepo.CountByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	fulfilled, err := s.requestRepo.CountFulfilledBy(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserActivity{
		Uploads:           uploads,
		LikesReceived:     likesReceived,
		LikesGiven:        likesGiven,
		CommentsAuthored:  comments,
		DownloadsReceived: downloads,
		StudyGroups:       memberships,
		RequestsFulfilled: fulfilled,
	}, nil
}
