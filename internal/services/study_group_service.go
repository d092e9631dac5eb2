package services

import (
	"context"
	"strings"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type studyGroupStore interface {
	CreateStudyGroup(ctx context.Context, group *models.StudyGroup) (*models.StudyGroup, error)
	GetStudyGroupByID(ctx context.Context, id primitive.ObjectID) (*models.StudyGroup, error)
	GetStudyGroups(ctx context.Context, courseID *primitive.ObjectID, page, limit int64) ([]models.StudyGroup, int64, error)
	SearchStudyGroups(ctx context.Context, query string, limit int64) ([]models.StudyGroup, error)
	GetStudyGroupsByMember(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.StudyGroup, error)
	UpdateStudyGroup(ctx context.Context, id primitive.ObjectID, update bson.M) error
	SoftDeleteStudyGroup(ctx context.Context, id primitive.ObjectID) error
	CountByMember(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type groupNotifier interface {
	NotifyStudyGroupJoined(ctx context.Context, recipientID, senderID primitive.ObjectID, joinerName, groupName string, groupID primitive.ObjectID) error
}

// StudyGroupService encapsulates the business logic for study groups.
type StudyGroupService struct {
	repo     studyGroupStore
	courses  courseLookup
	notifier groupNotifier
	awarder  awarder
}

// NewStudyGroupService creates a new instance of StudyGroupService.
func NewStudyGroupService(repo studyGroupStore, courses courseLookup, notifier groupNotifier, aw awarder) *StudyGroupService {
	return &StudyGroupService{
		repo:     repo,
		courses:  courses,
		notifier: notifier,
		awarder:  aw,
	}
}

// ListStudyGroups fetches a page of groups, optionally filtered by course.
func (s *StudyGroupService) ListStudyGroups(ctx context.Context, courseID string, page, limit int64) ([]models.StudyGroup, int64, error) {
	var filter *primitive.ObjectID
	if courseID != "" {
		objID, err := primitive.ObjectIDFromHex(courseID)
		if err != nil {
			return nil, 0, apperrors.BadRequest("invalid course ID")
		}
		filter = &objID
	}
	return s.repo.GetStudyGroups(ctx, filter, page, limit)
}

// SearchStudyGroups matches groups by name or description.
func (s *StudyGroupService) SearchStudyGroups(ctx context.Context, query string) ([]models.StudyGroup, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.BadRequest("search query is required")
	}
	return s.repo.SearchStudyGroups(ctx, query, 20)
}

// GetMyGroups returns the groups the user belongs to.
func (s *StudyGroupService) GetMyGroups(ctx context.Context, userID primitive.ObjectID) ([]models.StudyGroup, error) {
	return s.repo.GetStudyGroupsByMember(ctx, userID, 0)
}

// GetStudyGroup fetches one active group.
func (s *StudyGroupService) GetStudyGroup(ctx context.Context, id string) (*models.StudyGroup, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid study group ID")
	}
	group, err := s.repo.GetStudyGroupByID(ctx, objID)
	if err != nil {
		return nil, apperrors.NotFound("study group not found")
	}
	return group, nil
}

// CreateStudyGroup validates and stores a group; the creator joins as the
// first member and the status starts out derived from the cap.
func (s *StudyGroupService) CreateStudyGroup(ctx context.Context, group *models.StudyGroup, creatorID primitive.ObjectID) (*models.StudyGroup, error) {
	if strings.TrimSpace(group.Name) == "" {
		return nil, apperrors.BadRequest("group name is required")
	}
	if group.MaxMembers < 2 {
		return nil, apperrors.BadRequest("max members must be at least 2")
	}
	if _, err := s.courses.GetCourseByID(ctx, group.CourseID); err != nil {
		return nil, apperrors.NotFound("course not found")
	}

	group.CreatorID = creatorID
	group.Members = []models.GroupMember{{UserID: creatorID, JoinedAt: timeNow()}}
	group.Status = deriveGroupStatus(len(group.Members), group.MaxMembers)

	return s.repo.CreateStudyGroup(ctx, group)
}

// UpdateStudyGroup applies creator/admin edits.
func (s *StudyGroupService) UpdateStudyGroup(ctx context.Context, id string, actorID primitive.ObjectID, actorRole string, update bson.M) (*models.StudyGroup, error) {
	group, err := s.GetStudyGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.CreatorID != actorID && actorRole != "admin" {
		return nil, apperrors.Forbidden("only the creator or an admin can update this group")
	}

	if maxMembers, ok := update["max_members"].(int); ok {
		if maxMembers < len(group.Members) {
			return nil, apperrors.BadRequest("max members cannot be below the current member count")
		}
		update["status"] = deriveGroupStatus(len(group.Members), maxMembers)
	}

	if err := s.repo.UpdateStudyGroup(ctx, group.ID, update); err != nil {
		return nil, err
	}
	return s.repo.GetStudyGroupByID(ctx, group.ID)
}

// DeleteStudyGroup soft-deletes a group.
func (s *StudyGroupService) DeleteStudyGroup(ctx context.Context, id string, actorID primitive.ObjectID, actorRole string) error {
	group, err := s.GetStudyGroup(ctx, id)
	if err != nil {
		return err
	}
	if group.CreatorID != actorID && actorRole != "admin" {
		return apperrors.Forbidden("only the creator or an admin can delete this group")
	}
	return s.repo.SoftDeleteStudyGroup(ctx, group.ID)
}

// JoinStudyGroup adds the actor as a member, recomputes the status, notifies
// the creator, and runs the joiner's study group achievement check.
func (s *StudyGroupService) JoinStudyGroup(ctx context.Context, id string, actorID primitive.ObjectID, actorName string) (*models.StudyGroup, error) {
	group, err := s.GetStudyGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.Status == models.GroupStatusClosed {
		return nil, apperrors.BadRequest("study group is closed")
	}
	if group.HasMember(actorID) {
		return nil, apperrors.BadRequest("you are already a member of this group")
	}
	if len(group.Members) >= group.MaxMembers {
		return nil, apperrors.BadRequest("study group is full")
	}

	members := append(group.Members, models.GroupMember{UserID: actorID, JoinedAt: timeNow()})
	update := bson.M{
		"members": members,
		"status":  deriveGroupStatus(len(members), group.MaxMembers),
	}
	if err := s.repo.UpdateStudyGroup(ctx, group.ID, update); err != nil {
		return nil, err
	}

	if group.CreatorID != actorID {
		if err := s.notifier.NotifyStudyGroupJoined(ctx, group.CreatorID, actorID, actorName, group.Name, group.ID); err != nil {
			logrus.WithError(err).Warn("Failed to send group join notification")
		}
	}
	if count, err := s.repo.CountByMember(ctx, actorID); err == nil {
		s.awarder.CheckAndAward(ctx, actorID, models.AchievementStudyGroup, count)
	} else {
		logrus.WithError(err).Warn("Failed to count memberships for achievement check")
	}

	return s.repo.GetStudyGroupByID(ctx, group.ID)
}

// LeaveStudyGroup removes the actor. When the last member leaves the group
// closes and deactivates; when the creator leaves with members remaining,
// ownership transfers to the earliest-joined remaining member.
func (s *StudyGroupService) LeaveStudyGroup(ctx context.Context, id string, actorID primitive.ObjectID) error {
	group, err := s.GetStudyGroup(ctx, id)
	if err != nil {
		return err
	}
	if !group.HasMember(actorID) {
		return apperrors.BadRequest("you are not a member of this group")
	}

	remaining := make([]models.GroupMember, 0, len(group.Members)-1)
	for _, m := range group.Members {
		if m.UserID != actorID {
			remaining = append(remaining, m)
		}
	}

	update := bson.M{"members": remaining}
	if len(remaining) == 0 {
		update["status"] = models.GroupStatusClosed
		update["is_active"] = false
	} else {
		update["status"] = deriveGroupStatus(len(remaining), group.MaxMembers)
		if group.CreatorID == actorID {
			update["creator_id"] = earliestJoined(remaining)
		}
	}

	return s.repo.UpdateStudyGroup(ctx, group.ID, update)
}

// deriveGroupStatus recomputes open/full purely from the member count.
func deriveGroupStatus(memberCount, maxMembers int) string {
	if memberCount >= maxMembers {
		return models.GroupStatusFull
	}
	return models.GroupStatusOpen
}

// earliestJoined picks the deterministic ownership-transfer target: the
// remaining member with the oldest join time.
func earliestJoined(members []models.GroupMember) primitive.ObjectID {
	next := members[0]
	for _, m := range members[1:] {
		if m.JoinedAt.Before(next.JoinedAt) {
			next = m
		}
	}
	return next.UserID
}
