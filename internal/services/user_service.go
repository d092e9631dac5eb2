package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/repository"
	"github.com/campusshare/backend/pkg/email"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// profileFolder is the media CDN folder for profile pictures.
const profileFolder = "avatars"

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo       *repository.UserRepository
	courseRepo *repository.CourseRepository
	media      mediaStore
	baseURL    string
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, courseRepo *repository.CourseRepository, mediaStore mediaStore, baseURL string) *UserService {
	return &UserService{
		repo:       repo,
		courseRepo: courseRepo,
		media:      mediaStore,
		baseURL:    baseURL,
	}
}

// RegisterUser registers a new user after hashing their password and sends
// the verification email.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Email == "" || user.Username == "" || user.HashedPassword == "" {
		return nil, apperrors.BadRequest("username, email and password are required")
	}
	if !emailRegex.MatchString(user.Email) {
		return nil, apperrors.BadRequest("invalid email format")
	}

	existing, _ := s.repo.GetUserByEmail(ctx, user.Email)
	if existing != nil {
		return nil, apperrors.BadRequest("email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.HashedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.HashedPassword = string(hashed)

	if user.Role == "" {
		user.Role = "student"
	}
	user.VerifyToken = uuid.NewString()
	user.IsVerified = false

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	verificationLink := fmt.Sprintf("%s/users/verify?token=%s", s.baseURL, created.VerifyToken)
	body := fmt.Sprintf("Welcome to CampusShare!\n\nPlease verify your email by clicking the link below:\n%s", verificationLink)
	if err := email.SendEmail(created.Email, "Email Verification", body); err != nil {
		logrus.WithError(err).Error("Failed to send verification email")
	}

	logrus.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// VerifyEmail consumes a verification token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return apperrors.BadRequest("invalid or expired verification token")
	}
	return s.repo.UpdateUser(ctx, user.ID, bson.M{
		"is_verified":  true,
		"verify_token": "",
	})
}

// AuthenticateUser checks the credentials and returns the user.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	return user, nil
}

// RequestPasswordReset issues a reset token and mails the link.
func (s *UserService) RequestPasswordReset(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return apperrors.NotFound("no account found with this email")
	}

	resetToken := uuid.NewString()
	err = s.repo.UpdateUser(ctx, user.ID, bson.M{
		"reset_token":     resetToken,
		"reset_token_exp": time.Now().Add(1 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("failed to save reset token: %v", err)
	}

	resetLink := fmt.Sprintf("%s/users/reset-password?token=%s", s.baseURL, resetToken)
	body := fmt.Sprintf("Click the link below to reset your password:\n\n%s", resetLink)
	if err := email.SendEmail(user.Email, "Reset Your Password", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %v", err)
	}

	logrus.Infof("Password reset email sent to %s", userEmail)
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.BadRequest("password must be at least 8 characters")
	}

	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return apperrors.BadRequest("invalid or expired reset token")
	}
	if user.ResetTokenExp.Before(time.Now()) {
		return apperrors.BadRequest("invalid or expired reset token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	return s.repo.UpdateUser(ctx, user.ID, bson.M{
		"hashed_password": string(hashed),
		"reset_token":     "",
	})
}

// GetUser fetches a user by hex id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.BadRequest("invalid user ID")
	}
	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

// UpdateProfile applies the user's own profile edits.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update bson.M) (*models.User, error) {
	if err := s.repo.UpdateUser(ctx, userID, update); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, userID)
}

// UploadProfilePicture stores the image in the media CDN and records its
// URL. The previous picture's backing object is destroyed best effort.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID primitive.ObjectID, file io.Reader) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("user not found")
	}

	uploaded, err := s.media.Upload(ctx, file, profileFolder)
	if err != nil {
		return nil, err
	}

	err = s.repo.UpdateUser(ctx, userID, bson.M{
		"profile_picture":    uploaded.URL,
		"profile_picture_id": uploaded.PublicID,
	})
	if err != nil {
		return nil, err
	}

	if user.ProfilePictureID != "" {
		if err := s.media.Destroy(ctx, user.ProfilePictureID); err != nil {
			logrus.WithError(err).Warn("Failed to delete previous profile picture")
		}
	}

	return s.repo.GetUserByID(ctx, userID)
}

// AddBookmark validates the polymorphic pair and stores it.
func (s *UserService) AddBookmark(ctx context.Context, userID primitive.ObjectID, resourceType, resourceID string) error {
	switch resourceType {
	case models.RelatedResource, models.RelatedStudyGroup, models.RelatedResourceRequest, models.RelatedCourse:
	default:
		return apperrors.BadRequest("invalid bookmark type %q", resourceType)
	}
	objID, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		return apperrors.BadRequest("invalid bookmark target ID")
	}
	return s.repo.AddBookmark(ctx, userID, models.Bookmark{ResourceType: resourceType, ResourceID: objID})
}

// RemoveBookmark removes a stored pair.
func (s *UserService) RemoveBookmark(ctx context.Context, userID primitive.ObjectID, resourceType, resourceID string) error {
	objID, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		return apperrors.BadRequest("invalid bookmark target ID")
	}
	return s.repo.RemoveBookmark(ctx, userID, models.Bookmark{ResourceType: resourceType, ResourceID: objID})
}

// EnrollCourse adds the user to an existing course.
func (s *UserService) EnrollCourse(ctx context.Context, userID primitive.ObjectID, courseID string) error {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return apperrors.BadRequest("invalid course ID")
	}
	if _, err := s.courseRepo.GetCourseByID(ctx, objID); err != nil {
		return apperrors.NotFound("course not found")
	}
	return s.repo.EnrollCourse(ctx, userID, objID)
}

// UnenrollCourse removes the user from a course.
func (s *UserService) UnenrollCourse(ctx context.Context, userID primitive.ObjectID, courseID string) error {
	objID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return apperrors.BadRequest("invalid course ID")
	}
	return s.repo.UnenrollCourse(ctx, userID, objID)
}

// GetAllUsers fetches a page of users. Admin only, enforced at the route.
func (s *UserService) GetAllUsers(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	users, err := s.repo.GetAllUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountUsers(ctx, time.Time{})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
