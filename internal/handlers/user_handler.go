package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/config"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/httputil"
	jwtutil "github.com/campusshare/backend/pkg/jwt"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// UserHandler handles HTTP requests related to users and authentication.
type UserHandler struct {
	Service *services.UserService
	cfg     *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{Service: service, cfg: cfg}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Major    string `json:"major,omitempty"`
	Year     int    `json:"year,omitempty" validate:"omitempty,min=1,max=8"`
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: req.Password,
		Major:          req.Major,
		Year:           req.Year,
	}
	created, err := h.Service.RegisterUser(r.Context(), user)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, created.Public())
}

// VerifyEmailHandler consumes the token from the verification link.
func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.RespondError(w, apperrors.BadRequest("missing verification token"))
		return
	}
	if err := h.Service.VerifyEmail(r.Context(), token); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "email verified successfully"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginUserHandler authenticates a user and returns a JWT.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, user.Email, user.Role, h.cfg.JWTSecret, h.cfg.TokenExpiry)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate token")
		httputil.RespondError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}

// RequestPasswordResetHandler sends the reset link.
func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}
	if err := h.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "password reset email sent"})
}

// ResetPasswordHandler consumes the reset token and sets the new password.
func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}
	if err := h.Service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "password reset successfully"})
}

// GetMeHandler returns the authenticated user's full profile.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}

// GetUserHandler returns another user's public profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user.Public())
}

type updateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Major    string `json:"major,omitempty"`
	Year     int    `json:"year,omitempty" validate:"omitempty,min=1,max=8"`
	Bio      string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// UpdateProfileHandler applies the caller's own profile edits.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}

	update := bson.M{}
	if req.Username != "" {
		update["username"] = req.Username
	}
	if req.Major != "" {
		update["major"] = req.Major
	}
	if req.Year != 0 {
		update["year"] = req.Year
	}
	if req.Bio != "" {
		update["bio"] = req.Bio
	}
	if len(update) == 0 {
		httputil.RespondError(w, apperrors.BadRequest("no fields to update"))
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}

// UploadProfilePictureHandler accepts a multipart image upload.
func (h *UserHandler) UploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("missing image file"))
		return
	}
	defer file.Close()

	user, err := h.Service.UploadProfilePicture(r.Context(), userID, file)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}

type bookmarkRequest struct {
	ResourceType string `json:"resource_type" validate:"required"`
	ResourceID   string `json:"resource_id" validate:"required"`
}

// AddBookmarkHandler saves a polymorphic bookmark for the caller.
func (h *UserHandler) AddBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}
	if err := h.Service.AddBookmark(r.Context(), userID, req.ResourceType, req.ResourceID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "bookmark added"})
}

// RemoveBookmarkHandler removes a stored bookmark.
func (h *UserHandler) RemoveBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := h.Service.RemoveBookmark(r.Context(), userID, req.ResourceType, req.ResourceID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "bookmark removed"})
}

// EnrollCourseHandler enrolls the caller in a course.
func (h *UserHandler) EnrollCourseHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	courseID := mux.Vars(r)["courseId"]
	if err := h.Service.EnrollCourse(r.Context(), userID, courseID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "enrolled in course"})
}

// UnenrollCourseHandler removes the caller from a course.
func (h *UserHandler) UnenrollCourseHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	courseID := mux.Vars(r)["courseId"]
	if err := h.Service.UnenrollCourse(r.Context(), userID, courseID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "unenrolled from course"})
}

// GetAllUsersHandler lists users. Admin only.
func (h *UserHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	users, total, err := h.Service.GetAllUsers(r.Context(), page, limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.NewPaginated(public, total, page, limit))
}
