package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/httputil"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourseHandler handles HTTP requests related to courses.
type CourseHandler struct {
	Service *services.CourseService
}

// NewCourseHandler creates a new instance of CourseHandler.
func NewCourseHandler(service *services.CourseService) *CourseHandler {
	return &CourseHandler{Service: service}
}

// GetCoursesHandler lists courses with optional department/semester filters.
func (h *CourseHandler) GetCoursesHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	courses, total, err := h.Service.ListCourses(r.Context(),
		r.URL.Query().Get("department"), r.URL.Query().Get("semester"), page, limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.NewPaginated(courses, total, page, limit))
}

// GetCourseHandler fetches a single course.
func (h *CourseHandler) GetCourseHandler(w http.ResponseWriter, r *http.Request) {
	course, err := h.Service.GetCourse(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, course)
}

type createCourseRequest struct {
	Code        string `json:"code" validate:"required,min=2,max=20"`
	Name        string `json:"name" validate:"required,min=3,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Department  string `json:"department,omitempty"`
	Semester    string `json:"semester,omitempty"`
	Instructor  string `json:"instructor,omitempty"`
}

// CreateCourseHandler creates a course. Admin only.
func (h *CourseHandler) CreateCourseHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	creatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}

	course := &models.Course{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Department:  req.Department,
		Semester:    req.Semester,
		Instructor:  req.Instructor,
	}
	created, err := h.Service.CreateCourse(r.Context(), course, creatorID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// UpdateCourseHandler edits course metadata. Admin only.
func (h *CourseHandler) UpdateCourseHandler(w http.ResponseWriter, r *http.Request) {
	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	update := bson.M{}
	if req.Code != "" {
		update["code"] = req.Code
	}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Department != "" {
		update["department"] = req.Department
	}
	if req.Semester != "" {
		update["semester"] = req.Semester
	}
	if req.Instructor != "" {
		update["instructor"] = req.Instructor
	}
	if len(update) == 0 {
		httputil.RespondError(w, apperrors.BadRequest("no fields to update"))
		return
	}

	course, err := h.Service.UpdateCourse(r.Context(), mux.Vars(r)["id"], update)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, course)
}

// DeleteCourseHandler soft deletes a course. Admin only.
func (h *CourseHandler) DeleteCourseHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteCourse(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "course deleted successfully"})
}
