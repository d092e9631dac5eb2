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

// StudyGroupHandler handles HTTP requests related to study groups.
type StudyGroupHandler struct {
	Service *services.StudyGroupService
}

// NewStudyGroupHandler creates a new instance of StudyGroupHandler.
func NewStudyGroupHandler(service *services.StudyGroupService) *StudyGroupHandler {
	return &StudyGroupHandler{Service: service}
}

type createStudyGroupRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	CourseID    string `json:"course_id" validate:"required"`
	MaxMembers  int    `json:"max_members" validate:"required,min=2,max=100"`
	MeetingTime string `json:"meeting_time,omitempty"`
	Location    string `json:"location,omitempty"`
}

// CreateStudyGroupHandler creates a group with the caller as first member.
func (h *StudyGroupHandler) CreateStudyGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	creatorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req createStudyGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid course ID"))
		return
	}

	group := &models.StudyGroup{
		Name:        req.Name,
		Description: req.Description,
		CourseID:    courseID,
		MaxMembers:  req.MaxMembers,
		MeetingTime: req.MeetingTime,
		Location:    req.Location,
	}
	created, err := h.Service.CreateStudyGroup(r.Context(), group, creatorID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetStudyGroupsHandler lists active groups, optionally per course.
func (h *StudyGroupHandler) GetStudyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	groups, total, err := h.Service.ListStudyGroups(r.Context(), r.URL.Query().Get("course_id"), page, limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.NewPaginated(groups, total, page, limit))
}

// SearchStudyGroupsHandler searches groups by name.
func (h *StudyGroupHandler) SearchStudyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.RespondError(w, apperrors.BadRequest("missing search query"))
		return
	}
	groups, err := h.Service.SearchStudyGroups(r.Context(), query)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, groups)
}

// GetMyGroupsHandler lists the caller's groups.
func (h *StudyGroupHandler) GetMyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	groups, err := h.Service.GetMyGroups(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, groups)
}

// GetStudyGroupHandler fetches a single group.
func (h *StudyGroupHandler) GetStudyGroupHandler(w http.ResponseWriter, r *http.Request) {
	group, err := h.Service.GetStudyGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, group)
}

type updateStudyGroupRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	MeetingTime string `json:"meeting_time,omitempty"`
	Location    string `json:"location,omitempty"`
}

// UpdateStudyGroupHandler edits group metadata. Creator or admin only.
func (h *StudyGroupHandler) UpdateStudyGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req updateStudyGroupRequest
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
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.MeetingTime != "" {
		update["meeting_time"] = req.MeetingTime
	}
	if req.Location != "" {
		update["location"] = req.Location
	}
	if len(update) == 0 {
		httputil.RespondError(w, apperrors.BadRequest("no fields to update"))
		return
	}

	group, err := h.Service.UpdateStudyGroup(r.Context(), mux.Vars(r)["id"], actorID, claims.Role, update)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, group)
}

// DeleteStudyGroupHandler soft deletes a group. Creator or admin only.
func (h *StudyGroupHandler) DeleteStudyGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	if err := h.Service.DeleteStudyGroup(r.Context(), mux.Vars(r)["id"], actorID, claims.Role); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "study group deleted successfully"})
}

// JoinStudyGroupHandler adds the caller to a group.
func (h *StudyGroupHandler) JoinStudyGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	group, err := h.Service.JoinStudyGroup(r.Context(), mux.Vars(r)["id"], actorID, claims.Username)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, group)
}

// LeaveStudyGroupHandler removes the caller from a group.
func (h *StudyGroupHandler) LeaveStudyGroupHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	if err := h.Service.LeaveStudyGroup(r.Context(), mux.Vars(r)["id"], actorID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "left study group"})
}
