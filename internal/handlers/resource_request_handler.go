package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/httputil"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceRequestHandler handles HTTP requests related to resource requests.
type ResourceRequestHandler struct {
	Service *services.ResourceRequestService
}

// NewResourceRequestHandler creates a new instance of ResourceRequestHandler.
func NewResourceRequestHandler(service *services.ResourceRequestService) *ResourceRequestHandler {
	return &ResourceRequestHandler{Service: service}
}

type createRequestRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	CourseID    string    `json:"course_id" validate:"required"`
	Priority    string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Deadline    time.Time `json:"deadline,omitempty"`
}

// CreateRequestHandler creates a new resource request.
func (h *ResourceRequestHandler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	requesterID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req createRequestRequest
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

	request := &models.ResourceRequest{
		Title:       req.Title,
		Description: req.Description,
		CourseID:    courseID,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
	}
	created, err := h.Service.CreateRequest(r.Context(), request, requesterID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetRequestsHandler lists requests filtered by status and priority.
func (h *ResourceRequestHandler) GetRequestsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)
	requests, total, err := h.Service.ListRequests(r.Context(),
		r.URL.Query().Get("status"), r.URL.Query().Get("priority"), page, limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.NewPaginated(requests, total, page, limit))
}

// GetRequestHandler fetches a single request.
func (h *ResourceRequestHandler) GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	request, err := h.Service.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, request)
}

type updateRequestRequest struct {
	Title       string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// UpdateRequestHandler edits request metadata. Requester or admin only.
func (h *ResourceRequestHandler) UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req updateRequestRequest
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
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Priority != "" {
		update["priority"] = req.Priority
	}
	if len(update) == 0 {
		httputil.RespondError(w, apperrors.BadRequest("no fields to update"))
		return
	}

	request, err := h.Service.UpdateRequest(r.Context(), mux.Vars(r)["id"], actorID, claims.Role, update)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, request)
}

// DeleteRequestHandler soft deletes a request. Requester or admin only.
func (h *ResourceRequestHandler) DeleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	if err := h.Service.DeleteRequest(r.Context(), mux.Vars(r)["id"], actorID, claims.Role); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "request deleted successfully"})
}

// AddCommentHandler appends a comment to a request.
func (h *ResourceRequestHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}

	request, err := h.Service.AddComment(r.Context(), mux.Vars(r)["id"], actorID, claims.Username, req.Text)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, request)
}

// ToggleUpvoteHandler flips the caller's upvote on a request.
func (h *ResourceRequestHandler) ToggleUpvoteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	upvoted, count, err := h.Service.ToggleUpvote(r.Context(), mux.Vars(r)["id"], actorID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"upvoted":      upvoted,
		"upvote_count": count,
	})
}

// FulfillRequestHandler links an existing resource to the request.
func (h *ResourceRequestHandler) FulfillRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req struct {
		ResourceID string `json:"resource_id" validate:"required"`
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

	request, err := h.Service.FulfillRequest(r.Context(), mux.Vars(r)["id"], actorID, claims.Username, req.ResourceID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, request)
}

// UpdateStatusHandler moves a request through its lifecycle.
func (h *ResourceRequestHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=open in-progress closed"`
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

	request, err := h.Service.UpdateStatus(r.Context(), mux.Vars(r)["id"], actorID, claims.Role, req.Status)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, request)
}
