package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/repository"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/httputil"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceHandler handles HTTP requests related to course resources.
type ResourceHandler struct {
	Service *services.ResourceService
}

// NewResourceHandler creates a new instance of ResourceHandler.
func NewResourceHandler(service *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{Service: service}
}

// CreateResourceHandler accepts a multipart upload and creates the resource.
func (h *ResourceHandler) CreateResourceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	uploaderID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("missing resource file"))
		return
	}
	defer file.Close()

	input := services.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		CourseID:    r.FormValue("course_id"),
		Category:    r.FormValue("category"),
		File:        file,
		FileName:    header.Filename,
		FileSize:    header.Size,
		FileType:    header.Header.Get("Content-Type"),
	}

	resource, err := h.Service.CreateResource(r.Context(), input, uploaderID, claims.Username)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// GetResourcesHandler lists active resources with optional filters.
func (h *ResourceHandler) GetResourcesHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := httputil.PageParams(r)

	var filter repository.ResourceFilter
	if courseID := r.URL.Query().Get("course_id"); courseID != "" {
		objID, err := primitive.ObjectIDFromHex(courseID)
		if err != nil {
			httputil.RespondError(w, apperrors.BadRequest("invalid course ID"))
			return
		}
		filter.CourseID = &objID
	}
	if uploaderID := r.URL.Query().Get("uploader_id"); uploaderID != "" {
		objID, err := primitive.ObjectIDFromHex(uploaderID)
		if err != nil {
			httputil.RespondError(w, apperrors.BadRequest("invalid uploader ID"))
			return
		}
		filter.UploaderID = &objID
	}
	filter.Category = r.URL.Query().Get("category")
	filter.Search = r.URL.Query().Get("search")

	resources, total, err := h.Service.ListResources(r.Context(), filter, page, limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.NewPaginated(resources, total, page, limit))
}

// GetResourceHandler fetches a single resource.
func (h *ResourceHandler) GetResourceHandler(w http.ResponseWriter, r *http.Request) {
	resource, err := h.Service.GetResource(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resource)
}

// GetRecentResourcesHandler returns the newest approved resources.
func (h *ResourceHandler) GetRecentResourcesHandler(w http.ResponseWriter, r *http.Request) {
	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}
	resources, err := h.Service.GetRecentResources(r.Context(), limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resources)
}

// GetPinnedResourcesHandler returns resources pinned by admins.
func (h *ResourceHandler) GetPinnedResourcesHandler(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Service.GetPinnedResources(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resources)
}

type updateResourceRequest struct {
	Title       string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    string `json:"category,omitempty"`
}

// UpdateResourceHandler edits resource metadata. Owner or admin only.
func (h *ResourceHandler) UpdateResourceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	var req updateResourceRequest
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
	if req.Category != "" {
		update["category"] = req.Category
	}
	if len(update) == 0 {
		httputil.RespondError(w, apperrors.BadRequest("no fields to update"))
		return
	}

	resource, err := h.Service.UpdateResource(r.Context(), mux.Vars(r)["id"], actorID, claims.Role, update)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resource)
}

// DeleteResourceHandler soft deletes a resource. Owner or admin only.
func (h *ResourceHandler) DeleteResourceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	if err := h.Service.DeleteResource(r.Context(), mux.Vars(r)["id"], actorID, claims.Role); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "resource deleted successfully"})
}

// ToggleLikeHandler flips the caller's like on a resource.
func (h *ResourceHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	actorID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	liked, count, err := h.Service.ToggleLike(r.Context(), mux.Vars(r)["id"], actorID, claims.Username)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"liked":      liked,
		"like_count": count,
	})
}

type commentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

// AddCommentHandler appends a comment to a resource.
func (h *ResourceHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
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

	resource, err := h.Service.AddComment(r.Context(), mux.Vars(r)["id"], actorID, claims.Username, req.Text)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, resource)
}

// DownloadResourceHandler counts the download and redirects to the file URL.
func (h *ResourceHandler) DownloadResourceHandler(w http.ResponseWriter, r *http.Request) {
	fileURL, err := h.Service.Download(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	http.Redirect(w, r, fileURL, http.StatusFound)
}

// PinResourceHandler sets or clears the pinned flag. Admin only.
func (h *ResourceHandler) PinResourceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	resource, err := h.Service.SetPinned(r.Context(), mux.Vars(r)["id"], claims.Role, req.Pinned)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resource)
}

// ApproveResourceHandler approves a pending resource. Admin only.
func (h *ResourceHandler) ApproveResourceHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	resource, err := h.Service.Approve(r.Context(), mux.Vars(r)["id"], claims.Role)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resource)
}
