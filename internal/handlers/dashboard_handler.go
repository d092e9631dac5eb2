package handlers

import (
	"net/http"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/httputil"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardHandler handles HTTP requests for aggregated statistics.
type DashboardHandler struct {
	Service *services.DashboardService
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

// AdminStatsHandler returns platform-wide statistics. Admin only.
func (h *DashboardHandler) AdminStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetAdminStats(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// StudentStatsHandler returns the caller's personal dashboard.
func (h *DashboardHandler) StudentStatsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	stats, err := h.Service.GetStudentStats(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// ResourceStatsHandler returns aggregate resource statistics.
func (h *DashboardHandler) ResourceStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetResourceStats(r.Context())
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// UserActivityHandler returns a user's contribution summary. Admins can
// read anyone's; everyone else only their own.
func (h *DashboardHandler) UserActivityHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	claims := middleware.GetUserFromContext(r.Context())
	if claims.UserID != userID.Hex() && claims.Role != "admin" {
		httputil.RespondError(w, apperrors.Forbidden("you can only view your own activity"))
		return
	}
	activity, err := h.Service.GetUserActivity(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, activity)
}
