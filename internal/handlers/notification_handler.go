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

// NotificationHandler handles HTTP requests related to notifications.
type NotificationHandler struct {
	Service *services.NotificationService
}

// NewNotificationHandler creates a new instance of NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// GetNotificationsHandler lists the caller's notifications, newest first.
func (h *NotificationHandler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	recipientID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	page, limit := httputil.PageParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, total, err := h.Service.GetUserNotifications(r.Context(), recipientID, unreadOnly, page, limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.NewPaginated(notifications, total, page, limit))
}

// GetUnreadCountHandler returns the caller's unread notification count.
func (h *NotificationHandler) GetUnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	recipientID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	count, err := h.Service.CountUnread(r.Context(), recipientID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

// MarkAsReadHandler marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	recipientID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid notification ID"))
		return
	}

	if err := h.Service.MarkNotificationAsRead(r.Context(), notifID, recipientID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "notification marked as read"})
}

// MarkAllAsReadHandler marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllAsReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	recipientID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}

	updated, err := h.Service.MarkAllAsRead(r.Context(), recipientID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

// DeleteNotificationHandler deletes one of the caller's notifications.
func (h *NotificationHandler) DeleteNotificationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	recipientID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid notification ID"))
		return
	}

	if err := h.Service.DeleteNotification(r.Context(), notifID, recipientID); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "notification deleted"})
}
