package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/campusshare/backend/internal/models"
	"github.com/campusshare/backend/internal/services"
	"github.com/campusshare/backend/pkg/httputil"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AchievementHandler handles HTTP requests related to achievements.
type AchievementHandler struct {
	Service *services.AchievementService
}

// NewAchievementHandler creates a new instance of AchievementHandler.
func NewAchievementHandler(service *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{Service: service}
}

type createAchievementRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Type        string `json:"type" validate:"required"`
	Icon        string `json:"icon,omitempty"`
	Rarity      string `json:"rarity" validate:"required"`
	Count       int64  `json:"count" validate:"required,min=1"`
	Timeframe   string `json:"timeframe,omitempty"`
}

// CreateAchievementHandler defines a new achievement. Admin only.
func (h *AchievementHandler) CreateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var req createAchievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid request payload"))
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		httputil.RespondError(w, apperrors.BadRequest("validation failed: %v", err))
		return
	}

	achievement := &models.Achievement{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Icon:        req.Icon,
		Rarity:      req.Rarity,
		Criteria: models.AchievementCriteria{
			Count:     req.Count,
			Timeframe: req.Timeframe,
		},
	}
	created, err := h.Service.CreateAchievement(r.Context(), achievement)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, created)
}

// GetAchievementsHandler lists active achievement definitions.
func (h *AchievementHandler) GetAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.Service.GetActiveAchievements(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, achievements)
}

type updateAchievementRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	Icon        string `json:"icon,omitempty"`
	Rarity      string `json:"rarity,omitempty"`
}

// UpdateAchievementHandler edits an achievement definition. Admin only.
func (h *AchievementHandler) UpdateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var req updateAchievementRequest
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
	if req.Icon != "" {
		update["icon"] = req.Icon
	}
	if req.Rarity != "" {
		if !models.AllowedRarities[req.Rarity] {
			httputil.RespondError(w, apperrors.BadRequest("invalid rarity %q", req.Rarity))
			return
		}
		update["rarity"] = req.Rarity
	}
	if len(update) == 0 {
		httputil.RespondError(w, apperrors.BadRequest("no fields to update"))
		return
	}

	if err := h.Service.UpdateAchievement(r.Context(), mux.Vars(r)["id"], update); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "achievement updated"})
}

// DeleteAchievementHandler retires an achievement definition. Admin only.
func (h *AchievementHandler) DeleteAchievementHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteAchievement(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "achievement deleted"})
}

// GetMyAchievementsHandler lists the caller's earned achievements.
func (h *AchievementHandler) GetMyAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	earned, err := h.Service.GetUserAchievements(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, earned)
}

// GetUserAchievementsHandler lists another user's earned achievements.
func (h *AchievementHandler) GetUserAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		httputil.RespondError(w, apperrors.BadRequest("invalid user ID"))
		return
	}
	earned, err := h.Service.GetUserAchievements(r.Context(), userID)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, earned)
}

// LeaderboardHandler returns users ranked by earned achievements.
func (h *AchievementHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	entries, err := h.Service.Leaderboard(r.Context(), limit)
	if err != nil {
		httputil.RespondError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, entries)
}
