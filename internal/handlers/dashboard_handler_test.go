package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	jwtutil "github.com/campusshare/backend/pkg/jwt"
	"github.com/campusshare/backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func serveUserActivity(t *testing.T, target string, claims *jwtutil.Claims) *httptest.ResponseRecorder {
	t.Helper()
	h := NewDashboardHandler(nil)
	router := mux.NewRouter()
	router.HandleFunc("/users/{id}/activity", h.UserActivityHandler).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), claims))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUserActivityForbiddenForOtherUsers(t *testing.T) {
	target := primitive.NewObjectID()
	claims := &jwtutil.Claims{
		UserID:   primitive.NewObjectID().Hex(),
		Username: "bob",
		Role:     "student",
	}

	rec := serveUserActivity(t, "/users/"+target.Hex()+"/activity", claims)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserActivityRejectsInvalidID(t *testing.T) {
	claims := &jwtutil.Claims{UserID: primitive.NewObjectID().Hex(), Role: "admin"}

	rec := serveUserActivity(t, "/users/not-an-id/activity", claims)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
