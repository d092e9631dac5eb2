package httputil

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestPageParamsDefaultsAndCaps(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int64
		wantLimit int64
	}{
		{"defaults", "", 1, 10},
		{"explicit", "?page=3&limit=25", 3, 25},
		{"capped", "?limit=500", 1, 100},
		{"garbage", "?page=abc&limit=-5", 1, 10},
		{"zero", "?page=0&limit=0", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/resources"+tt.query, nil)
			page, limit := PageParams(r)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPaginatedPageCount(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 25, 2, 10)
	assert.Equal(t, int64(3), p.NumOfPages)
	assert.Equal(t, int64(2), p.CurrentPage)
	assert.Equal(t, int64(25), p.Total)

	p = NewPaginated([]int{}, 30, 1, 10)
	assert.Equal(t, int64(3), p.NumOfPages)

	p = NewPaginated([]int{}, 0, 1, 10)
	assert.Equal(t, int64(0), p.NumOfPages)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{apperrors.NotFound("resource not found"), 404, "resource not found"},
		{apperrors.BadRequest("invalid category %q", "memes"), 400, `invalid category "memes"`},
		{apperrors.Unauthenticated("invalid email or password"), 401, "invalid email or password"},
		{apperrors.Forbidden("admins only"), 403, "admins only"},
		{errors.New("mongo: socket closed"), 500, "internal server error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		RespondError(rec, tt.err)
		assert.Equal(t, tt.wantStatus, rec.Code)

		var body map[string]string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.wantMsg, body["msg"])
	}
}
