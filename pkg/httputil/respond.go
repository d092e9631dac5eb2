package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/campusshare/backend/internal/apperrors"
	"github.com/sirupsen/logrus"
)

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logrus.WithError(err).Error("Failed to encode JSON response")
		}
	}
}

// RespondError maps err to an HTTP status and writes a {"msg": ...} body.
// Unrecognized errors become a generic 500 so internals never leak.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindBadRequest:
		status = http.StatusBadRequest
	case apperrors.KindUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.KindForbidden:
		status = http.StatusForbidden
	default:
		logrus.WithError(err).Error("Unhandled server error")
		msg = "internal server error"
	}

	RespondJSON(w, status, map[string]string{"msg": msg})
}
