package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{RequestStatusOpen, RequestStatusInProgress, true},
		{RequestStatusOpen, RequestStatusFulfilled, true},
		{RequestStatusOpen, RequestStatusClosed, true},
		{RequestStatusOpen, RequestStatusOpen, false},
		{RequestStatusInProgress, RequestStatusFulfilled, true},
		{RequestStatusInProgress, RequestStatusClosed, true},
		{RequestStatusInProgress, RequestStatusOpen, false},
		{RequestStatusFulfilled, RequestStatusClosed, false},
		{RequestStatusFulfilled, RequestStatusOpen, false},
		{RequestStatusClosed, RequestStatusOpen, false},
		{RequestStatusClosed, RequestStatusFulfilled, false},
	}
	for _, tt := range tests {
		r := ResourceRequest{Status: tt.from}
		assert.Equal(t, tt.want, r.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
