package router

import (
	"context"
	"errors"
	"net/http"
	"testing"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/httpclient"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	log := logger.NewNopLogger()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"service_unavailable", httpclient.NewError(http.StatusServiceUnavailable, nil), true},
		{"too_many_requests", httpclient.NewError(http.StatusTooManyRequests, nil), true},
		{"bad_request", httpclient.NewError(http.StatusBadRequest, nil), false},
		{"gone", httpclient.NewError(http.StatusGone, nil), false},
		{"deadline", context.DeadlineExceeded, true},
		{"validation", ierr.NewError("bad payload").Mark(ierr.ErrValidation), false},
		{"not_found", ierr.NewError("no listener").Mark(ierr.ErrNotFound), false},
		{"unknown", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldRetry(log, tt.err))
		})
	}
}
