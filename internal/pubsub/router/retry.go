package router

import (
	"context"
	"errors"
	"net"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/httpclient"
	"github.com/flexprice/playerseats/internal/logger"
)

// ShouldRetry decides whether a failed delivery is handed back to the retry middleware.
// Listener rejections and business errors are final.
func ShouldRetry(logger *logger.Logger, err error) bool {
	if err == nil {
		return false
	}

	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		if httpErr.Retryable() {
			logger.Debugw("retrying due to http error", "status_code", httpErr.StatusCode, "error", httpErr)
			return true
		}
		logger.Debugw("non-retryable http error", "status_code", httpErr.StatusCode, "error", httpErr)
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if ierr.IsValidation(err) ||
		ierr.IsNotFound(err) ||
		ierr.IsPermissionDenied(err) {
		return false
	}

	return true
}
