package v1

import (
	"strconv"

	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/gin-gonic/gin"
)

func subscriberIDParam(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ierr.NewError("invalid subscriber id").
			WithHint("Subscriber ID must be a positive number").
			WithReportableDetails(map[string]any{
				"id": raw,
			}).
			Mark(ierr.ErrValidation)
	}
	return id, nil
}

func invalidBody(err error) error {
	return ierr.WithError(err).
		WithHint("Invalid request format").
		Mark(ierr.ErrValidation)
}
