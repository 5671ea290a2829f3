package v1

import (
	"net/http"

	"github.com/flexprice/playerseats/internal/api/dto"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/service"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/gin-gonic/gin"
)

type SeatHandler struct {
	seats       service.SeatService
	adjustments service.SeatAdjustmentService
	log         *logger.Logger
}

func NewSeatHandler(
	seats service.SeatService,
	adjustments service.SeatAdjustmentService,
	log *logger.Logger,
) *SeatHandler {
	return &SeatHandler{
		seats:       seats,
		adjustments: adjustments,
		log:         log,
	}
}

// @Summary Get seats
// @Description Current seat count and the limits of the subscriber's level
// @Tags Seats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Success 200 {object} dto.SeatSummaryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/seats [get]
func (h *SeatHandler) GetSeats(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.seats.GetSeats(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Preview a seat change
// @Description Prices a seat change without charging or saving anything
// @Tags Seats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Param request body dto.PreviewSeatsRequest true "Seat change"
// @Success 200 {object} dto.ProrationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/seats/preview [post]
func (h *SeatHandler) PreviewSeats(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.PreviewSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	oldSeats := 0
	if req.OldSeats != nil {
		oldSeats = *req.OldSeats
	} else {
		current, err := h.seats.GetSeats(ctx, id)
		if err != nil {
			c.Error(err)
			return
		}
		oldSeats = current.CurrentSeats
	}

	resp, err := h.adjustments.PreviewAdjustment(ctx, id, oldSeats, req.NewSeats)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Change seats
// @Description Applies a seat change, settling the prorated difference
// @Tags Seats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Param request body dto.AdjustSeatsRequest true "Seat change"
// @Success 200 {object} dto.AdjustmentOutcome
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 402 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/seats [put]
func (h *SeatHandler) AdjustSeats(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.AdjustSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}
	ctx := c.Request.Context()
	req.SubscriberID = id
	req.Actor = types.GetActor(ctx)

	outcome, err := h.adjustments.ApplyAdjustment(ctx, &req)
	if err != nil {
		h.log.Infow("seat change not applied",
			"subscriber_id", id,
			"state", outcome.State,
			"error_kind", outcome.ErrorKind)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// @Summary Seat history
// @Description Audit log of seat changes, newest first
// @Tags Seats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Param filter query types.ListFilter false "Pagination"
// @Success 200 {object} dto.ListSeatHistoryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/seats/history [get]
func (h *SeatHandler) ListHistory(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	filter := types.NewDefaultListFilter()
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(invalidBody(err))
		return
	}

	resp, err := h.seats.ListHistory(c.Request.Context(), id, filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Level features
// @Description Feature flags unlocked by the subscriber's level
// @Tags Seats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Success 200 {object} dto.FeaturesResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/features [get]
func (h *SeatHandler) GetFeatures(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.seats.GetFeatures(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
