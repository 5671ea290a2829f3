package v1

import (
	"net/http"

	"github.com/flexprice/playerseats/internal/api/dto"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/service"
	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	seats   service.SeatService
	credits service.CreditService
	log     *logger.Logger
}

func NewMembershipHandler(seats service.SeatService, credits service.CreditService, log *logger.Logger) *MembershipHandler {
	return &MembershipHandler{
		seats:   seats,
		credits: credits,
		log:     log,
	}
}

// @Summary Change membership level
// @Description Sets seats to the checkout seat count or the new level's default. With apply_credits the checkout total is paid from pending credits. Level 0 cancels and removes seats and unused credits.
// @Tags Membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Param request body dto.MembershipChangeRequest true "New level"
// @Success 200 {object} dto.MembershipChangeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/membership [post]
func (h *MembershipHandler) ChangeMembership(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.MembershipChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}
	req.SubscriberID = id

	resp, err := h.seats.HandleMembershipChange(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Pending credits
// @Description Unused credits from seat reductions, oldest first
// @Tags Membership
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Success 200 {object} dto.CreditsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/credits [get]
func (h *MembershipHandler) GetCredits(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.credits.GetCredits(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Checkout quote
// @Description Price of a seat count for a level before purchase
// @Tags Membership
// @Accept json
// @Produce json
// @Param request body dto.CheckoutQuoteRequest true "Level and seats"
// @Success 200 {object} dto.CheckoutQuoteResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /checkout/quote [post]
func (h *MembershipHandler) QuoteCheckout(c *gin.Context) {
	var req dto.CheckoutQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}

	resp, err := h.seats.QuoteCheckout(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Subscriber checkout quote
// @Description Price of a seat count for a level with the subscriber's pending credits deducted. Credits are only used once the membership change completes the order.
// @Tags Membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subscriber ID"
// @Param request body dto.CheckoutQuoteRequest true "Level and seats"
// @Success 200 {object} dto.CheckoutQuoteResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /subscribers/{id}/checkout/quote [post]
func (h *MembershipHandler) QuoteSubscriberCheckout(c *gin.Context) {
	id, err := subscriberIDParam(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req dto.CheckoutQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(invalidBody(err))
		return
	}
	req.SubscriberID = id

	resp, err := h.seats.QuoteCheckout(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
