package service

import (
	"context"
	"strconv"

	"github.com/flexprice/playerseats/internal/api/dto"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/webhook/payload"
	"github.com/shopspring/decimal"
)

// SeatService reads seat state and reacts to membership level changes
type SeatService interface {
	GetSeats(ctx context.Context, subscriberID int64) (*dto.SeatSummaryResponse, error)
	GetFeatures(ctx context.Context, subscriberID int64) (*dto.FeaturesResponse, error)
	ListHistory(ctx context.Context, subscriberID int64, filter types.ListFilter) (*dto.ListSeatHistoryResponse, error)

	// QuoteCheckout prices a seat count for a level before it is purchased. With a
	// subscriber the pending credits are deducted from the amount due without using them.
	QuoteCheckout(ctx context.Context, req *dto.CheckoutQuoteRequest) (*dto.CheckoutQuoteResponse, error)

	// HandleMembershipChange resets the seats of a subscriber who moved to another
	// level to the checkout seat count, or the level default. Level 0 removes the
	// seats and voids unused credits.
	HandleMembershipChange(ctx context.Context, req *dto.MembershipChangeRequest) (*dto.MembershipChangeResponse, error)
}

type seatService struct {
	ServiceParams
	credits CreditService
}

func NewSeatService(params ServiceParams) SeatService {
	return &seatService{
		ServiceParams: params,
		credits:       NewCreditService(params),
	}
}

func (s *seatService) GetSeats(ctx context.Context, subscriberID int64) (*dto.SeatSummaryResponse, error) {
	sub, err := s.subscriberWithMembership(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyFor(ctx, sub.LevelID)
	if err != nil {
		return nil, err
	}

	state, err := s.stateFor(ctx, sub.ID, policy)
	if err != nil {
		return nil, err
	}

	return dto.NewSeatSummaryResponse(state, policy, s.maxSeatsCap()), nil
}

func (s *seatService) GetFeatures(ctx context.Context, subscriberID int64) (*dto.FeaturesResponse, error) {
	sub, err := s.subscriberWithMembership(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyFor(ctx, sub.LevelID)
	if err != nil {
		return nil, err
	}

	features := []string(policy.Features)
	if features == nil {
		features = []string{}
	}

	return &dto.FeaturesResponse{
		SubscriberID: sub.ID,
		LevelID:      sub.LevelID,
		Features:     features,
	}, nil
}

func (s *seatService) ListHistory(ctx context.Context, subscriberID int64, filter types.ListFilter) (*dto.ListSeatHistoryResponse, error) {
	entries, err := s.AuditRepo.List(ctx, subscriberID, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.AuditRepo.Count(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	resp := types.NewListResponse(entries, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *seatService) QuoteCheckout(ctx context.Context, req *dto.CheckoutQuoteRequest) (*dto.CheckoutQuoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy, err := s.policyFor(ctx, req.LevelID)
	if err != nil {
		return nil, err
	}

	maxSeats := policy.EffectiveMax(s.maxSeatsCap())
	if req.Seats < policy.DefaultSeats || req.Seats > maxSeats {
		return nil, ierr.NewError("seat count outside level limits").
			WithHintf("Please choose between %d and %d accounts", policy.DefaultSeats, maxSeats).
			WithReportableDetails(map[string]any{
				"seats":         req.Seats,
				"default_seats": policy.DefaultSeats,
				"max_seats":     maxSeats,
			}).
			Mark(ierr.ErrValidation)
	}

	total := policy.CheckoutTotal(req.Seats)
	resp := &dto.CheckoutQuoteResponse{
		LevelID:              policy.LevelID,
		Seats:                req.Seats,
		DefaultSeats:         policy.DefaultSeats,
		MaxSeats:             maxSeats,
		ExtraSeats:           policy.ExtraSeats(req.Seats),
		AnnualPricePerSeat:   policy.AnnualPricePerSeat(),
		AdditionalAnnualCost: policy.AdditionalAnnualCost(req.Seats),
		LevelPrice:           policy.BillingAmount,
		Total:                total,
		CreditAvailable:      decimal.Zero,
		CreditApplied:        decimal.Zero,
		AmountDue:            total,
		Currency:             s.Config.Seats.Currency,
	}
	if req.SubscriberID == 0 {
		return resp, nil
	}

	// quoting only reads the credits, they are consumed when the order completes
	available, err := s.credits.TotalAvailable(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}
	resp.CreditAvailable = available
	resp.CreditApplied = decimal.Min(available, total)
	resp.AmountDue = total.Sub(resp.CreditApplied)

	return resp, nil
}

func (s *seatService) HandleMembershipChange(ctx context.Context, req *dto.MembershipChangeRequest) (*dto.MembershipChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriberRepo.Get(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	resp := &dto.MembershipChangeResponse{
		SubscriberID: sub.ID,
		OldLevelID:   sub.LevelID,
		NewLevelID:   req.LevelID,
	}

	if req.LevelID == 0 {
		if err := s.SubscriberRepo.UpdateLevel(ctx, sub.ID, req.LevelID); err != nil {
			return nil, err
		}
		return s.removeSeats(ctx, resp)
	}

	policy, err := s.policyFor(ctx, req.LevelID)
	if err != nil {
		return nil, err
	}

	seats, err := s.checkoutSeats(policy, req.Seats)
	if err != nil {
		return nil, err
	}

	if err := s.SubscriberRepo.UpdateLevel(ctx, sub.ID, req.LevelID); err != nil {
		return nil, err
	}

	state, err := s.SeatRepo.Get(ctx, sub.ID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		state = seat.NewDefaultState(sub.ID, policy)
	}

	at := s.now()
	state.LevelID = req.LevelID
	state.CurrentSeats = seats
	state.LastAdjustmentAt = &at
	if err := s.SeatRepo.Save(ctx, state); err != nil {
		return nil, persistenceError(err)
	}
	resp.Seats = state.CurrentSeats
	resp.NextRenewalAmount = policy.RenewalAmount(state.CurrentSeats)

	s.Logger.Infow("seats reset after membership change",
		"subscriber_id", sub.ID,
		"old_level_id", resp.OldLevelID,
		"new_level_id", resp.NewLevelID,
		"seats", resp.Seats)

	if req.ApplyCredits {
		resp.Credits = s.applyCheckoutCredits(ctx, sub.ID, policy.CheckoutTotal(resp.Seats))
	}

	s.publishEvent(ctx, types.WebhookEventSeatsReset, payload.SeatsReset{
		SubscriberID: sub.ID,
		OldLevelID:   resp.OldLevelID,
		NewLevelID:   resp.NewLevelID,
		Seats:        resp.Seats,
	})

	return resp, nil
}

// checkoutSeats is the seat count a new membership starts with. Fewer than the
// included seats is rejected, more than the level allows is cut to its maximum.
func (s *seatService) checkoutSeats(policy *seatpolicy.SeatPolicy, requested *int) (int, error) {
	if requested == nil {
		return policy.ClampSeats(policy.DefaultSeats, s.maxSeatsCap()), nil
	}
	if *requested < policy.DefaultSeats {
		return 0, ierr.NewError("checkout seats below included seats").
			WithHintf("Minimum %d accounts required", policy.DefaultSeats).
			WithReportableDetails(map[string]any{
				"seats":         *requested,
				"default_seats": policy.DefaultSeats,
			}).
			MarkAlso(ierr.ErrValidation).
			Mark(seat.ErrBelowMinimum)
	}
	return policy.ClampSeats(*requested, s.maxSeatsCap()), nil
}

// applyCheckoutCredits pays the checkout total with pending credits. The membership
// change is already saved, so a failure leaves the credits available and is only reported.
func (s *seatService) applyCheckoutCredits(ctx context.Context, subscriberID int64, total decimal.Decimal) *dto.ApplyCreditsResult {
	result, err := s.credits.ApplyCredits(ctx, subscriberID, total)
	if err != nil {
		s.Logger.Errorw("failed to apply pending credits to checkout",
			"error", err,
			"subscriber_id", subscriberID,
			"total", total)
		s.Sentry.CaptureWithContext(ctx, err, map[string]string{
			"subscriber_id": strconv.FormatInt(subscriberID, 10),
			"operation":     "apply_checkout_credits",
		})
		return nil
	}
	return result
}

func (s *seatService) removeSeats(ctx context.Context, resp *dto.MembershipChangeResponse) (*dto.MembershipChangeResponse, error) {
	if err := s.SeatRepo.Delete(ctx, resp.SubscriberID); err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	voided, err := s.CreditRepo.VoidAvailable(ctx, resp.SubscriberID)
	if err != nil {
		return nil, err
	}

	resp.Removed = true
	resp.CreditsVoided = voided

	s.Logger.Infow("seats removed after membership cancellation",
		"subscriber_id", resp.SubscriberID,
		"old_level_id", resp.OldLevelID,
		"credits_voided", voided)

	s.publishEvent(ctx, types.WebhookEventMembershipRemoved, payload.MembershipRemoved{
		SubscriberID:  resp.SubscriberID,
		OldLevelID:    resp.OldLevelID,
		CreditsVoided: voided,
	})

	return resp, nil
}
