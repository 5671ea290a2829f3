package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/playerseats/internal/api/dto"
	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/flexprice/playerseats/internal/domain/payment"
	"github.com/flexprice/playerseats/internal/domain/proration"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/idempotency"
	"github.com/flexprice/playerseats/internal/sentry"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/flexprice/playerseats/internal/webhook/payload"
)

// SeatAdjustmentService prices and applies seat changes
type SeatAdjustmentService interface {
	// PreviewAdjustment prices a change from oldSeats to newSeats without side effects
	PreviewAdjustment(ctx context.Context, subscriberID int64, oldSeats, newSeats int) (*dto.ProrationResponse, error)

	// ApplyAdjustment runs a seat change through validation, pricing, payment,
	// persistence and notification. The outcome is always populated, the error
	// is set whenever the change was rejected or failed.
	ApplyAdjustment(ctx context.Context, req *dto.AdjustSeatsRequest) (*dto.AdjustmentOutcome, error)
}

type seatAdjustmentService struct {
	ServiceParams
	calculator  proration.Calculator
	resolver    PaymentMethodResolver
	cycles      BillingCycleProvider
	idempotency *idempotency.Generator
}

func NewSeatAdjustmentService(params ServiceParams) SeatAdjustmentService {
	return &seatAdjustmentService{
		ServiceParams: params,
		calculator:    proration.NewCalculator(proration.CalculatorType(params.Config.Seats.CalculatorType)),
		resolver:      NewPaymentMethodResolver(params),
		cycles:        NewBillingCycleProvider(params),
		idempotency:   idempotency.NewGenerator(),
	}
}

func (s *seatAdjustmentService) PreviewAdjustment(ctx context.Context, subscriberID int64, oldSeats, newSeats int) (*dto.ProrationResponse, error) {
	sub, err := s.subscriberWithMembership(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policyFor(ctx, sub.LevelID)
	if err != nil {
		return nil, err
	}

	if err := s.validateBounds(policy, newSeats); err != nil {
		return nil, err
	}

	result, err := s.price(ctx, sub, policy, oldSeats, newSeats)
	if err != nil {
		return nil, err
	}

	return s.prorationResponse(result, policy), nil
}

func (s *seatAdjustmentService) ApplyAdjustment(ctx context.Context, req *dto.AdjustSeatsRequest) (*dto.AdjustmentOutcome, error) {
	outcome := dto.NewAdjustmentOutcome(req.SubscriberID, req.NewSeats)

	if err := req.Validate(); err != nil {
		return s.reject(ctx, outcome, err)
	}

	sub, err := s.subscriberWithMembership(ctx, req.SubscriberID)
	if err != nil {
		if ierr.Is(err, seat.ErrNoMembership) {
			return s.reject(ctx, outcome, err)
		}
		return s.fail(ctx, outcome, err)
	}

	policy, err := s.policyFor(ctx, sub.LevelID)
	if err != nil {
		return s.fail(ctx, outcome, err)
	}

	state, err := s.stateFor(ctx, sub.ID, policy)
	if err != nil {
		return s.fail(ctx, outcome, err)
	}
	outcome.OldSeats = state.CurrentSeats

	// validated
	if err := s.validateBounds(policy, req.NewSeats); err != nil {
		return s.reject(ctx, outcome, err)
	}
	if req.NewSeats == state.CurrentSeats {
		return s.reject(ctx, outcome, ierr.NewError("seat count is unchanged").
			WithHintf("You already have %d accounts", state.CurrentSeats).
			WithReportableDetails(map[string]any{
				"current_seats": state.CurrentSeats,
			}).
			MarkAlso(ierr.ErrValidation).
			Mark(seat.ErrNoChange))
	}
	outcome.Transition(types.AdjustmentStateValidated)

	// priced
	result, err := s.price(ctx, sub, policy, state.CurrentSeats, req.NewSeats)
	if err != nil {
		return s.fail(ctx, outcome, err)
	}
	outcome.Proration = s.prorationResponse(result, policy)
	outcome.Transition(types.AdjustmentStatePriced)

	// payment
	switch {
	case result.IsCharge():
		outcome.PaymentMethod = s.resolver.Resolve(ctx, sub.ID)
		if outcome.PaymentMethod == types.PaymentMethodRecurringCard {
			charge, err := s.chargeNow(ctx, sub, state.Version, result)
			if err != nil {
				return s.fail(ctx, outcome, payment.WrapError(err, "The payment for the additional accounts could not be completed"))
			}
			outcome.PaymentRef = charge.Ref
		} else {
			doc, err := s.issueDocument(ctx, sub, state.Version, result)
			if err != nil {
				s.deferPayment(ctx, outcome, sub, result, err)
			} else {
				outcome.PaymentRef = doc.Ref
				outcome.PaymentURL = doc.URL
			}
		}
		outcome.Transition(types.AdjustmentStatePaymentApplied)
	case result.IsCredit():
		outcome.PaymentMethod = s.resolver.Resolve(ctx, sub.ID)
		s.recordCredit(ctx, outcome, sub, state.Version, result)
		outcome.Transition(types.AdjustmentStateCreditRecorded)
	default:
		outcome.Transition(types.AdjustmentStateNoOp)
	}

	// persisted
	at := s.now()
	oldSeats := state.CurrentSeats
	version := state.Version
	state.LevelID = sub.LevelID
	state.CurrentSeats = req.NewSeats
	state.LastAdjustmentAt = &at
	if err := s.SeatRepo.Save(ctx, state); err != nil {
		return s.fail(ctx, outcome, persistenceError(err))
	}

	entry := &audit.Entry{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_ENTRY),
		SubscriberID:    sub.ID,
		Timestamp:       at,
		OldSeats:        oldSeats,
		NewSeats:        req.NewSeats,
		ProrationAmount: result.Amount,
		ProrationKind:   result.Kind,
		ActorID:         req.Actor.ID,
		ActorType:       req.Actor.Type,
		PaymentMethod:   outcome.PaymentMethod,
		PaymentRef:      outcome.PaymentRef,
	}
	if err := s.AuditRepo.Append(ctx, entry, s.Config.Seats.AuditLogLimit); err != nil {
		s.Logger.Errorw("failed to append seat audit entry, the saved seat change stands",
			"error", err,
			"subscriber_id", sub.ID,
			"old_seats", oldSeats,
			"new_seats", req.NewSeats)
	}
	outcome.Transition(types.AdjustmentStatePersisted)

	s.syncRecurringSeats(ctx, sub, policy, oldSeats, req.NewSeats, version)

	// notified
	s.publishEvent(ctx, types.WebhookEventSeatsUpdated, payload.SeatsUpdated{
		SubscriberID:    sub.ID,
		LevelID:         sub.LevelID,
		OldSeats:        oldSeats,
		NewSeats:        req.NewSeats,
		ProrationAmount: result.Amount,
		ProrationKind:   result.Kind,
		Currency:        s.Config.Seats.Currency,
		PaymentMethod:   outcome.PaymentMethod,
		PaymentRef:      outcome.PaymentRef,
		Actor:           req.Actor,
		Message:         outcome.Proration.Message,
	})
	outcome.Transition(types.AdjustmentStateNotified)

	outcome.Transition(types.AdjustmentStateDone)

	s.Logger.Infow("seat adjustment applied",
		"subscriber_id", sub.ID,
		"old_seats", oldSeats,
		"new_seats", req.NewSeats,
		"amount", result.Amount,
		"kind", result.Kind,
		"payment_method", outcome.PaymentMethod,
		"actor_type", req.Actor.Type)

	return outcome, nil
}

// validateBounds checks a seat count against the level limits
func (s *seatAdjustmentService) validateBounds(policy *seatpolicy.SeatPolicy, newSeats int) error {
	if newSeats < policy.DefaultSeats {
		return ierr.NewError("seat count below included seats").
			WithHintf("Minimum %d accounts required", policy.DefaultSeats).
			WithReportableDetails(map[string]any{
				"new_seats":     newSeats,
				"default_seats": policy.DefaultSeats,
			}).
			MarkAlso(ierr.ErrValidation).
			Mark(seat.ErrBelowMinimum)
	}

	maxSeats := policy.EffectiveMax(s.maxSeatsCap())
	if newSeats > maxSeats {
		return ierr.NewError("seat count above maximum").
			WithHintf("Maximum %d accounts allowed", maxSeats).
			WithReportableDetails(map[string]any{
				"new_seats": newSeats,
				"max_seats": maxSeats,
			}).
			MarkAlso(ierr.ErrValidation).
			Mark(seat.ErrAboveMaximum)
	}

	return nil
}

func (s *seatAdjustmentService) price(
	ctx context.Context,
	sub *subscriber.Subscriber,
	policy *seatpolicy.SeatPolicy,
	oldSeats, newSeats int,
) (*proration.ProrationResult, error) {
	cycle, err := s.cycles.GetCycle(ctx, sub)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return s.calculator.Calculate(ctx, proration.ProrationParams{
		OldSeats: oldSeats,
		NewSeats: newSeats,
		Policy:   policy,
		Cycle:    cycle.RollForward(now),
		Now:      now,
	})
}

func (s *seatAdjustmentService) prorationResponse(result *proration.ProrationResult, policy *seatpolicy.SeatPolicy) *dto.ProrationResponse {
	return dto.NewProrationResponse(result, policy.PricePerSeatMonthly, s.Config.Seats.Currency, proration.MessageOptions{
		CurrencySymbol: s.Config.Seats.CurrencySymbol,
		Locale:         s.Config.Seats.Locale,
	})
}

// paymentRequest keys the gateway call on the seat state version it changes, so a retried
// submission reuses the key and every persisted change gets a new one.
func (s *seatAdjustmentService) paymentRequest(sub *subscriber.Subscriber, version int64, result *proration.ProrationResult, scope idempotency.Scope) *payment.Request {
	days := result.DaysRemaining.Round(0).IntPart()
	amount := result.Amount.Abs()

	return &payment.Request{
		SubscriberID: sub.ID,
		Amount:       amount,
		Currency:     s.Config.Seats.Currency,
		Description: fmt.Sprintf("Player account adjustment: %d to %d accounts (%d days remaining)",
			result.OldSeats, result.NewSeats, days),
		IdempotencyKey: s.idempotency.GenerateKey(scope, map[string]interface{}{
			"subscriber_id": sub.ID,
			"state_version": version,
			"old_seats":     result.OldSeats,
			"new_seats":     result.NewSeats,
			"amount":        amount.StringFixed(2),
			"period_end":    result.PeriodEndAt.Unix(),
		}),
		Metadata: map[string]string{
			"subscriber_id":  strconv.FormatInt(sub.ID, 10),
			"type":           "proration_adjustment",
			"old_accounts":   strconv.Itoa(result.OldSeats),
			"new_accounts":   strconv.Itoa(result.NewSeats),
			"days_remaining": strconv.FormatInt(days, 10),
		},
	}
}

// gatewayContext bounds one gateway call by the configured payment timeout
func (s *seatAdjustmentService) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Config.Payment.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Config.Payment.Timeout)
}

func (s *seatAdjustmentService) chargeNow(ctx context.Context, sub *subscriber.Subscriber, version int64, result *proration.ProrationResult) (*payment.ChargeResult, error) {
	req := s.paymentRequest(sub, version, result, idempotency.ScopeSeatCharge)

	span, ctx := s.Sentry.StartGatewaySpan(ctx, "charge_now", map[string]interface{}{
		"subscriber_id": sub.ID,
		"amount":        req.Amount.String(),
	})
	defer sentry.FinishSpan(span)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()

	charge, err := s.Gateway.ChargeNow(gctx, req)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("charged additional seats",
		"subscriber_id", sub.ID,
		"amount", req.Amount,
		"charge_ref", charge.Ref)
	return charge, nil
}

// issueDocument creates the invoice for a charge, retrying transient gateway failures
func (s *seatAdjustmentService) issueDocument(ctx context.Context, sub *subscriber.Subscriber, version int64, result *proration.ProrationResult) (*payment.PayableDocument, error) {
	req := s.paymentRequest(sub, version, result, idempotency.ScopeSeatInvoice)

	span, ctx := s.Sentry.StartGatewaySpan(ctx, "create_payable_document", map[string]interface{}{
		"subscriber_id": sub.ID,
		"amount":        req.Amount.String(),
	})
	defer sentry.FinishSpan(span)

	var doc *payment.PayableDocument
	operation := func() error {
		gctx, cancel := s.gatewayContext(ctx)
		defer cancel()

		d, err := s.Gateway.CreatePayableDocument(gctx, req)
		if err != nil {
			if payment.ErrorKind(err) == types.AdjustmentErrorNoPaymentMethod {
				return backoff.Permanent(err)
			}
			s.Logger.Warnw("failed to create payable document, retrying",
				"error", err,
				"subscriber_id", sub.ID)
			return err
		}
		doc = d
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	if interval := s.Config.Payment.InvoiceRetryInterval; interval > 0 {
		policy.InitialInterval = interval
	}
	retries := uint64(max(s.Config.Payment.InvoiceRetries, 0))
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx)); err != nil {
		return nil, err
	}

	s.Logger.Infow("issued invoice for additional seats",
		"subscriber_id", sub.ID,
		"amount", req.Amount,
		"document_ref", doc.Ref)
	return doc, nil
}

// syncRecurringSeats moves the extra seat quantity of a card subscription to the
// new count so the next renewal bills it. Failures are reported and keep the seat change.
func (s *seatAdjustmentService) syncRecurringSeats(
	ctx context.Context,
	sub *subscriber.Subscriber,
	policy *seatpolicy.SeatPolicy,
	oldSeats, newSeats int,
	version int64,
) {
	updater, ok := s.Gateway.(payment.RecurringSeatUpdater)
	if !ok || sub.StripeSubscriptionID == "" {
		return
	}
	extra := policy.ExtraSeats(newSeats)
	if extra == policy.ExtraSeats(oldSeats) {
		return
	}

	req := &payment.RecurringSeatsRequest{
		SubscriberID:   sub.ID,
		SubscriptionID: sub.StripeSubscriptionID,
		TotalSeats:     newSeats,
		ExtraSeats:     extra,
		IdempotencyKey: s.idempotency.GenerateKey(idempotency.ScopeSeatRenewal, map[string]interface{}{
			"subscriber_id": sub.ID,
			"state_version": version,
			"extra_seats":   extra,
		}),
	}

	span, ctx := s.Sentry.StartGatewaySpan(ctx, "update_recurring_seats", map[string]interface{}{
		"subscriber_id": sub.ID,
		"extra_seats":   extra,
	})
	defer sentry.FinishSpan(span)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()

	if err := updater.UpdateRecurringSeats(gctx, req); err != nil {
		s.Logger.Warnw("failed to update recurring seats, next renewal keeps the old quantity",
			"error", err,
			"subscriber_id", sub.ID,
			"subscription_id", sub.StripeSubscriptionID,
			"extra_seats", extra)
		s.Sentry.CaptureWithContext(ctx, err, map[string]string{
			"subscriber_id": strconv.FormatInt(sub.ID, 10),
			"operation":     "update_recurring_seats",
		})
	}
}

// deferPayment records a failed invoice without blocking the seat change
func (s *seatAdjustmentService) deferPayment(
	ctx context.Context,
	outcome *dto.AdjustmentOutcome,
	sub *subscriber.Subscriber,
	result *proration.ProrationResult,
	cause error,
) {
	err := payment.WrapError(cause, "The invoice for the additional accounts could not be created")
	outcome.PaymentWarning = ierr.DisplayMessage(err)
	outcome.ErrorKind = payment.ErrorKind(err)

	s.Logger.Errorw("failed to create payable document, seats are updated anyway",
		"error", cause,
		"subscriber_id", sub.ID,
		"amount", result.Amount)
	s.Sentry.CaptureWithContext(ctx, err, map[string]string{
		"subscriber_id": strconv.FormatInt(sub.ID, 10),
		"operation":     "create_payable_document",
	})

	s.publishEvent(ctx, types.WebhookEventPaymentDeferred, payload.PaymentDeferred{
		SubscriberID: sub.ID,
		Amount:       result.Amount,
		Currency:     s.Config.Seats.Currency,
		Reason:       outcome.PaymentWarning,
	})
}

// recordCredit stores the pending credit and posts the credit note. Neither blocks the seat change.
func (s *seatAdjustmentService) recordCredit(
	ctx context.Context,
	outcome *dto.AdjustmentOutcome,
	sub *subscriber.Subscriber,
	version int64,
	result *proration.ProrationResult,
) {
	req := s.paymentRequest(sub, version, result, idempotency.ScopeSeatCredit)

	pc := &credit.PendingCredit{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PENDING_CREDIT),
		SubscriberID: sub.ID,
		Amount:       req.Amount,
		Remaining:    req.Amount,
		Currency:     req.Currency,
		Description:  req.Description,
		Status:       types.CreditStatusAvailable,
		BaseModel:    s.baseModel(ctx),
	}

	if err := s.CreditRepo.Create(ctx, pc); err != nil {
		s.Logger.Errorw("failed to store pending credit",
			"error", err,
			"subscriber_id", sub.ID,
			"amount", req.Amount)
		s.Sentry.CaptureWithContext(ctx, err, map[string]string{
			"subscriber_id": strconv.FormatInt(sub.ID, 10),
			"operation":     "store_pending_credit",
		})
		pc = nil
	} else {
		outcome.CreditID = pc.ID
	}

	externalRef := s.postCreditNote(ctx, sub, req)
	if externalRef != "" {
		outcome.PaymentRef = externalRef
		if pc != nil {
			pc.ExternalRef = externalRef
			pc.UpdatedAt = s.now()
			if err := s.CreditRepo.Update(ctx, pc); err != nil {
				s.Logger.Warnw("failed to link credit note to pending credit",
					"error", err,
					"credit_id", pc.ID,
					"external_ref", externalRef)
			}
		}
	}

	s.publishEvent(ctx, types.WebhookEventCreditRecorded, payload.CreditRecorded{
		SubscriberID: sub.ID,
		CreditID:     outcome.CreditID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		ExternalRef:  externalRef,
	})
}

func (s *seatAdjustmentService) postCreditNote(ctx context.Context, sub *subscriber.Subscriber, req *payment.Request) string {
	span, ctx := s.Sentry.StartGatewaySpan(ctx, "record_credit", map[string]interface{}{
		"subscriber_id": sub.ID,
		"amount":        req.Amount.String(),
	})
	defer sentry.FinishSpan(span)

	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()

	res, err := s.Gateway.RecordCredit(gctx, req)
	if err != nil {
		s.Logger.Warnw("failed to post credit note, pending credit is kept",
			"error", err,
			"error_kind", payment.ErrorKind(err),
			"subscriber_id", sub.ID,
			"amount", req.Amount)
		return ""
	}
	return res.Ref
}

func (s *seatAdjustmentService) reject(ctx context.Context, outcome *dto.AdjustmentOutcome, err error) (*dto.AdjustmentOutcome, error) {
	outcome.ErrorKind = seat.ErrorKind(err)
	outcome.Error = ierr.DisplayMessage(err)
	outcome.Transition(types.AdjustmentStateRejected)

	s.Logger.Infow("seat adjustment rejected",
		"subscriber_id", outcome.SubscriberID,
		"old_seats", outcome.OldSeats,
		"new_seats", outcome.NewSeats,
		"error_kind", outcome.ErrorKind,
		"reason", outcome.Error)
	return outcome, err
}

func (s *seatAdjustmentService) fail(ctx context.Context, outcome *dto.AdjustmentOutcome, err error) (*dto.AdjustmentOutcome, error) {
	outcome.ErrorKind = seat.ErrorKind(err)
	outcome.Error = ierr.DisplayMessage(err)
	outcome.Transition(types.AdjustmentStateFailed)

	s.Logger.Errorw("seat adjustment failed",
		"error", err,
		"subscriber_id", outcome.SubscriberID,
		"old_seats", outcome.OldSeats,
		"new_seats", outcome.NewSeats,
		"error_kind", outcome.ErrorKind,
		"payment_method", outcome.PaymentMethod)
	s.Sentry.CaptureWithContext(ctx, err, map[string]string{
		"subscriber_id": strconv.FormatInt(outcome.SubscriberID, 10),
		"error_kind":    string(outcome.ErrorKind),
	})
	return outcome, err
}

// persistenceError marks a failed save so callers can tell it from payment failures
func persistenceError(err error) error {
	b := ierr.WithError(err).
		WithHint("The seat change could not be saved, please try again")
	if !ierr.IsVersionConflict(err) && !ierr.IsDatabase(err) {
		b = b.MarkAlso(ierr.ErrDatabase)
	}
	return b.Mark(seat.ErrPersistence)
}
