package stripe

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/domain/payment"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

// Gateway charges and credits seat adjustments of card paying members.
// Charges and documents are Stripe invoices, credits are negative invoice
// items picked up by the next renewal invoice.
type Gateway struct {
	client           *Client
	daysUntilDue     int64
	extraSeatPriceID string
	logger           *logger.Logger
}

var (
	_ payment.Gateway              = (*Gateway)(nil)
	_ payment.RecurringSeatUpdater = (*Gateway)(nil)
)

func NewGateway(client *Client, cfg *config.Configuration, logger *logger.Logger) *Gateway {
	return &Gateway{
		client:           client,
		daysUntilDue:     int64(max(cfg.Payment.InvoiceDaysUntilDue, 1)),
		extraSeatPriceID: cfg.Stripe.ExtraSeatPriceID,
		logger:           logger,
	}
}

// ChargeNow invoices the amount and pays the invoice with the customer's default card
func (g *Gateway) ChargeNow(ctx context.Context, req *payment.Request) (*payment.ChargeResult, error) {
	inv, err := g.createInvoice(ctx, req, stripe.InvoiceCollectionMethodChargeAutomatically)
	if err != nil {
		return nil, err
	}

	sc, err := g.client.GetStripeClient(ctx)
	if err != nil {
		return nil, err
	}

	finalized, err := sc.V1Invoices.FinalizeInvoice(ctx, inv.ID, &stripe.InvoiceFinalizeInvoiceParams{
		AutoAdvance: stripe.Bool(false),
	})
	if err != nil {
		return nil, classifyError(err, "Unable to finalize the seat charge", g.details(req, inv.ID))
	}

	payParams := &stripe.InvoicePayParams{}
	payParams.SetIdempotencyKey(req.IdempotencyKey + ":pay")
	paid, err := sc.V1Invoices.Pay(ctx, finalized.ID, payParams)
	if err != nil {
		g.logger.Errorw("failed to pay seat invoice",
			"error", err,
			"subscriber_id", req.SubscriberID,
			"stripe_invoice_id", finalized.ID)
		return nil, classifyError(err, "Your card could not be charged", g.details(req, finalized.ID))
	}

	g.logger.Infow("charged seat adjustment",
		"subscriber_id", req.SubscriberID,
		"stripe_invoice_id", paid.ID,
		"status", paid.Status,
		"amount", req.Amount)

	return &payment.ChargeResult{
		Ref:    paid.ID,
		Status: string(paid.Status),
	}, nil
}

// CreatePayableDocument sends an invoice the member pays within the configured days
func (g *Gateway) CreatePayableDocument(ctx context.Context, req *payment.Request) (*payment.PayableDocument, error) {
	inv, err := g.createInvoice(ctx, req, stripe.InvoiceCollectionMethodSendInvoice)
	if err != nil {
		return nil, err
	}

	sc, err := g.client.GetStripeClient(ctx)
	if err != nil {
		return nil, err
	}

	finalized, err := sc.V1Invoices.FinalizeInvoice(ctx, inv.ID, &stripe.InvoiceFinalizeInvoiceParams{
		AutoAdvance: stripe.Bool(true),
	})
	if err != nil {
		return nil, classifyError(err, "Unable to issue the seat invoice", g.details(req, inv.ID))
	}

	// a finalized invoice stays payable when sending the email fails
	if _, err := sc.V1Invoices.SendInvoice(ctx, finalized.ID, &stripe.InvoiceSendInvoiceParams{}); err != nil {
		g.logger.Warnw("failed to send seat invoice",
			"error", err,
			"subscriber_id", req.SubscriberID,
			"stripe_invoice_id", finalized.ID)
	}

	doc := &payment.PayableDocument{
		Ref:    finalized.ID,
		URL:    finalized.HostedInvoiceURL,
		Status: types.PayableDocumentStatusOpen,
	}
	if finalized.Status == stripe.InvoiceStatusPaid {
		doc.Status = types.PayableDocumentStatusPaid
	}
	if finalized.DueDate > 0 {
		doc.DueAt = lo.ToPtr(time.Unix(finalized.DueDate, 0).UTC())
	}

	g.logger.Infow("issued seat invoice",
		"subscriber_id", req.SubscriberID,
		"stripe_invoice_id", finalized.ID,
		"amount", req.Amount)

	return doc, nil
}

// RecordCredit adds a negative pending invoice item to the customer
func (g *Gateway) RecordCredit(ctx context.Context, req *payment.Request) (*payment.CreditResult, error) {
	sc, err := g.client.GetStripeClient(ctx)
	if err != nil {
		return nil, err
	}
	customerID, err := g.client.CustomerFor(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	params := &stripe.InvoiceItemCreateParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(-toCents(req.Amount)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		Metadata:    g.metadata(req),
	}
	params.SetIdempotencyKey(req.IdempotencyKey)

	item, err := sc.V1InvoiceItems.Create(ctx, params)
	if err != nil {
		return nil, classifyError(err, "Unable to record the seat credit", g.details(req, ""))
	}

	g.logger.Infow("recorded seat credit",
		"subscriber_id", req.SubscriberID,
		"stripe_invoice_item_id", item.ID,
		"amount", req.Amount)

	return &payment.CreditResult{Ref: item.ID}, nil
}

// UpdateRecurringSeats sets the quantity of the extra seat item on the member's
// subscription. The item is added or removed as needed and nothing is prorated,
// the seat change itself was already billed.
func (g *Gateway) UpdateRecurringSeats(ctx context.Context, req *payment.RecurringSeatsRequest) error {
	details := map[string]any{
		"subscriber_id":          req.SubscriberID,
		"stripe_subscription_id": req.SubscriptionID,
		"extra_seats":            req.ExtraSeats,
	}
	if g.extraSeatPriceID == "" {
		return ierr.NewError("no extra seat price configured").
			WithHint("Recurring extra seats are not configured").
			WithReportableDetails(details).
			Mark(ierr.ErrInvalidOperation)
	}

	sc, err := g.client.GetStripeClient(ctx)
	if err != nil {
		return err
	}

	sub, err := sc.V1Subscriptions.Retrieve(ctx, req.SubscriptionID, nil)
	if err != nil {
		return classifyError(err, "Unable to load the recurring subscription", details)
	}

	var items []*stripe.SubscriptionItem
	if sub.Items != nil {
		items = sub.Items.Data
	}
	existing, found := lo.Find(items, func(item *stripe.SubscriptionItem) bool {
		return item.Price != nil && item.Price.ID == g.extraSeatPriceID
	})

	item := &stripe.SubscriptionUpdateItemParams{}
	switch {
	case !found && req.ExtraSeats == 0:
		return nil
	case !found:
		item.Price = stripe.String(g.extraSeatPriceID)
		item.Quantity = stripe.Int64(int64(req.ExtraSeats))
	case req.ExtraSeats == 0:
		item.ID = stripe.String(existing.ID)
		item.Deleted = stripe.Bool(true)
	default:
		item.ID = stripe.String(existing.ID)
		item.Quantity = stripe.Int64(int64(req.ExtraSeats))
	}

	params := &stripe.SubscriptionUpdateParams{
		Items:             []*stripe.SubscriptionUpdateItemParams{item},
		ProrationBehavior: stripe.String("none"),
		Metadata: map[string]string{
			"seats_total": strconv.Itoa(req.TotalSeats),
			"seats_extra": strconv.Itoa(req.ExtraSeats),
		},
	}
	params.SetIdempotencyKey(req.IdempotencyKey)

	if _, err := sc.V1Subscriptions.Update(ctx, req.SubscriptionID, params); err != nil {
		g.logger.Errorw("failed to update recurring seats",
			"error", err,
			"subscriber_id", req.SubscriberID,
			"stripe_subscription_id", req.SubscriptionID)
		return classifyError(err, "Unable to update the recurring seat quantity", details)
	}

	g.logger.Infow("updated recurring seats",
		"subscriber_id", req.SubscriberID,
		"stripe_subscription_id", req.SubscriptionID,
		"extra_seats", req.ExtraSeats)
	return nil
}

// createInvoice creates a draft invoice holding one line for the adjustment
func (g *Gateway) createInvoice(ctx context.Context, req *payment.Request, method stripe.InvoiceCollectionMethod) (*stripe.Invoice, error) {
	sc, err := g.client.GetStripeClient(ctx)
	if err != nil {
		return nil, err
	}
	customerID, err := g.client.CustomerFor(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	params := &stripe.InvoiceCreateParams{
		Customer:         stripe.String(customerID),
		Currency:         stripe.String(strings.ToLower(req.Currency)),
		CollectionMethod: stripe.String(string(method)),
		AutoAdvance:      stripe.Bool(false),
		Description:      stripe.String(req.Description),
		Metadata:         g.metadata(req),
	}
	if method == stripe.InvoiceCollectionMethodSendInvoice {
		params.DaysUntilDue = stripe.Int64(g.daysUntilDue)
	}
	params.SetIdempotencyKey(req.IdempotencyKey + ":invoice")

	inv, err := sc.V1Invoices.Create(ctx, params)
	if err != nil {
		g.logger.Errorw("failed to create seat invoice",
			"error", err,
			"subscriber_id", req.SubscriberID)
		return nil, classifyError(err, "Unable to create the seat invoice", g.details(req, ""))
	}

	itemParams := &stripe.InvoiceItemCreateParams{
		Customer:    stripe.String(customerID),
		Invoice:     stripe.String(inv.ID),
		Amount:      stripe.Int64(toCents(req.Amount)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		Metadata:    g.metadata(req),
	}
	itemParams.SetIdempotencyKey(req.IdempotencyKey + ":item")

	if _, err := sc.V1InvoiceItems.Create(ctx, itemParams); err != nil {
		return nil, classifyError(err, "Unable to add the seat line", g.details(req, inv.ID))
	}

	return inv, nil
}

func (g *Gateway) metadata(req *payment.Request) map[string]string {
	return lo.Assign(map[string]string{
		"subscriber_id":   strconv.FormatInt(req.SubscriberID, 10),
		"idempotency_key": req.IdempotencyKey,
	}, req.Metadata)
}

func (g *Gateway) details(req *payment.Request, invoiceID string) map[string]any {
	details := map[string]any{
		"subscriber_id": req.SubscriberID,
		"amount":        req.Amount.String(),
	}
	if invoiceID != "" {
		details["stripe_invoice_id"] = invoiceID
	}
	return details
}

// toCents converts a decimal amount to the smallest currency unit
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
