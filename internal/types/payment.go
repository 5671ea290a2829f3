package types

import (
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethod is how a subscriber settles prorated charges
type PaymentMethod string

const (
	PaymentMethodInvoice       PaymentMethod = "invoice"
	PaymentMethodRecurringCard PaymentMethod = "recurring_card"
	PaymentMethodUnknown       PaymentMethod = "unknown"
)

var PaymentMethodValues = []PaymentMethod{
	PaymentMethodInvoice,
	PaymentMethodRecurringCard,
	PaymentMethodUnknown,
}

func (p PaymentMethod) Validate() error {
	if !lo.Contains(PaymentMethodValues, p) {
		return ierr.NewError("invalid payment method").
			WithHint("Payment method must be invoice, recurring_card or unknown").
			WithReportableDetails(map[string]any{
				"allowed_values": PaymentMethodValues,
				"provided_value": p,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (p PaymentMethod) String() string {
	return string(p)
}

// OrderGateway is the gateway tag recorded on a membership order
type OrderGateway string

const (
	OrderGatewayCheck          OrderGateway = "check"
	OrderGatewayStripe         OrderGateway = "stripe"
	OrderGatewayStripeCheckout OrderGateway = "stripe_checkout"
	// OrderGatewayProration marks orders created for seat adjustments.
	// They never count as evidence of a payment method.
	OrderGatewayProration OrderGateway = "proration"
)

// PaymentMethod maps a gateway tag to the payment method it implies
func (g OrderGateway) PaymentMethod() (PaymentMethod, bool) {
	switch g {
	case OrderGatewayCheck:
		return PaymentMethodInvoice, true
	case OrderGatewayStripe, OrderGatewayStripeCheckout:
		return PaymentMethodRecurringCard, true
	}
	return PaymentMethodUnknown, false
}

// OrderStatus of a membership order
type OrderStatus string

const (
	OrderStatusSuccess   OrderStatus = "success"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusError     OrderStatus = "error"
)

// IsSettledOrPending reports whether an order counts as a real purchase
func (s OrderStatus) IsSettledOrPending() bool {
	return s == OrderStatusSuccess || s == OrderStatusPending
}

// CreditStatus of a pending credit
type CreditStatus string

const (
	CreditStatusAvailable CreditStatus = "available"
	CreditStatusApplied   CreditStatus = "applied"
	CreditStatusVoided    CreditStatus = "voided"
)

// PayableDocumentStatus of an invoice issued for an extra seat charge
type PayableDocumentStatus string

const (
	PayableDocumentStatusOpen PayableDocumentStatus = "open"
	PayableDocumentStatusPaid PayableDocumentStatus = "paid"
)
