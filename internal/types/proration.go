package types

import (
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/samber/lo"
)

// ProrationKind classifies the sign of a prorated amount.
type ProrationKind string

const (
	ProrationKindCharge ProrationKind = "charge"
	ProrationKindCredit ProrationKind = "credit"
	ProrationKindNone   ProrationKind = "none"
)

var ProrationKindValues = []ProrationKind{
	ProrationKindCharge,
	ProrationKindCredit,
	ProrationKindNone,
}

func (k ProrationKind) Validate() error {
	if !lo.Contains(ProrationKindValues, k) {
		return ierr.NewError("invalid proration kind").
			WithHint("Proration kind must be charge, credit or none").
			WithReportableDetails(map[string]any{
				"allowed_values": ProrationKindValues,
				"provided_value": k,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (k ProrationKind) String() string {
	return string(k)
}

const (
	// DefaultPeriodLengthDays is the proration denominator when no other is configured
	DefaultPeriodLengthDays = 365
	// MaxSeatsCap is the ceiling applied when a level allows unlimited seats
	MaxSeatsCap = 25
	// DefaultAuditLogLimit is how many audit entries are kept per subscriber
	DefaultAuditLogLimit = 100
)
