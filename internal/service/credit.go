package service

import (
	"context"

	"github.com/flexprice/playerseats/internal/api/dto"
	"github.com/flexprice/playerseats/internal/domain/credit"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/shopspring/decimal"
)

// CreditService manages the pending credits left by seat reductions
type CreditService interface {
	GetCredits(ctx context.Context, subscriberID int64) (*dto.CreditsResponse, error)
	TotalAvailable(ctx context.Context, subscriberID int64) (decimal.Decimal, error)

	// ApplyCredits pays as much of amountDue as possible from available credits,
	// oldest first. A partly used credit keeps its remainder available.
	ApplyCredits(ctx context.Context, subscriberID int64, amountDue decimal.Decimal) (*dto.ApplyCreditsResult, error)
}

type creditService struct {
	ServiceParams
}

func NewCreditService(params ServiceParams) CreditService {
	return &creditService{
		ServiceParams: params,
	}
}

func (s *creditService) GetCredits(ctx context.Context, subscriberID int64) (*dto.CreditsResponse, error) {
	credits, err := s.CreditRepo.ListAvailable(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if credits == nil {
		credits = []*credit.PendingCredit{}
	}

	return &dto.CreditsResponse{
		SubscriberID:   subscriberID,
		Items:          credits,
		TotalAvailable: remainingTotal(credits),
		Currency:       s.Config.Seats.Currency,
	}, nil
}

func (s *creditService) TotalAvailable(ctx context.Context, subscriberID int64) (decimal.Decimal, error) {
	credits, err := s.CreditRepo.ListAvailable(ctx, subscriberID)
	if err != nil {
		return decimal.Zero, err
	}
	return remainingTotal(credits), nil
}

func (s *creditService) ApplyCredits(ctx context.Context, subscriberID int64, amountDue decimal.Decimal) (*dto.ApplyCreditsResult, error) {
	if amountDue.IsNegative() {
		return nil, ierr.NewError("amount due must not be negative").
			WithHint("Amount due cannot be negative").
			WithReportableDetails(map[string]any{
				"amount_due": amountDue.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	result := &dto.ApplyCreditsResult{
		AmountDue:     amountDue,
		CreditApplied: decimal.Zero,
		Remaining:     amountDue,
		CreditIDs:     []string{},
	}
	if amountDue.IsZero() {
		return result, nil
	}

	credits, err := s.CreditRepo.ListAvailable(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, c := range credits {
		if !result.Remaining.IsPositive() {
			break
		}

		taken := c.Consume(result.Remaining, now)
		if taken.IsZero() {
			continue
		}

		if err := s.CreditRepo.Update(ctx, c); err != nil {
			return nil, err
		}

		result.CreditApplied = result.CreditApplied.Add(taken)
		result.Remaining = result.Remaining.Sub(taken)
		result.CreditIDs = append(result.CreditIDs, c.ID)
	}

	s.Logger.Infow("applied pending credits",
		"subscriber_id", subscriberID,
		"amount_due", amountDue,
		"credit_applied", result.CreditApplied,
		"remaining", result.Remaining)

	return result, nil
}

// remainingTotal sums what is left on the given credits
func remainingTotal(credits []*credit.PendingCredit) decimal.Decimal {
	total := decimal.Zero
	for _, c := range credits {
		total = total.Add(c.Remaining)
	}
	return total
}
