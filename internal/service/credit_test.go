package service

import (
	"testing"
	"time"

	"github.com/flexprice/playerseats/internal/domain/credit"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/testutil"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CreditServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CreditService
}

func TestCreditService(t *testing.T) {
	suite.Run(t, new(CreditServiceSuite))
}

func (s *CreditServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCreditService(newTestServiceParams(&s.BaseServiceTestSuite))

	// cr_old is older than cr_new, cr_used is already applied
	s.addCredit("cr_new", 10, 10, types.CreditStatusAvailable, s.GetNow().Add(-time.Hour))
	s.addCredit("cr_old", 6, 6, types.CreditStatusAvailable, s.GetNow().Add(-48*time.Hour))
	s.addCredit("cr_used", 20, 0, types.CreditStatusApplied, s.GetNow().Add(-72*time.Hour))
}

func (s *CreditServiceSuite) addCredit(id string, amount, remaining int64, status types.CreditStatus, createdAt time.Time) {
	c := &credit.PendingCredit{
		ID:           id,
		SubscriberID: 1,
		Amount:       decimal.NewFromInt(amount),
		Remaining:    decimal.NewFromInt(remaining),
		Currency:     "EUR",
		Status:       status,
	}
	c.CreatedAt = createdAt
	c.UpdatedAt = createdAt
	s.NoError(s.GetStores().CreditRepo.Create(s.GetContext(), c))
}

func (s *CreditServiceSuite) TestGetCredits() {
	resp, err := s.service.GetCredits(s.GetContext(), 1)
	s.NoError(err)
	s.Require().Len(resp.Items, 2)
	s.Equal("cr_old", resp.Items[0].ID)
	s.Equal("cr_new", resp.Items[1].ID)
	s.True(resp.TotalAvailable.Equal(decimal.NewFromInt(16)))

	resp, err = s.service.GetCredits(s.GetContext(), 2)
	s.NoError(err)
	s.NotNil(resp.Items)
	s.True(resp.TotalAvailable.IsZero())
}

func (s *CreditServiceSuite) TestApplyConsumesOldestFirst() {
	ctx := s.GetContext()

	result, err := s.service.ApplyCredits(ctx, 1, decimal.NewFromInt(8))
	s.NoError(err)
	s.True(result.CreditApplied.Equal(decimal.NewFromInt(8)))
	s.True(result.Remaining.IsZero())
	s.Equal([]string{"cr_old", "cr_new"}, result.CreditIDs)

	credits, err := s.GetStores().CreditRepo.ListAvailable(ctx, 1)
	s.NoError(err)
	s.Require().Len(credits, 1)
	s.Equal("cr_new", credits[0].ID)
	s.True(credits[0].Remaining.Equal(decimal.NewFromInt(8)))

	total, err := s.service.TotalAvailable(ctx, 1)
	s.NoError(err)
	s.True(total.Equal(decimal.NewFromInt(8)))
}

func (s *CreditServiceSuite) TestApplyMoreThanAvailable() {
	result, err := s.service.ApplyCredits(s.GetContext(), 1, decimal.NewFromInt(25))
	s.NoError(err)
	s.True(result.CreditApplied.Equal(decimal.NewFromInt(16)))
	s.True(result.Remaining.Equal(decimal.NewFromInt(9)))

	total, err := s.service.TotalAvailable(s.GetContext(), 1)
	s.NoError(err)
	s.True(total.IsZero())
}

func (s *CreditServiceSuite) TestApplyZeroLeavesCreditsUntouched() {
	result, err := s.service.ApplyCredits(s.GetContext(), 1, decimal.Zero)
	s.NoError(err)
	s.True(result.CreditApplied.IsZero())
	s.Empty(result.CreditIDs)

	total, err := s.service.TotalAvailable(s.GetContext(), 1)
	s.NoError(err)
	s.True(total.Equal(decimal.NewFromInt(16)))
}

func (s *CreditServiceSuite) TestApplyNegativeAmount() {
	_, err := s.service.ApplyCredits(s.GetContext(), 1, decimal.NewFromInt(-1))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
