package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/flexprice/playerseats/internal/api/dto"
	"github.com/flexprice/playerseats/internal/domain/audit"
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/flexprice/playerseats/internal/domain/seat"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/testutil"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SeatServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SeatService
}

func TestSeatService(t *testing.T) {
	suite.Run(t, new(SeatServiceSuite))
}

func (s *SeatServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSeatService(newTestServiceParams(&s.BaseServiceTestSuite))

	ctx := s.GetContext()
	s.NoError(s.GetStores().SeatPolicyRepo.Upsert(ctx, &seatpolicy.SeatPolicy{
		LevelID:             3,
		DefaultSeats:        2,
		AllowExtra:          true,
		PricePerSeatMonthly: decimal.NewFromFloat(1.5),
		BillingAmount:       decimal.NewFromInt(99),
		MaxSeats:            10,
		ProrationEnabled:    true,
		Features:            types.ParseCSVList("stats,video_analysis"),
	}))
	s.NoError(s.GetStores().SeatPolicyRepo.Upsert(ctx, &seatpolicy.SeatPolicy{
		LevelID:             5,
		DefaultSeats:        4,
		AllowExtra:          true,
		PricePerSeatMonthly: decimal.NewFromInt(2),
		MaxSeats:            0,
		ProrationEnabled:    true,
	}))
	s.NoError(s.GetStores().SubscriberRepo.Upsert(ctx, &subscriber.Subscriber{
		ID:      1,
		Email:   "coach@example.com",
		LevelID: 3,
	}))
}

func (s *SeatServiceSuite) TestGetSeatsDefaultsToIncludedSeats() {
	resp, err := s.service.GetSeats(s.GetContext(), 1)
	s.NoError(err)
	s.Equal(2, resp.CurrentSeats)
	s.Equal(2, resp.DefaultSeats)
	s.Equal(10, resp.MaxSeats)
	s.Equal(0, resp.ExtraSeats)
	s.Equal(int64(0), resp.Version)

	// reading does not persist the default
	_, err = s.GetStores().SeatRepo.Get(s.GetContext(), 1)
	s.True(ierr.IsNotFound(err))
}

func (s *SeatServiceSuite) TestGetSeatsReturnsSavedState() {
	s.NoError(s.GetStores().SeatRepo.Save(s.GetContext(), &seat.State{
		SubscriberID: 1,
		LevelID:      3,
		CurrentSeats: 6,
	}))

	resp, err := s.service.GetSeats(s.GetContext(), 1)
	s.NoError(err)
	s.Equal(6, resp.CurrentSeats)
	s.Equal(4, resp.ExtraSeats)
	s.Equal(int64(1), resp.Version)
}

func (s *SeatServiceSuite) TestGetSeatsWithoutMembership() {
	s.NoError(s.GetStores().SubscriberRepo.Upsert(s.GetContext(), &subscriber.Subscriber{ID: 2}))

	for _, id := range []int64{2, 404} {
		_, err := s.service.GetSeats(s.GetContext(), id)
		s.Error(err)
		s.True(ierr.Is(err, seat.ErrNoMembership))
		s.True(ierr.IsInvalidOperation(err))
	}
}

func (s *SeatServiceSuite) TestGetFeatures() {
	resp, err := s.service.GetFeatures(s.GetContext(), 1)
	s.NoError(err)
	s.Equal([]string{"stats", "video_analysis"}, resp.Features)

	s.NoError(s.GetStores().SubscriberRepo.UpdateLevel(s.GetContext(), 1, 5))
	resp, err = s.service.GetFeatures(s.GetContext(), 1)
	s.NoError(err)
	s.NotNil(resp.Features)
	s.Empty(resp.Features)
}

func (s *SeatServiceSuite) TestListHistoryPaginates() {
	ctx := s.GetContext()
	base := s.GetNow()
	for i := 0; i < 5; i++ {
		s.NoError(s.GetStores().AuditRepo.Append(ctx, &audit.Entry{
			ID:            fmt.Sprintf("aud_%d", i),
			SubscriberID:  1,
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
			OldSeats:      2 + i,
			NewSeats:      3 + i,
			ProrationKind: types.ProrationKindCharge,
			ActorType:     types.ActorTypeUser,
		}, 50))
	}

	resp, err := s.service.ListHistory(ctx, 1, types.ListFilter{Limit: 2, Offset: 1})
	s.NoError(err)
	s.Equal(5, resp.Pagination.Total)
	s.Equal(2, resp.Pagination.Limit)
	s.Equal(1, resp.Pagination.Offset)
	s.Require().Len(resp.Items, 2)
	s.Equal("aud_3", resp.Items[0].ID)
	s.Equal("aud_2", resp.Items[1].ID)

	resp, err = s.service.ListHistory(ctx, 7, types.NewDefaultListFilter())
	s.NoError(err)
	s.Empty(resp.Items)
	s.Equal(0, resp.Pagination.Total)
}

func (s *SeatServiceSuite) TestQuoteCheckout() {
	resp, err := s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{LevelID: 3, Seats: 5})
	s.NoError(err)
	s.Equal(3, resp.ExtraSeats)
	s.True(resp.AnnualPricePerSeat.Equal(decimal.NewFromInt(18)))
	s.True(resp.AdditionalAnnualCost.Equal(decimal.NewFromInt(54)))
	s.Equal(s.GetConfig().Seats.Currency, resp.Currency)

	resp, err = s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{LevelID: 3, Seats: 2})
	s.NoError(err)
	s.True(resp.AdditionalAnnualCost.IsZero())

	// unlimited levels stop at the configured cap
	resp, err = s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{LevelID: 5, Seats: 4})
	s.NoError(err)
	s.Equal(s.GetConfig().Seats.MaxSeatsCap, resp.MaxSeats)
}

func (s *SeatServiceSuite) TestQuoteCheckoutOutsideLimits() {
	for _, seats := range []int{1, 11} {
		_, err := s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{LevelID: 3, Seats: seats})
		s.Error(err)
		s.True(ierr.IsValidation(err))
		s.Equal("Please choose between 2 and 10 accounts", ierr.DisplayMessage(err))
	}

	_, err := s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{LevelID: 0, Seats: 2})
	s.True(ierr.IsValidation(err))
}

func (s *SeatServiceSuite) TestMembershipChangeResetsSeats() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().SeatRepo.Save(ctx, &seat.State{SubscriberID: 1, LevelID: 3, CurrentSeats: 8}))

	resp, err := s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{SubscriberID: 1, LevelID: 5})
	s.NoError(err)
	s.Equal(int64(3), resp.OldLevelID)
	s.Equal(int64(5), resp.NewLevelID)
	s.Equal(4, resp.Seats)
	s.False(resp.Removed)

	state, err := s.GetStores().SeatRepo.Get(ctx, 1)
	s.NoError(err)
	s.Equal(int64(5), state.LevelID)
	s.Equal(4, state.CurrentSeats)
	s.Equal(int64(2), state.Version)

	sub, err := s.GetStores().SubscriberRepo.Get(ctx, 1)
	s.NoError(err)
	s.Equal(int64(5), sub.LevelID)

	s.Len(s.GetWebhookPublisher().EventsNamed(types.WebhookEventSeatsReset), 1)
}

func (s *SeatServiceSuite) TestMembershipCancellationVoidsCredits() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().SeatRepo.Save(ctx, &seat.State{SubscriberID: 1, LevelID: 3, CurrentSeats: 5}))
	for i, amount := range []int64{9, 4} {
		s.NoError(s.GetStores().CreditRepo.Create(ctx, &credit.PendingCredit{
			ID:           fmt.Sprintf("cr_%d", i),
			SubscriberID: 1,
			Amount:       decimal.NewFromInt(amount),
			Remaining:    decimal.NewFromInt(amount),
			Currency:     "EUR",
			Status:       types.CreditStatusAvailable,
		}))
	}

	resp, err := s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{SubscriberID: 1, LevelID: 0})
	s.NoError(err)
	s.True(resp.Removed)
	s.Equal(2, resp.CreditsVoided)

	_, err = s.GetStores().SeatRepo.Get(ctx, 1)
	s.True(ierr.IsNotFound(err))

	credits, err := s.GetStores().CreditRepo.ListAvailable(ctx, 1)
	s.NoError(err)
	s.Empty(credits)

	s.Len(s.GetWebhookPublisher().EventsNamed(types.WebhookEventMembershipRemoved), 1)
	s.Empty(s.GetWebhookPublisher().EventsNamed(types.WebhookEventSeatsReset))

	_, err = s.service.GetSeats(ctx, 1)
	s.True(ierr.Is(err, seat.ErrNoMembership))
}

func (s *SeatServiceSuite) TestMembershipChangeUnknownSubscriber() {
	_, err := s.service.HandleMembershipChange(s.GetContext(), &dto.MembershipChangeRequest{SubscriberID: 99, LevelID: 3})
	s.True(ierr.IsNotFound(err))
}

func (s *SeatServiceSuite) addCredits(subscriberID int64, amounts ...int64) {
	for i, amount := range amounts {
		s.NoError(s.GetStores().CreditRepo.Create(s.GetContext(), &credit.PendingCredit{
			ID:           fmt.Sprintf("cr_%d_%d", subscriberID, i),
			SubscriberID: subscriberID,
			Amount:       decimal.NewFromInt(amount),
			Remaining:    decimal.NewFromInt(amount),
			Currency:     "EUR",
			Status:       types.CreditStatusAvailable,
			BaseModel: types.BaseModel{
				CreatedAt: s.GetNow().Add(time.Duration(i) * time.Minute),
			},
		}))
	}
}

func (s *SeatServiceSuite) TestGetSeatsNextRenewalAmount() {
	s.NoError(s.GetStores().SeatRepo.Save(s.GetContext(), &seat.State{
		SubscriberID: 1,
		LevelID:      3,
		CurrentSeats: 6,
	}))

	resp, err := s.service.GetSeats(s.GetContext(), 1)
	s.NoError(err)
	// 99 plus four extra seats at 18 a year
	s.True(resp.NextRenewalAmount.Equal(decimal.NewFromInt(171)))
}

func (s *SeatServiceSuite) TestQuoteCheckoutDeductsCredits() {
	s.addCredits(1, 9, 50)

	resp, err := s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{SubscriberID: 1, LevelID: 3, Seats: 5})
	s.NoError(err)
	s.True(resp.LevelPrice.Equal(decimal.NewFromInt(99)))
	s.True(resp.Total.Equal(decimal.NewFromInt(153)))
	s.True(resp.CreditAvailable.Equal(decimal.NewFromInt(59)))
	s.True(resp.CreditApplied.Equal(decimal.NewFromInt(59)))
	s.True(resp.AmountDue.Equal(decimal.NewFromInt(94)))

	// quoting leaves the credits untouched
	credits, err := s.GetStores().CreditRepo.ListAvailable(s.GetContext(), 1)
	s.NoError(err)
	s.Len(credits, 2)

	s.addCredits(1, 500)
	resp, err = s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{SubscriberID: 1, LevelID: 3, Seats: 2})
	s.NoError(err)
	s.True(resp.CreditApplied.Equal(decimal.NewFromInt(99)))
	s.True(resp.AmountDue.IsZero())
}

func (s *SeatServiceSuite) TestQuoteCheckoutWithoutSubscriber() {
	s.addCredits(1, 20)

	resp, err := s.service.QuoteCheckout(s.GetContext(), &dto.CheckoutQuoteRequest{LevelID: 3, Seats: 3})
	s.NoError(err)
	s.True(resp.Total.Equal(decimal.NewFromInt(117)))
	s.True(resp.CreditApplied.IsZero())
	s.True(resp.AmountDue.Equal(decimal.NewFromInt(117)))
}

func (s *SeatServiceSuite) TestMembershipChangeKeepsCheckoutSeats() {
	ctx := s.GetContext()

	resp, err := s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{
		SubscriberID: 1,
		LevelID:      3,
		Seats:        lo.ToPtr(7),
	})
	s.NoError(err)
	s.Equal(7, resp.Seats)
	s.True(resp.NextRenewalAmount.Equal(decimal.NewFromInt(189)))
	s.Nil(resp.Credits)

	state, err := s.GetStores().SeatRepo.Get(ctx, 1)
	s.NoError(err)
	s.Equal(7, state.CurrentSeats)

	// more than the level allows is cut to its maximum
	resp, err = s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{
		SubscriberID: 1,
		LevelID:      3,
		Seats:        lo.ToPtr(15),
	})
	s.NoError(err)
	s.Equal(10, resp.Seats)
}

func (s *SeatServiceSuite) TestMembershipChangeRejectsTooFewSeats() {
	ctx := s.GetContext()

	_, err := s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{
		SubscriberID: 1,
		LevelID:      5,
		Seats:        lo.ToPtr(2),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.True(ierr.Is(err, seat.ErrBelowMinimum))

	// the level is left alone when the seats are rejected
	sub, err := s.GetStores().SubscriberRepo.Get(ctx, 1)
	s.NoError(err)
	s.Equal(int64(3), sub.LevelID)
	s.Empty(s.GetWebhookPublisher().EventsNamed(types.WebhookEventSeatsReset))

	_, err = s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{
		SubscriberID: 1,
		LevelID:      0,
		Seats:        lo.ToPtr(3),
	})
	s.True(ierr.IsValidation(err))
}

func (s *SeatServiceSuite) TestMembershipChangeAppliesCredits() {
	ctx := s.GetContext()
	s.addCredits(1, 60, 200)

	resp, err := s.service.HandleMembershipChange(ctx, &dto.MembershipChangeRequest{
		SubscriberID: 1,
		LevelID:      3,
		Seats:        lo.ToPtr(5),
		ApplyCredits: true,
	})
	s.NoError(err)
	s.Require().NotNil(resp.Credits)
	s.True(resp.Credits.AmountDue.Equal(decimal.NewFromInt(153)))
	s.True(resp.Credits.CreditApplied.Equal(decimal.NewFromInt(153)))
	s.True(resp.Credits.Remaining.IsZero())
	s.Equal([]string{"cr_1_0", "cr_1_1"}, resp.Credits.CreditIDs)

	// the newer credit keeps what the checkout did not need
	credits, err := s.GetStores().CreditRepo.ListAvailable(ctx, 1)
	s.NoError(err)
	s.Require().Len(credits, 1)
	s.Equal("cr_1_1", credits[0].ID)
	s.True(credits[0].Remaining.Equal(decimal.NewFromInt(107)))
}
