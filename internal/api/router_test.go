package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "github.com/flexprice/playerseats/internal/api/v1"
	"github.com/flexprice/playerseats/internal/auth"
	"github.com/flexprice/playerseats/internal/domain/credit"
	"github.com/flexprice/playerseats/internal/domain/seatpolicy"
	"github.com/flexprice/playerseats/internal/domain/subscriber"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/service"
	"github.com/flexprice/playerseats/internal/testutil"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
	tokens *auth.Provider
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	cfg := s.GetConfig()
	cfg.Auth.Secret = "router-test-secret"
	cfg.Server.RateLimitPerSecond = 0
	s.tokens = auth.NewProvider(cfg)

	stores := s.GetStores()
	params := service.ServiceParams{
		Logger:           s.GetLogger(),
		Config:           cfg,
		Sentry:           s.GetSentry(),
		SeatPolicyRepo:   stores.SeatPolicyRepo,
		SeatRepo:         stores.SeatRepo,
		SubscriberRepo:   stores.SubscriberRepo,
		OrderRepo:        stores.OrderRepo,
		CreditRepo:       stores.CreditRepo,
		AuditRepo:        stores.AuditRepo,
		Gateway:          s.GetGateway(),
		PeriodSource:     s.GetPeriodSource(),
		WebhookPublisher: s.GetWebhookPublisher(),
		Clock:            s.Clock(),
	}
	seats := service.NewSeatService(params)

	s.router = NewRouter(Handlers{
		Health:     v1.NewHealthHandler(nil, s.GetLogger()),
		Seat:       v1.NewSeatHandler(seats, service.NewSeatAdjustmentService(params), s.GetLogger()),
		Membership: v1.NewMembershipHandler(seats, service.NewCreditService(params), s.GetLogger()),
	}, cfg, s.GetLogger())

	ctx := s.GetContext()
	s.NoError(stores.SeatPolicyRepo.Upsert(ctx, &seatpolicy.SeatPolicy{
		LevelID:             3,
		DefaultSeats:        2,
		AllowExtra:          true,
		PricePerSeatMonthly: decimal.NewFromFloat(1.5),
		MaxSeats:            10,
		ProrationEnabled:    true,
	}))
	s.NoError(stores.SeatPolicyRepo.Upsert(ctx, &seatpolicy.SeatPolicy{
		LevelID:      5,
		DefaultSeats: 4,
		AllowExtra:   true,
		MaxSeats:     12,
	}))
	s.NoError(stores.SubscriberRepo.Upsert(ctx, &subscriber.Subscriber{ID: 7, LevelID: 3}))
}

func (s *RouterSuite) token(userID string, role types.ActorType) string {
	token, err := s.tokens.GenerateToken(userID, role, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) errorOf(w *httptest.ResponseRecorder) ierr.ErrorResponse {
	var resp ierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestRequiresToken() {
	w := s.do(http.MethodGet, "/v1/subscribers/7/seats", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/v1/subscribers/7/seats", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestMemberReadsOwnSeats() {
	w := s.do(http.MethodGet, "/v1/subscribers/7/seats", s.token("7", types.ActorTypeUser), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.EqualValues(2, resp["current_seats"])
	s.EqualValues(10, resp["max_seats"])
}

func (s *RouterSuite) TestMemberCannotReadOthers() {
	w := s.do(http.MethodGet, "/v1/subscribers/8/seats", s.token("7", types.ActorTypeUser), nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("You can only manage your own accounts", s.errorOf(w).Error.Display)
}

func (s *RouterSuite) TestAdminReadsAnySubscriber() {
	w := s.do(http.MethodGet, "/v1/subscribers/7/seats", s.token("staff", types.ActorTypeAdmin), nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestAdjustBelowMinimumIsRejected() {
	w := s.do(http.MethodPut, "/v1/subscribers/7/seats", s.token("7", types.ActorTypeUser), map[string]any{
		"new_seats": 1,
	})
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.errorOf(w)
	s.False(resp.Success)
	s.Equal(string(types.AdjustmentErrorBelowMinimum), resp.Error.Kind)
}

func (s *RouterSuite) TestPreviewUsesCurrentSeats() {
	w := s.do(http.MethodPost, "/v1/subscribers/7/seats/preview", s.token("7", types.ActorTypeUser), map[string]any{
		"new_seats": 5,
	})
	s.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.EqualValues(2, resp["current_seats"])
	s.EqualValues(3, resp["extra_seats_difference"])
	s.Equal(string(types.ProrationKindCharge), resp["kind"])
}

func (s *RouterSuite) TestMembershipChangeNeedsAdmin() {
	body := map[string]any{"level_id": 5}

	w := s.do(http.MethodPost, "/v1/subscribers/7/membership", s.token("7", types.ActorTypeUser), body)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/v1/subscribers/7/membership", s.token("staff", types.ActorTypeAdmin), body)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.EqualValues(4, resp["seats"])
}

func (s *RouterSuite) TestCheckoutQuoteOutsideLimits() {
	w := s.do(http.MethodPost, "/v1/checkout/quote", s.token("7", types.ActorTypeUser), map[string]any{
		"level_id": 3,
		"seats":    20,
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Please choose between 2 and 10 accounts", s.errorOf(w).Error.Display)
}

func (s *RouterSuite) TestInvalidSubscriberID() {
	w := s.do(http.MethodGet, "/v1/subscribers/abc/seats", s.token("staff", types.ActorTypeAdmin), nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestCheckoutWithPendingCredits() {
	s.NoError(s.GetStores().CreditRepo.Create(s.GetContext(), &credit.PendingCredit{
		ID:           "cr_1",
		SubscriberID: 7,
		Amount:       decimal.NewFromInt(20),
		Remaining:    decimal.NewFromInt(20),
		Currency:     "EUR",
		Status:       types.CreditStatusAvailable,
	}))
	body := map[string]any{"level_id": 3, "seats": 5}

	w := s.do(http.MethodPost, "/v1/subscribers/8/checkout/quote", s.token("7", types.ActorTypeUser), body)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/v1/subscribers/7/checkout/quote", s.token("7", types.ActorTypeUser), body)
	s.Require().Equal(http.StatusOK, w.Code)

	var quote map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &quote))
	s.Equal("54", quote["total"])
	s.Equal("20", quote["credit_applied"])
	s.Equal("34", quote["amount_due"])

	// completing the order uses the credit
	w = s.do(http.MethodPost, "/v1/subscribers/7/membership", s.token("staff", types.ActorTypeAdmin), map[string]any{
		"level_id":      3,
		"seats":         5,
		"apply_credits": true,
	})
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Seats   int `json:"seats"`
		Credits struct {
			CreditApplied string   `json:"credit_applied"`
			Remaining     string   `json:"remaining"`
			CreditIDs     []string `json:"credit_ids"`
		} `json:"credits"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(5, resp.Seats)
	s.Equal("20", resp.Credits.CreditApplied)
	s.Equal("34", resp.Credits.Remaining)
	s.Equal([]string{"cr_1"}, resp.Credits.CreditIDs)

	w = s.do(http.MethodPost, "/v1/subscribers/7/checkout/quote", s.token("7", types.ActorTypeUser), body)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &quote))
	s.Equal("0", quote["credit_applied"])
	s.Equal("54", quote["amount_due"])
}
