package config

import (
	"testing"
	"time"

	"github.com/flexprice/playerseats/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, types.DefaultPeriodLengthDays, cfg.Seats.PeriodLengthDays)
	assert.Equal(t, types.MaxSeatsCap, cfg.Seats.MaxSeatsCap)
	assert.Equal(t, types.DefaultAuditLogLimit, cfg.Seats.AuditLogLimit)
}

func TestNewConfigReadsFileAndEnv(t *testing.T) {
	t.Setenv("PLAYERSEATS_SEATS_PERIOD_LENGTH_DAYS", "360")
	t.Setenv("PLAYERSEATS_PAYMENT_TIMEOUT", "5s")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 360, cfg.Seats.PeriodLengthDays)
	assert.Equal(t, 5*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "EUR", cfg.Seats.Currency)
	assert.Equal(t, "seat_events", cfg.Webhook.Topic)
}

func TestValidateRejectsMissingSeats(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Seats.PeriodLengthDays = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Deployment.Mode = "consumer"
	assert.Error(t, cfg.Validate())

	cfg.Deployment.Mode = types.ModeAPI
	assert.NoError(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		DBName:   "seats",
		SSLMode:  "disable",
	}
	assert.Equal(t, "user=u password=p dbname=seats host=db port=5432 sslmode=disable", cfg.GetDSN())
}
