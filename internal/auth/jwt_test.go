package auth

import (
	"testing"
	"time"

	"github.com/flexprice/playerseats/internal/config"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *Provider {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Auth.AdminRole = "club_admin"
	return NewProvider(cfg)
}

func TestValidateToken(t *testing.T) {
	p := newTestProvider()

	t.Run("member", func(t *testing.T) {
		token, err := p.GenerateToken("42", types.ActorTypeUser, time.Hour)
		require.NoError(t, err)

		claims, err := p.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.UserID)
		assert.Equal(t, types.ActorTypeUser, claims.Role)
	})

	t.Run("admin", func(t *testing.T) {
		token, err := p.GenerateToken("staff_1", types.ActorTypeAdmin, time.Hour)
		require.NoError(t, err)

		claims, err := p.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, types.ActorTypeAdmin, claims.Role)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := p.GenerateToken("42", types.ActorTypeUser, -time.Minute)
		require.NoError(t, err)

		_, err = p.ValidateToken(token)
		assert.True(t, ierr.IsPermissionDenied(err))
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other := &Provider{secret: []byte("other"), adminRole: defaultAdminRole}
		token, err := other.GenerateToken("42", types.ActorTypeUser, time.Hour)
		require.NoError(t, err)

		_, err = p.ValidateToken(token)
		assert.True(t, ierr.IsPermissionDenied(err))
	})

	t.Run("missing_subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"role": "user",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = p.ValidateToken(token)
		assert.True(t, ierr.IsPermissionDenied(err))
	})
}
