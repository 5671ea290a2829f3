package auth

import (
	"fmt"
	"time"

	"github.com/flexprice/playerseats/internal/config"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/golang-jwt/jwt/v4"
)

const defaultAdminRole = "admin"

// Claims is what a validated bearer token tells us about the caller.
// UserID is the subscriber id of members and an opaque id for staff.
type Claims struct {
	UserID string
	Role   types.ActorType
}

// Provider validates and issues HS256 tokens signed with the configured secret
type Provider struct {
	secret    []byte
	adminRole string
}

func NewProvider(cfg *config.Configuration) *Provider {
	adminRole := cfg.Auth.AdminRole
	if adminRole == "" {
		adminRole = defaultAdminRole
	}
	return &Provider{
		secret:    []byte(cfg.Auth.Secret),
		adminRole: adminRole,
	}
}

func (p *Provider) ValidateToken(token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrPermissionDenied)
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrPermissionDenied)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, ierr.NewError("token has no subject").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	role := types.ActorTypeUser
	if r, _ := claims["role"].(string); r == p.adminRole {
		role = types.ActorTypeAdmin
	}

	return &Claims{UserID: userID, Role: role}, nil
}

// GenerateToken signs a token for the given caller, used by scripts and tests
func (p *Provider) GenerateToken(userID string, role types.ActorType, ttl time.Duration) (string, error) {
	roleClaim := string(types.ActorTypeUser)
	if role == types.ActorTypeAdmin {
		roleClaim = p.adminRole
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": roleClaim,
		"exp":  time.Now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}
	return signed, nil
}
