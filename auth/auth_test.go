package auth

import (
	"testing"
	"time"

	"chat-relay/domain"
	cerrors "chat-relay/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-signing-secret")

func TestAuthenticate_RoundTrip(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer(testSecret)

	token, err := issuer.GenerateToken(domain.Admin, time.Hour)
	req.NoError(err)

	role, err := issuer.Authenticate(token)
	req.NoError(err)
	req.Equal(domain.Admin, role)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer(testSecret)

	// Expired one second ago: must be rejected before any session state exists.
	token, err := issuer.GenerateToken(domain.Guest, -1*time.Second)
	req.NoError(err)

	_, err = issuer.Authenticate(token)
	req.ErrorIs(err, cerrors.ErrTokenExpired)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer(testSecret)
	intruder := NewIssuer([]byte("some-other-secret"))

	token, err := intruder.GenerateToken(domain.Guest, time.Hour)
	req.NoError(err)

	_, err = issuer.Authenticate(token)
	req.ErrorIs(err, cerrors.ErrTokenInvalid)
}

func TestAuthenticate_UnknownRoleTag(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer(testSecret)

	// A well-signed token carrying a role the relay does not know.
	claims := &RoleClaims{
		Role: "Z",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	req.NoError(err)

	_, err = issuer.Authenticate(token)
	req.ErrorIs(err, cerrors.ErrTokenInvalid)
}

func TestAuthenticate_Garbage(t *testing.T) {
	req := require.New(t)
	issuer := NewIssuer(testSecret)

	_, err := issuer.Authenticate("not-even-a-jwt")
	req.ErrorIs(err, cerrors.ErrTokenInvalid)
}

func TestIdentityValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     IdentityRequest
		wantErr bool
	}{
		{"Valid email", IdentityRequest{"admin@example.com"}, false},
		{"Missing email", IdentityRequest{""}, true},
		{"Not an email", IdentityRequest{"notanemail"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentity(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}
