package services

import (
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/domain"
	cerrors "chat-relay/errors"

	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@example.com"

func newTestAuthService() *AuthService {
	issuer := auth.NewIssuer([]byte("unit-test-signing-secret"))
	return NewAuthService(issuer, adminEmail, time.Hour, 30*time.Minute)
}

func TestLoginAdmin_Issues_Admin_Token(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService()

	token, err := service.LoginAdmin(adminEmail)
	req.NoError(err)

	role, err := service.Authenticate(token)
	req.NoError(err)
	req.Equal(domain.Admin, role)
}

func TestLoginAdmin_Rejects_Other_Identities(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService()

	tests := []struct {
		name  string
		email string
	}{
		{"Wrong email", "stranger@example.com"},
		{"Empty email", ""},
		{"Not an email", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.LoginAdmin(tt.email)
			req.ErrorIs(err, cerrors.ErrForbidden)
		})
	}
}

func TestInvite_Issues_Guest_Token(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService()

	token, err := service.Invite(adminEmail)
	req.NoError(err)

	role, err := service.Authenticate(token)
	req.NoError(err)
	req.Equal(domain.Guest, role)
}

func TestInvite_Rejects_Non_Admin_Identity(t *testing.T) {
	req := require.New(t)
	service := newTestAuthService()

	_, err := service.Invite("guest@example.com")
	req.ErrorIs(err, cerrors.ErrForbidden)
}
