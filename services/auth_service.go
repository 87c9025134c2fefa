package services

import (
	"time"

	"chat-relay/auth"
	"chat-relay/domain"
	cerrors "chat-relay/errors"
)

type IAuthService interface {
	LoginAdmin(email string) (string, error)
	Invite(email string) (string, error)
	Authenticate(token string) (domain.Role, error)
}

// AuthService issues and validates the bearer tokens gating the relay.
// Both issuance operations require the caller-asserted identity to match the
// single configured administrator identity; there is no self-service signup.
type AuthService struct {
	issuer     auth.Issuer
	adminEmail string
	adminTTL   time.Duration
	guestTTL   time.Duration
}

func NewAuthService(issuer auth.Issuer, adminEmail string,
	adminTTL, guestTTL time.Duration) *AuthService {
	return &AuthService{
		issuer:     issuer,
		adminEmail: adminEmail,
		adminTTL:   adminTTL,
		guestTTL:   guestTTL,
	}
}

// LoginAdmin issues an administrator token.
func (s *AuthService) LoginAdmin(email string) (string, error) {
	if err := s.checkIdentity(email); err != nil {
		return "", err
	}
	return s.issuer.GenerateToken(domain.Admin, s.adminTTL)
}

// Invite issues a guest token for the other party. Only the administrator
// identity may create invites.
func (s *AuthService) Invite(email string) (string, error) {
	if err := s.checkIdentity(email); err != nil {
		return "", err
	}
	return s.issuer.GenerateToken(domain.Guest, s.guestTTL)
}

// Authenticate resolves a bearer token into a chat role. No side effects.
func (s *AuthService) Authenticate(token string) (domain.Role, error) {
	return s.issuer.Authenticate(token)
}

func (s *AuthService) checkIdentity(email string) error {
	if err := auth.ValidateIdentity(auth.IdentityRequest{Email: email}); err != nil {
		return cerrors.ErrForbidden
	}
	if email != s.adminEmail {
		return cerrors.ErrForbidden
	}
	return nil
}
