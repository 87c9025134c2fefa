package auth

import (
	"errors"
	"time"

	"chat-relay/domain"
	cerrors "chat-relay/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleClaims defines the structure of the data stored inside the JWT.
// The role tag is the only custom claim the relay cares about.
type RoleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates the bearer tokens carrying a chat role.
// The signing secret comes from configuration; it is never baked in.
type Issuer struct {
	secret []byte
	issuer string
}

func NewIssuer(secret []byte) Issuer {
	return Issuer{secret: secret, issuer: "chat-relay"}
}

// GenerateToken creates a signed JWT carrying a role, valid for ttl.
func (i Issuer) GenerateToken(role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &RoleClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
		},
	}

	// HS256 (HMAC with SHA256), signed with the configured shared secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(i.secret)
}

// Authenticate validates a bearer token and resolves the role it carries.
// Expiry is the only failure distinguished; everything else (bad signature,
// malformed payload, unknown role tag) is an invalid token.
func (i Issuer) Authenticate(tokenString string) (domain.Role, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RoleClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", cerrors.ErrTokenExpired
		}
		return "", cerrors.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*RoleClaims)
	if !ok || !token.Valid {
		return "", cerrors.ErrTokenInvalid
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return "", cerrors.ErrTokenInvalid
	}
	return role, nil
}
