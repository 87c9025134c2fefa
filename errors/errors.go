package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTokenExpired     = fmt.Errorf("token expired")
	ErrTokenInvalid     = fmt.Errorf("invalid token")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrStoreUnavailable = fmt.Errorf("message store unavailable")
)

// MapToStatus translates a domain error into the HTTP status returned to the
// caller. Expired and malformed tokens both map to 401: the protocol layer
// never learns more than "reject".
func MapToStatus(err error) int {
	switch {
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
