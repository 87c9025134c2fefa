// Package domain contains core concepts of the relay.
// Roles and messages are immutable and validated by the domain.
package domain

import "fmt"

// Role is one of exactly two fixed chat identities. The wire values "X"
// (administrator) and "Y" (guest) are part of the stored record format and
// must not change.
type Role string

const (
	Admin Role = "X"
	Guest Role = "Y"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case Admin, Guest:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Label returns the human-readable name used in logs and client output.
func (r Role) Label() string {
	if r == Admin {
		return "admin"
	}
	return "guest"
}
