package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DeriveRoomID derives a stable room identifier from the admin identity, so
// the same deployment always reopens the same history without extra
// configuration.
func DeriveRoomID(adminEmail string) string {
	digest := sha256.Sum256([]byte(adminEmail))
	return hex.EncodeToString(digest[:])[:16]
}

// GenerateSecret returns a fresh random signing secret. Tokens signed with a
// generated secret do not survive a restart; set JWT_SECRET to keep them.
func GenerateSecret() (string, error) {
	buffer := make([]byte, 32)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("secret generation failed: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}
