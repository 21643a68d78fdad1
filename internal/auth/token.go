package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Token sizes in random bytes before hex encoding.
const (
	VerificationTokenBytes = 16
	SessionTokenBytes      = 20
)

// NewToken creates a cryptographically secure random token of n bytes,
// hex encoded. Tokens are never derived from time, counters or user data.
func NewToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ExpiryAfter computes an absolute expiry timestamp from now.
func ExpiryAfter(d time.Duration) time.Time {
	return time.Now().Add(d)
}
