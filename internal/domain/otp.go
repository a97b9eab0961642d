package domain

import "time"

// OtpCode is a one-time passcode issued to confirm email ownership.
// At most one code per email is live; a new issuance supersedes the prior one.
type OtpCode struct {
	ID        string
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the given instant.
func (o *OtpCode) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
