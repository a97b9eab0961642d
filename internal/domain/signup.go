package domain

import "time"

// SignupTicket stages an unconfirmed registration pending OTP verification.
// It is keyed by a server-issued opaque token and holds only the password
// hash, never the plaintext.
type SignupTicket struct {
	Token        string    `json:"token"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"password_hash"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
