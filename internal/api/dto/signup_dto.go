package dto

// SignupRequest payload. Field presence, password agreement and length are
// validated together by the signup service so every violated rule is
// reported at once.
type SignupRequest struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone"`
	Password        string  `json:"password"`
	ConfirmPassword string  `json:"confirm_password"`
	Role            string  `json:"role"`
}

// SignupPendingResponse identifies the staged registration awaiting its code.
type SignupPendingResponse struct {
	Ticket string `json:"ticket"`
	Email  string `json:"email"`
}

// VerifyOtpRequest payload.
type VerifyOtpRequest struct {
	Ticket string `json:"ticket" validate:"required"`
	Code   string `json:"code" validate:"required"`
}

// ResendOtpRequest payload.
type ResendOtpRequest struct {
	Email string `json:"email"`
}
