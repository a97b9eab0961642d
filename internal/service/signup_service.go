package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spec-kit/food-donation-service/internal/auth"
	"github.com/spec-kit/food-donation-service/internal/config"
	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/mailer"
	"github.com/spec-kit/food-donation-service/internal/repository"
	"github.com/spec-kit/food-donation-service/internal/session"
	apperrors "github.com/spec-kit/food-donation-service/pkg/util/errorutil"
)

const (
	otpMin      = 100000
	otpSpan     = 900000
	minPassword = 4
)

const uniqueViolationCode = "23505"

// SignupService owns the OTP-gated signup protocol: provisional identity
// staging, code issuance, verification and promotion to a persisted account.
type SignupService struct {
	users      repository.UserRepository
	otps       repository.OtpRepository
	tickets    session.SignupTicketStore
	mail       mailer.Mailer
	logger     *zap.Logger
	otpTTL     time.Duration
	bcryptCost int
}

// SignupDependencies bundles collaborators for the signup service.
type SignupDependencies struct {
	UserRepo    repository.UserRepository
	OtpRepo     repository.OtpRepository
	TicketStore session.SignupTicketStore
	Mailer      mailer.Mailer
	Logger      *zap.Logger
}

// SignupInput describes the registration submission.
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           *string
	Password        string
	ConfirmPassword string
	Role            domain.UserRole
}

// SignupPending is returned when an OTP has been issued and the registration
// staged; the ticket token identifies the provisional registration.
type SignupPending struct {
	TicketToken string
	Email       string
}

// NewSignupService builds the service.
func NewSignupService(cfg config.Config, deps SignupDependencies) *SignupService {
	return &SignupService{
		users:      deps.UserRepo,
		otps:       deps.OtpRepo,
		tickets:    deps.TicketStore,
		mail:       deps.Mailer,
		logger:     deps.Logger,
		otpTTL:     cfg.Signup.OtpTTL(),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// StartSignup validates the submission, issues a one-time code and stages the
// registration against an opaque ticket token. The password is hashed here so
// the plaintext never outlives this call. No side effect occurs when
// validation fails.
func (s *SignupService) StartSignup(ctx context.Context, input SignupInput) (*SignupPending, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	violations := []string{}
	if input.FirstName == "" || input.LastName == "" || input.Email == "" ||
		input.Password == "" || input.ConfirmPassword == "" {
		violations = append(violations, "please fill in all the fields")
	}
	if input.Password != input.ConfirmPassword {
		violations = append(violations, "passwords are not matching")
	}
	if len(input.Password) < minPassword {
		violations = append(violations, "password length should be at least 4 characters")
	}
	if !domain.ValidRole(input.Role) {
		violations = append(violations, "unknown role")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid signup", map[string]any{"errors": violations})
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewDuplicateEmail(input.Email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	code, err := generateOtpCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := time.Now()
	otp := &domain.OtpCode{
		Email:     input.Email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.otpTTL),
	}
	if err := s.otps.Upsert(ctx, otp); err != nil {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	ticket := &domain.SignupTicket{
		Token:        uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    now,
	}
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.sendMail(ctx, mailer.Message{
		To:      input.Email,
		Subject: "Verify Your Email",
		Text:    "Your OTP is: " + code,
	})

	return &SignupPending{TicketToken: ticket.Token, Email: input.Email}, nil
}

// VerifyOtp promotes the staged registration into a persisted account when
// the submitted code exactly matches the live, non-expired code for the
// staged email. OTP records for the email are deleted and the ticket cleared
// on success.
func (s *SignupService) VerifyOtp(ctx context.Context, ticketToken, submittedCode string) (*domain.User, error) {
	ticket, err := s.tickets.Get(ctx, ticketToken)
	if err != nil {
		if errors.Is(err, session.ErrTicketNotFound) {
			return nil, apperrors.NewSessionExpired()
		}
		return nil, apperrors.MapError(err)
	}

	otp, err := s.otps.GetByEmail(ctx, ticket.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidOtp()
		}
		return nil, apperrors.MapError(err)
	}
	if otp.Expired(time.Now()) || otp.Code != submittedCode {
		return nil, apperrors.NewInvalidOtp()
	}

	user := &domain.User{
		FirstName:    ticket.FirstName,
		LastName:     ticket.LastName,
		Email:        ticket.Email,
		Phone:        ticket.Phone,
		PasswordHash: ticket.PasswordHash,
		Role:         ticket.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.NewDuplicateEmail(ticket.Email)
		}
		return nil, apperrors.MapError(err)
	}

	// cleanup is best-effort; the account is already durable
	if err := s.otps.DeleteByEmail(ctx, ticket.Email); err != nil {
		s.logger.Warn("failed to delete otp records", zap.String("email", ticket.Email), zap.Error(err))
	}
	if err := s.tickets.Delete(ctx, ticketToken); err != nil {
		s.logger.Warn("failed to clear signup ticket", zap.Error(err))
	}

	return user, nil
}

// ResendOtp issues a fresh code for the email, superseding any prior code.
// It deliberately requires no active ticket; see the service design notes.
func (s *SignupService) ResendOtp(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.NewMissingEmail()
	}

	code, err := generateOtpCode()
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	now := time.Now()
	otp := &domain.OtpCode{
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.otpTTL),
	}
	if err := s.otps.Upsert(ctx, otp); err != nil {
		return apperrors.MapError(err)
	}

	s.sendMail(ctx, mailer.Message{
		To:      email,
		Subject: "[Food Donation] New OTP Verification",
		Text:    "Your new OTP is: " + code,
	})
	return nil
}

func (s *SignupService) sendMail(ctx context.Context, msg mailer.Message) {
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}

// generateOtpCode samples a 6-digit code uniformly from [100000, 999999].
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
