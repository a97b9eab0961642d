package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/food-donation-service/internal/domain"
)

// OtpRepository manages one-time passcode persistence.
// Upsert is keyed on email so a fresh issuance atomically supersedes the
// prior code for the same address.
type OtpRepository interface {
	Upsert(ctx context.Context, otp *domain.OtpCode) error
	GetByEmail(ctx context.Context, email string) (*domain.OtpCode, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type otpRepository struct {
	pool *pgxpool.Pool
}

// NewOtpRepository constructs repository.
func NewOtpRepository(pool *pgxpool.Pool) OtpRepository {
	return &otpRepository{pool: pool}
}

func (r *otpRepository) Upsert(ctx context.Context, otp *domain.OtpCode) error {
	const query = `
        INSERT INTO otp_codes (email, code, issued_at, expires_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (email) DO UPDATE
            SET code=EXCLUDED.code, issued_at=EXCLUDED.issued_at, expires_at=EXCLUDED.expires_at
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		otp.Email,
		otp.Code,
		otp.IssuedAt,
		otp.ExpiresAt,
	).Scan(&otp.ID)
}

func (r *otpRepository) GetByEmail(ctx context.Context, email string) (*domain.OtpCode, error) {
	const query = `
        SELECT id, email, code, issued_at, expires_at
        FROM otp_codes WHERE email=$1`

	var otp domain.OtpCode
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.IssuedAt,
		&otp.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) DeleteByEmail(ctx context.Context, email string) error {
	const query = `DELETE FROM otp_codes WHERE email=$1`
	_, err := r.pool.Exec(ctx, query, email)
	return err
}
