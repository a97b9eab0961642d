package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/food-donation-service/internal/domain"
	"github.com/spec-kit/food-donation-service/internal/mailer"
	"github.com/spec-kit/food-donation-service/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) seed(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		r.nextID++
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role domain.UserRole) (int64, error) {
	users, _ := r.ListByRole(context.Background(), role)
	return int64(len(users)), nil
}

type fakeDonationRepo struct {
	mu        sync.Mutex
	nextID    int
	donations map[string]*domain.Donation
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: make(map[string]*domain.Donation)}
}

func (r *fakeDonationRepo) seed(donation *domain.Donation) *domain.Donation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if donation.ID == "" {
		r.nextID++
		donation.ID = fmt.Sprintf("donation-%d", r.nextID)
	}
	copied := *donation
	r.donations[donation.ID] = &copied
	return donation
}

func (r *fakeDonationRepo) Create(_ context.Context, donation *domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	donation.ID = fmt.Sprintf("donation-%d", r.nextID)
	donation.CreatedAt = time.Now()
	donation.UpdatedAt = donation.CreatedAt
	copied := *donation
	r.donations[donation.ID] = &copied
	return nil
}

func (r *fakeDonationRepo) Update(_ context.Context, donation *domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.donations[donation.ID]; !ok {
		return pgx.ErrNoRows
	}
	donation.UpdatedAt = time.Now()
	copied := *donation
	r.donations[donation.ID] = &copied
	return nil
}

func (r *fakeDonationRepo) GetByID(_ context.Context, id string) (*domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	donation, ok := r.donations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *donation
	return &copied, nil
}

func (r *fakeDonationRepo) ListWithFilter(_ context.Context, filter repository.DonationFilter) ([]domain.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Donation
	for _, donation := range r.donations {
		if matchesFilter(donation, filter) {
			result = append(result, *donation)
		}
	}
	return result, nil
}

func (r *fakeDonationRepo) CountWithFilter(_ context.Context, filter repository.DonationFilter) (int64, error) {
	donations, _ := r.ListWithFilter(context.Background(), filter)
	return int64(len(donations)), nil
}

func matchesFilter(donation *domain.Donation, filter repository.DonationFilter) bool {
	if filter.DonorID != nil && donation.DonorID != *filter.DonorID {
		return false
	}
	if filter.AgentID != nil {
		if donation.AgentID == nil || *donation.AgentID != *filter.AgentID {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if donation.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type fakeOtpRepo struct {
	mu   sync.Mutex
	otps map[string]*domain.OtpCode
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{otps: make(map[string]*domain.OtpCode)}
}

func (r *fakeOtpRepo) Upsert(_ context.Context, otp *domain.OtpCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *otp
	r.otps[otp.Email] = &copied
	return nil
}

func (r *fakeOtpRepo) GetByEmail(_ context.Context, email string) (*domain.OtpCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.otps[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *otp
	return &copied, nil
}

func (r *fakeOtpRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.otps, email)
	return nil
}

func (r *fakeOtpRepo) expire(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if otp, ok := r.otps[email]; ok {
		otp.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

func (r *fakeOtpRepo) setCode(email, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if otp, ok := r.otps[email]; ok {
		otp.Code = code
	}
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message{}, m.sent...)
}

func (m *fakeMailer) to(address string) []mailer.Message {
	var result []mailer.Message
	for _, msg := range m.messages() {
		if msg.To == address {
			result = append(result, msg)
		}
	}
	return result
}
