package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/food-donation-service/internal/domain"
)

// ErrTicketNotFound is returned when no ticket exists for a token, either
// because it was never issued, already consumed, or its TTL lapsed.
var ErrTicketNotFound = errors.New("signup ticket not found")

// SignupTicketStore holds provisional registrations pending OTP verification.
type SignupTicketStore interface {
	Put(ctx context.Context, ticket *domain.SignupTicket) error
	Get(ctx context.Context, token string) (*domain.SignupTicket, error)
	Delete(ctx context.Context, token string) error
}

const ticketKeyPrefix = "signup:ticket:"

type redisTicketStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTicketStore returns a Redis-backed store; tickets expire after ttl.
func NewRedisTicketStore(client *redis.Client, ttl time.Duration) SignupTicketStore {
	return &redisTicketStore{client: client, ttl: ttl}
}

func (s *redisTicketStore) Put(ctx context.Context, ticket *domain.SignupTicket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, ticketKeyPrefix+ticket.Token, payload, s.ttl).Err()
}

func (s *redisTicketStore) Get(ctx context.Context, token string) (*domain.SignupTicket, error) {
	payload, err := s.client.Get(ctx, ticketKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	var ticket domain.SignupTicket
	if err := json.Unmarshal(payload, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *redisTicketStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, ticketKeyPrefix+token).Err()
}
