package session

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/food-donation-service/internal/domain"
)

type memoryEntry struct {
	ticket    domain.SignupTicket
	expiresAt time.Time
}

type memoryTicketStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	tickets map[string]memoryEntry
}

// NewMemoryTicketStore returns an in-process store for tests and local runs
// without Redis.
func NewMemoryTicketStore(ttl time.Duration) SignupTicketStore {
	return &memoryTicketStore{
		ttl:     ttl,
		tickets: make(map[string]memoryEntry),
	}
}

func (s *memoryTicketStore) Put(_ context.Context, ticket *domain.SignupTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticket.Token] = memoryEntry{ticket: *ticket, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *memoryTicketStore) Get(_ context.Context, token string) (*domain.SignupTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tickets[token]
	if !ok {
		return nil, ErrTicketNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.tickets, token)
		return nil, ErrTicketNotFound
	}
	ticket := entry.ticket
	return &ticket, nil
}

func (s *memoryTicketStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, token)
	return nil
}
