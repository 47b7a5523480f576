package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore implements Store with an in-process map. Intended for tests
// and local development; production deployments must use a durable store
// shared across processes.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() Store {
	return &memStore{accounts: make(map[uuid.UUID]*Account)}
}

func (s *memStore) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (s *memStore) Create(ctx context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.ID]; exists {
		return ErrAccountAlreadyExists
	}
	cp := *acc
	s.accounts[acc.ID] = &cp
	return nil
}

func (s *memStore) Deduct(ctx context.Context, id uuid.UUID, amount int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return false, ErrAccountNotFound
	}
	if acc.CreditsUsed+amount > acc.Credits {
		return false, nil
	}
	acc.CreditsUsed += amount
	acc.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *memStore) Reset(ctx context.Context, id uuid.UUID, newTotal int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	resetAt := now
	acc.Credits = newTotal
	acc.CreditsUsed = 0
	acc.CreditsResetAt = &resetAt
	acc.UpdatedAt = now
	return nil
}

func (s *memStore) ResetIfElapsed(ctx context.Context, id uuid.UUID, newTotal int64, cutoff, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return false, ErrAccountNotFound
	}
	if acc.CreditsResetAt != nil && !acc.CreditsResetAt.Before(cutoff) {
		return false, nil
	}
	resetAt := now
	acc.Credits = newTotal
	acc.CreditsUsed = 0
	acc.CreditsResetAt = &resetAt
	acc.UpdatedAt = now
	return true, nil
}

func (s *memStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}
