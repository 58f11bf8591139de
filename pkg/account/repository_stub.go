package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type StubRepository struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewStubRepository() *StubRepository {
	return &StubRepository{accounts: map[string]Account{}}
}

func (s *StubRepository) Upsert(_ context.Context, acc Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uid, existing := range s.accounts {
		if existing.GoogleId != acc.GoogleId {
			continue
		}
		acc.Uid = uid
		if acc.RefreshToken == "" {
			acc.RefreshToken = existing.RefreshToken
		}
		s.accounts[uid] = acc
		return acc, nil
	}
	acc.Uid = uuid.NewString()
	s.accounts[acc.Uid] = acc
	return acc, nil
}

func (s *StubRepository) FindByUid(_ context.Context, uid string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[uid]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (s *StubRepository) UpdateTokens(_ context.Context, uid string, accessToken, refreshToken string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[uid]
	if !ok {
		return ErrNotFound
	}
	acc.AccessToken = accessToken
	if refreshToken != "" {
		acc.RefreshToken = refreshToken
	}
	acc.Expiry = expiry
	s.accounts[uid] = acc
	return nil
}
