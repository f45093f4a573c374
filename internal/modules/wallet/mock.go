package wallet

import (
	"context"
	"sync"
)

// MockService implements Service with in-memory balances for tests and
// the monolith's store-less mode.
type MockService struct {
	balances map[int64]int64
	mu       sync.RWMutex
}

// NewMockService creates a new mock wallet service
func NewMockService() *MockService {
	return &MockService{
		balances: make(map[int64]int64),
	}
}

// SetBalance sets the balance for a user (for testing)
func (s *MockService) SetBalance(userID int64, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = balance
}

// GetBalance returns the user's balance
func (s *MockService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[userID], nil
}

// DeductBalance deducts balance, rejecting overdrafts
func (s *MockService) DeductBalance(ctx context.Context, userID int64, amount int64, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[userID]
	if balance < amount {
		return balance, ErrInsufficientFunds
	}
	newBalance := balance - amount
	s.balances[userID] = newBalance
	return newBalance, nil
}

// AddBalance adds balance
func (s *MockService) AddBalance(ctx context.Context, userID int64, amount int64, reason string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newBalance := s.balances[userID] + amount
	s.balances[userID] = newBalance
	return newBalance, nil
}
