package memory

import (
	"context"
	"sync"

	"growth-quiz-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultRepository.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.Result
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]domain.Result)}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.QuizID] = append(s.results[result.QuizID], result)
	return nil
}

// ListResults returns results in insertion order.
func (s *ResultStore) ListResults(_ context.Context, quizID string) ([]domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.results[quizID]
	out := make([]domain.Result, len(stored))
	copy(out, stored)
	return out, nil
}
