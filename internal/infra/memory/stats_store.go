package memory

import (
	"context"
	"sync"
	"time"

	"growth-quiz-service/internal/domain"
)

type statsCounters struct {
	attempts int64
	scoreSum float64
	timeSum  float64
	updated  time.Time
}

// StatsStore keeps running sums per quiz; Record is a single critical section.
type StatsStore struct {
	clock    func() time.Time
	mu       sync.Mutex
	counters map[string]*statsCounters
}

func NewStatsStore() *StatsStore {
	return &StatsStore{clock: time.Now, counters: make(map[string]*statsCounters)}
}

func (s *StatsStore) Record(_ context.Context, quizID string, sample domain.StatsSample) (domain.QuizStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[quizID]
	if !ok {
		c = &statsCounters{}
		s.counters[quizID] = c
	}
	c.attempts++
	c.scoreSum += float64(sample.Score)
	c.timeSum += float64(sample.TimeSpent)
	c.updated = s.clock()
	return domain.StatsFromSums(quizID, c.attempts, c.scoreSum, c.timeSum, c.updated), nil
}

func (s *StatsStore) Get(_ context.Context, quizID string) (domain.QuizStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[quizID]
	if !ok {
		return domain.QuizStats{QuizID: quizID}, nil
	}
	return domain.StatsFromSums(quizID, c.attempts, c.scoreSum, c.timeSum, c.updated), nil
}
