package memory

import (
	"context"
	"sync"

	"growth-quiz-service/internal/domain"
)

// QuizLocker is an in-process implementation of app.QuizLocker.
// Scoring takes a shared lock that fails fast while a repair holds the quiz;
// repairs wait for in-flight scoring to drain.
type QuizLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func NewQuizLocker() *QuizLocker {
	return &QuizLocker{locks: make(map[string]*sync.RWMutex)}
}

func (l *QuizLocker) RLock(_ context.Context, quizID string) (func(), error) {
	lock := l.getOrCreate(quizID)
	if !lock.TryRLock() {
		return nil, domain.ErrRepairInProgress
	}
	return lock.RUnlock, nil
}

func (l *QuizLocker) Lock(ctx context.Context, quizID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lock := l.getOrCreate(quizID)
	lock.Lock()
	return lock.Unlock, nil
}

func (l *QuizLocker) getOrCreate(quizID string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lock, ok := l.locks[quizID]; ok {
		return lock
	}
	lock := &sync.RWMutex{}
	l.locks[quizID] = lock
	return lock
}
