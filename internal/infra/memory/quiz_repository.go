package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"growth-quiz-service/internal/domain"
)

// QuizStore is the backing store of quiz definitions (e.g., document DB).
type QuizStore interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
}

// QuizRepository caches quizzes with TTL to avoid repeated DB hits.
type QuizRepository struct {
	store QuizStore
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedQuiz
	// evictions counts Invalidate calls; a load that saw an eviction is not cached
	evictions uint64
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(store QuizStore, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		store: store,
		ttl:   ttl,
		clock: time.Now,
		cache: make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.cached(quizID); ok {
			return quiz, nil
		}

		seen := r.evictionCount()
		quiz, err := r.store.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.putIfUnchanged(quiz, seen)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// SaveQuiz writes through to the store and refreshes the cached copy.
func (r *QuizRepository) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	_ = r.Invalidate(ctx, quiz.ID)
	if err := r.store.SaveQuiz(ctx, quiz); err != nil {
		return err
	}
	r.put(quiz)
	return nil
}

// Invalidate drops a cached quiz so the next read hits the store. Loads that
// were already in flight do not repopulate the cache.
func (r *QuizRepository) Invalidate(_ context.Context, quizID string) error {
	r.mu.Lock()
	delete(r.cache, quizID)
	r.evictions++
	r.mu.Unlock()
	return nil
}

func (r *QuizRepository) evictionCount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.evictions
}

func (r *QuizRepository) cached(quizID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) put(quiz domain.Quiz) {
	r.mu.Lock()
	r.setLocked(quiz)
	r.mu.Unlock()
}

func (r *QuizRepository) putIfUnchanged(quiz domain.Quiz, seen uint64) {
	r.mu.Lock()
	if r.evictions == seen {
		r.setLocked(quiz)
	}
	r.mu.Unlock()
}

// setLocked requires r.mu held for writing.
func (r *QuizRepository) setLocked(quiz domain.Quiz) {
	r.cache[quiz.ID] = cachedQuiz{
		quiz:      quiz,
		expiresAt: r.clock().Add(r.ttlWithJitter()),
	}
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
