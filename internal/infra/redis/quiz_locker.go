package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"growth-quiz-service/internal/domain"
)

// releaseScript deletes the repair lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// QuizLocker shares per-quiz repair locks across service instances.
//   - quiz:{quizID}:repair holds the exclusive lock (SET NX with TTL).
//   - quiz:{quizID}:scoring counts in-flight submissions.
//
// A repair takes the lock first and then waits for the scoring counter to drain,
// so new submissions are rejected while older ones finish.
type QuizLocker struct {
	client       *redis.Client
	ttl          time.Duration
	pollInterval time.Duration
}

func NewQuizLocker(client *redis.Client, ttl time.Duration) *QuizLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QuizLocker{client: client, ttl: ttl, pollInterval: 50 * time.Millisecond}
}

func (l *QuizLocker) RLock(ctx context.Context, quizID string) (func(), error) {
	counter := l.scoringKey(quizID)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, counter)
	pipe.Expire(ctx, counter, l.ttl)
	repairing := pipe.Exists(ctx, l.repairKey(quizID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("acquire scoring lock: %w", err)
	}

	release := func() {
		_ = l.client.Decr(context.Background(), counter).Err()
	}
	if repairing.Val() > 0 {
		release()
		return nil, domain.ErrRepairInProgress
	}
	return release, nil
}

func (l *QuizLocker) Lock(ctx context.Context, quizID string) (func(), error) {
	key := l.repairKey(quizID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire repair lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrRepairInProgress
	}
	release := func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}

	if err := l.waitForScoring(ctx, quizID); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

func (l *QuizLocker) waitForScoring(ctx context.Context, quizID string) error {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()
	for {
		n, err := l.client.Get(ctx, l.scoringKey(quizID)).Int64()
		if err != nil && err != redis.Nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read scoring counter: %w", err)
		}
		if n <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *QuizLocker) repairKey(quizID string) string {
	return "quiz:" + quizID + ":repair"
}

func (l *QuizLocker) scoringKey(quizID string) string {
	return "quiz:" + quizID + ":scoring"
}
