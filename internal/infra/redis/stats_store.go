package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"growth-quiz-service/internal/domain"
)

const (
	fieldAttempts  = "attempts"
	fieldScoreSum  = "score_sum"
	fieldTimeSum   = "time_sum"
	fieldUpdatedAt = "updated_at"
)

// StatsStore keeps per-quiz running sums in a Redis hash (quiz:{quizID}:stats).
// Every sample is applied with HINCRBY/HINCRBYFLOAT inside MULTI, so concurrent
// submissions across instances never overwrite each other.
type StatsStore struct {
	client *redis.Client
	clock  func() time.Time
}

func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client, clock: time.Now}
}

func (s *StatsStore) Record(ctx context.Context, quizID string, sample domain.StatsSample) (domain.QuizStats, error) {
	key := s.key(quizID)
	now := s.clock().UTC()

	pipe := s.client.TxPipeline()
	attempts := pipe.HIncrBy(ctx, key, fieldAttempts, 1)
	scoreSum := pipe.HIncrByFloat(ctx, key, fieldScoreSum, float64(sample.Score))
	timeSum := pipe.HIncrByFloat(ctx, key, fieldTimeSum, float64(sample.TimeSpent))
	pipe.HSet(ctx, key, fieldUpdatedAt, now.Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.QuizStats{}, fmt.Errorf("record stats: %w", err)
	}
	return domain.StatsFromSums(quizID, attempts.Val(), scoreSum.Val(), timeSum.Val(), now), nil
}

func (s *StatsStore) Get(ctx context.Context, quizID string) (domain.QuizStats, error) {
	fields, err := s.client.HGetAll(ctx, s.key(quizID)).Result()
	if err != nil {
		return domain.QuizStats{}, fmt.Errorf("load stats: %w", err)
	}
	if len(fields) == 0 {
		return domain.QuizStats{QuizID: quizID}, nil
	}
	attempts, _ := strconv.ParseInt(fields[fieldAttempts], 10, 64)
	scoreSum, _ := strconv.ParseFloat(fields[fieldScoreSum], 64)
	timeSum, _ := strconv.ParseFloat(fields[fieldTimeSum], 64)
	updatedAt, _ := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt])
	return domain.StatsFromSums(quizID, attempts, scoreSum, timeSum, updatedAt), nil
}

func (s *StatsStore) key(quizID string) string {
	return "quiz:" + quizID + ":stats"
}
