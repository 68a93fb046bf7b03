package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"growth-quiz-service/internal/domain"
)

// quizLockSpace is the first key of every two-key advisory lock taken here,
// keeping quiz locks apart from other advisory lock users of the database.
const quizLockSpace int32 = 0x5155495a

// QuizLocker coordinates scoring and repair across processes with session-level
// advisory locks. Scoring holds the shared lock and repair the exclusive one.
// Each held lock pins one pooled connection until released.
type QuizLocker struct {
	pool *pgxpool.Pool
}

func NewQuizLocker(pool *pgxpool.Pool) *QuizLocker {
	return &QuizLocker{pool: pool}
}

// RLock fails with domain.ErrRepairInProgress when a repair holds or waits for the quiz.
func (l *QuizLocker) RLock(ctx context.Context, quizID string) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	var granted bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock_shared($1, hashtext($2))`, quizLockSpace, quizID).Scan(&granted)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire scoring lock: %w", err)
	}
	if !granted {
		conn.Release()
		return nil, domain.ErrRepairInProgress
	}
	return unlocker(conn, `SELECT pg_advisory_unlock_shared($1, hashtext($2))`, quizID), nil
}

// Lock blocks until every shared holder has released the quiz.
func (l *QuizLocker) Lock(ctx context.Context, quizID string) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1, hashtext($2))`, quizLockSpace, quizID); err != nil {
		// a cancelled wait may leave the lock granted on this session
		_ = conn.Conn().Close(context.Background())
		conn.Release()
		return nil, fmt.Errorf("acquire repair lock: %w", err)
	}
	return unlocker(conn, `SELECT pg_advisory_unlock($1, hashtext($2))`, quizID), nil
}

func unlocker(conn *pgxpool.Conn, query, quizID string) func() {
	return func() {
		if _, err := conn.Exec(context.Background(), query, quizLockSpace, quizID); err != nil {
			// closing the session drops any advisory lock it still holds
			_ = conn.Conn().Close(context.Background())
		}
		conn.Release()
	}
}
