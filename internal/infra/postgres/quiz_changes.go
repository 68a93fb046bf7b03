package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizChangesChannel carries the id of every saved quiz definition.
const QuizChangesChannel = "quiz_definition_changes"

// WatchQuizChanges calls onChange for each quiz saved by any process until ctx
// is done or the listening connection fails.
func WatchQuizChanges(ctx context.Context, pool *pgxpool.Pool, onChange func(quizID string)) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	// a listening session is never handed back to the pool
	defer func() {
		_ = conn.Conn().Close(context.Background())
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+QuizChangesChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for quiz change: %w", err)
		}
		onChange(n.Payload)
	}
}
