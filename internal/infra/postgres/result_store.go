package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"growth-quiz-service/internal/domain"
)

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID        string                `bun:"id,pk"`
	QuizID    string                `bun:"quiz_id,notnull"`
	UserID    string                `bun:"user_id,notnull"`
	Outcome   domain.ScoringOutcome `bun:"outcome,type:jsonb,notnull"`
	TimeSpent int                   `bun:"time_spent,notnull"`
	Completed bool                  `bun:"completed,notnull"`
	CreatedAt time.Time             `bun:"created_at,notnull"`
}

// ResultStore persists submission results through bun.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.Result) error {
	row := resultRow{
		ID:        result.ID,
		QuizID:    result.QuizID,
		UserID:    result.UserID,
		Outcome:   result.Outcome,
		TimeSpent: result.TimeSpent,
		Completed: result.Completed,
		CreatedAt: result.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.Result, error) {
	var rows []resultRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	results := make([]domain.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, domain.Result{
			ID:        row.ID,
			QuizID:    row.QuizID,
			UserID:    row.UserID,
			Outcome:   row.Outcome,
			TimeSpent: row.TimeSpent,
			Completed: row.Completed,
			CreatedAt: row.CreatedAt,
		})
	}
	return results, nil
}
