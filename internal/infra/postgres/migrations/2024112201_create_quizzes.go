package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// createQuizzesSQL creates the JSONB definition table read by postgres.QuizStore
// and the quizType expression index used to list quizzes by scoring scheme.
//
//go:embed 0001_create_quizzes.sql
var createQuizzesSQL string

// Migrations is the ordered schema history applied by `migrate` and on server start.
var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(createQuizzes, dropQuizzes)
}

func createQuizzes(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, createQuizzesSQL)
	return err
}

// dropQuizzes fails while quiz_results still references the table; roll that back first.
func dropQuizzes(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx, `DROP INDEX IF EXISTS quizzes_type_idx`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS quizzes`)
		return err
	})
}
