package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"growth-quiz-service/internal/app"
	"growth-quiz-service/internal/config"
	"growth-quiz-service/internal/infra/memory"
	"growth-quiz-service/internal/infra/postgres"
	inforedis "growth-quiz-service/internal/infra/redis"
	"growth-quiz-service/internal/logger"
)

// backends holds the service and the connections it was built on.
type backends struct {
	service *app.QuizService
	pool    *pgxpool.Pool
	db      *bun.DB
	redis   *redis.Client
	stop    context.CancelFunc
}

func (b *backends) Close() {
	if b.stop != nil {
		b.stop()
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// openBackends picks Postgres for definitions and results when configured, Redis for
// the definition cache, stats and locks when configured, and memory otherwise.
func openBackends(ctx context.Context, cfg config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	var quizStore memory.QuizStore = memory.NewStaticQuizStore(sampleQuizzes())
	var results app.ResultRepository = memory.NewResultStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.pool = pool
		b.db = postgres.OpenBun(cfg.Postgres.URL)
		quizStore = postgres.NewQuizStore(pool)
		results = postgres.NewResultStore(b.db)
		log.Info("using postgres for quizzes and results")
	} else {
		log.Info("postgres not configured; serving sample quizzes from memory")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	repos := app.Repositories{Results: results}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, err
		}
		repos.Quizzes = inforedis.NewQuizRepository(b.redis, quizStore, quizTTL)
		repos.Stats = inforedis.NewStatsStore(b.redis)
		log.Info("using redis for quiz cache, stats and locks", zap.String("addr", cfg.Redis.Addr))
	} else {
		cache := memory.NewQuizRepository(quizStore, quizTTL)
		repos.Quizzes = cache
		repos.Stats = memory.NewStatsStore()
		if b.pool != nil {
			// other processes write definitions to the same database
			watchCtx, stop := context.WithCancel(context.Background())
			b.stop = stop
			go watchQuizChanges(watchCtx, b.pool, cache, log)
		}
	}
	repos.Locks = quizLocker(cfg, b.pool, b.redis)

	b.service = app.NewQuizService(repos, log)
	return b, nil
}

// quizLocker picks the lock shared by every process that can reach the quiz:
// redis first, then postgres advisory locks, and an in-process lock otherwise.
func quizLocker(cfg config.Config, pool *pgxpool.Pool, client *redis.Client) app.QuizLocker {
	switch {
	case client != nil:
		return inforedis.NewQuizLocker(client, config.TTLDuration(cfg.Redis.LockTTL, 5*time.Minute))
	case pool != nil:
		return postgres.NewQuizLocker(pool)
	default:
		return memory.NewQuizLocker()
	}
}

// watchQuizChanges evicts cached definitions saved by other processes and
// restarts the listener until ctx is done.
func watchQuizChanges(ctx context.Context, pool *pgxpool.Pool, cache *memory.QuizRepository, log *zap.Logger) {
	for {
		err := postgres.WatchQuizChanges(ctx, pool, func(quizID string) {
			_ = cache.Invalidate(ctx, quizID)
		})
		if ctx.Err() != nil {
			return
		}
		log.Warn("quiz change listener stopped; restarting", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
