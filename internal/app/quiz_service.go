package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"growth-quiz-service/internal/domain"
	"growth-quiz-service/internal/engine"
	"growth-quiz-service/internal/metrics"
)

// QuizRepository loads and stores quiz definitions (from cache/backing store).
// Invalidate drops any cached copy so the next read goes to the backing store.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	Invalidate(ctx context.Context, quizID string) error
}

// ResultRepository persists immutable submission results.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.Result) error
	ListResults(ctx context.Context, quizID string) ([]domain.Result, error)
}

// StatsRepository maintains quiz-level counters. Record must apply the sample
// atomically and return the stats that include it.
type StatsRepository interface {
	Record(ctx context.Context, quizID string, sample domain.StatsSample) (domain.QuizStats, error)
	Get(ctx context.Context, quizID string) (domain.QuizStats, error)
}

// QuizLocker coordinates scoring with integrity repair on a per-quiz basis.
// RLock never waits for a running repair: it fails with domain.ErrRepairInProgress.
type QuizLocker interface {
	RLock(ctx context.Context, quizID string) (release func(), err error)
	Lock(ctx context.Context, quizID string) (release func(), err error)
}

// Repositories groups the storage dependencies of QuizService.
type Repositories struct {
	Quizzes QuizRepository
	Results ResultRepository
	Stats   StatsRepository
	Locks   QuizLocker
}

// Option customises a QuizService.
type Option func(*QuizService)

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator overrides how result ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(s *QuizService) { s.newID = next }
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	quizzes  QuizRepository
	results  ResultRepository
	stats    StatsRepository
	locks    QuizLocker
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string

	feedsMu sync.Mutex
	feeds   map[string]*StatsFeed
}

func NewQuizService(repos Repositories, log *zap.Logger, opts ...Option) *QuizService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &QuizService{
		quizzes:  repos.Quizzes,
		results:  repos.Results,
		stats:    repos.Stats,
		locks:    repos.Locks,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
		newID:    uuid.NewString,
		feeds:    make(map[string]*StatsFeed),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveDefinition validates, normalizes and persists a quiz definition. The stored
// definition is returned with its id assigned.
func (s *QuizService) SaveDefinition(ctx context.Context, quiz domain.Quiz) (domain.Quiz, engine.ValidationResult, error) {
	res := engine.Validate(quiz)
	if err := res.Err(); err != nil {
		return domain.Quiz{}, res, err
	}
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	quiz = engine.Normalize(quiz)
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, res, fmt.Errorf("save quiz %s: %w", quiz.ID, err)
	}
	s.log.Info("quiz definition saved",
		zap.String("quiz_id", quiz.ID),
		zap.String("quiz_type", string(quiz.Type)),
		zap.Int("warnings", len(res.Warnings)),
	)
	return quiz, res, nil
}

// ValidateDraft runs full validation without persisting anything.
func (s *QuizService) ValidateDraft(quiz domain.Quiz) engine.ValidationResult {
	return engine.Validate(quiz)
}

func (s *QuizService) ValidateBasics(quiz domain.Quiz) engine.ValidationResult {
	return engine.ValidateBasics(quiz)
}

func (s *QuizService) ValidateDimensions(dims []domain.Dimension) engine.ValidationResult {
	return engine.ValidateDimensions(dims)
}

func (s *QuizService) ValidateQuestions(quizType domain.QuizType, questions []domain.Question, dims []domain.Dimension) engine.ValidationResult {
	return engine.ValidateQuestions(quizType, questions, dims)
}

// Submit scores a submission, stores the result and updates quiz stats.
func (s *QuizService) Submit(ctx context.Context, userID string, submission domain.Submission) (domain.Result, error) {
	if err := s.checkSubmission(submission); err != nil {
		metrics.RejectedSubmissionCounter.WithLabelValues("invalid").Inc()
		return domain.Result{}, err
	}

	// the definition must be read under the lock so a finished repair is always visible
	release, err := s.locks.RLock(ctx, submission.QuizID)
	if err != nil {
		if errors.Is(err, domain.ErrRepairInProgress) {
			metrics.RejectedSubmissionCounter.WithLabelValues("repair").Inc()
		}
		return domain.Result{}, err
	}
	defer release()

	quiz, err := s.quizzes.GetQuiz(ctx, submission.QuizID)
	if err != nil {
		return domain.Result{}, err
	}
	if !quiz.IsPublic || !quiz.IsActive {
		metrics.RejectedSubmissionCounter.WithLabelValues("unavailable").Inc()
		return domain.Result{}, domain.ErrQuizUnavailable
	}

	outcome, sheet := engine.Evaluate(quiz, submission.Answers)
	result := domain.Result{
		ID:        s.newID(),
		QuizID:    quiz.ID,
		UserID:    userID,
		Outcome:   outcome,
		TimeSpent: submission.TimeSpent,
		Completed: len(quiz.Questions) > 0 && sheet.Answered == len(quiz.Questions),
		CreatedAt: s.now(),
	}
	if err := s.results.SaveResult(ctx, result); err != nil {
		return domain.Result{}, fmt.Errorf("save result: %w", err)
	}

	stats, err := s.stats.Record(ctx, quiz.ID, domain.StatsSample{Score: outcome.Score, TimeSpent: submission.TimeSpent})
	if err != nil {
		// the result is already durable; stats can be rebuilt from history
		s.log.Warn("stats update failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
	} else {
		s.publish(stats)
	}

	metrics.SubmissionCounter.WithLabelValues(string(quiz.Type)).Inc()
	metrics.ClassificationCounter.WithLabelValues(string(outcome.MatchKind)).Inc()
	if outcome.Degraded {
		metrics.DegradedScoringCounter.Inc()
		s.log.Warn("scored with reconstructed dimension links",
			zap.String("quiz_id", quiz.ID),
			zap.String("result_id", result.ID),
		)
	}
	s.log.Info("submission scored",
		zap.String("quiz_id", quiz.ID),
		zap.String("result_id", result.ID),
		zap.String("classification", outcome.Classification),
		zap.String("match", string(outcome.MatchKind)),
		zap.Bool("completed", result.Completed),
	)
	return result, nil
}

func (s *QuizService) checkSubmission(submission domain.Submission) error {
	err := s.validate.Struct(submission)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	issues := make([]domain.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, domain.Issue{
			Field:   fe.Namespace(),
			Code:    engine.CodeInvalidSubmission,
			Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
		})
	}
	return &domain.ValidationError{Issues: issues}
}

// RepairQuiz reconstructs missing dimension links under an exclusive quiz lock
// and persists the repaired definition when anything changed.
func (s *QuizService) RepairQuiz(ctx context.Context, quizID string) (engine.RepairReport, error) {
	release, err := s.locks.Lock(ctx, quizID)
	if err != nil {
		return engine.RepairReport{}, err
	}
	defer release()

	// repair from the stored definition, never from a cached copy
	if err := s.quizzes.Invalidate(ctx, quizID); err != nil {
		return engine.RepairReport{}, fmt.Errorf("evict quiz %s: %w", quizID, err)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return engine.RepairReport{}, err
	}

	repaired, report := engine.Repair(quiz)
	if !report.Success {
		metrics.RepairCounter.WithLabelValues("failed").Inc()
		s.log.Warn("quiz repair failed", zap.String("quiz_id", quizID), zap.String("reason", report.Message))
		return report, nil
	}
	if report.Changed() {
		if err := s.quizzes.SaveQuiz(ctx, repaired); err != nil {
			return report, fmt.Errorf("save repaired quiz %s: %w", quizID, err)
		}
		// a read that started before the save may have cached the old definition
		if err := s.quizzes.Invalidate(ctx, quizID); err != nil {
			s.log.Warn("evict repaired quiz failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
		metrics.RepairCounter.WithLabelValues("repaired").Inc()
	} else {
		metrics.RepairCounter.WithLabelValues("clean").Inc()
	}
	s.log.Info("quiz repair finished",
		zap.String("quiz_id", quizID),
		zap.Int("issues", len(report.IssuesFound)),
	)
	return report, nil
}

// InspectQuiz reports integrity issues without modifying anything.
func (s *QuizService) InspectQuiz(ctx context.Context, quizID string) (engine.InspectionReport, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return engine.InspectionReport{}, err
	}
	return engine.Inspect(quiz), nil
}

// Analytics aggregates all stored results of a quiz.
func (s *QuizService) Analytics(ctx context.Context, quizID string) (engine.QuizAnalytics, error) {
	var (
		quiz    domain.Quiz
		results []domain.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quiz, err = s.quizzes.GetQuiz(gctx, quizID)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = s.results.ListResults(gctx, quizID)
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return engine.QuizAnalytics{}, err
	}
	return engine.Aggregate(quiz, results), nil
}

// Stats returns the current counters of a quiz.
func (s *QuizService) Stats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.QuizStats{}, err
	}
	return s.stats.Get(ctx, quizID)
}

// SubscribeStats returns a channel that receives stats updates for a quiz,
// starting with the current snapshot. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *QuizService) SubscribeStats(ctx context.Context, quizID string) (<-chan domain.QuizStats, func(), error) {
	current, err := s.Stats(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}

	s.feedsMu.Lock()
	feed, ok := s.feeds[quizID]
	if !ok {
		feed = newStatsFeed(current)
		s.feeds[quizID] = feed
	}
	ch := feed.subscribe()
	s.feedsMu.Unlock()

	cancel := func() {
		s.feedsMu.Lock()
		defer s.feedsMu.Unlock()
		if feed.unsubscribe(ch) {
			delete(s.feeds, quizID)
		}
	}
	return ch, cancel, nil
}

func (s *QuizService) publish(stats domain.QuizStats) {
	s.feedsMu.Lock()
	feed, ok := s.feeds[stats.QuizID]
	s.feedsMu.Unlock()
	if ok {
		feed.broadcast(stats)
	}
}
