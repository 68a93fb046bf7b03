package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"growth-quiz-service/internal/app"
	"growth-quiz-service/internal/domain"
	"growth-quiz-service/internal/engine"
	"growth-quiz-service/internal/infra/memory"
)

func TestSubmitSimpleQuiz(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, wellbeingQuiz())

	result, err := h.service.Submit(ctx, "u1", domain.Submission{
		QuizID:    "wellbeing",
		Answers:   []domain.SubmissionAnswer{answer("w1", 15), answer("w2", 10), answer("w3", 5)},
		TimeSpent: 6,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	out := result.Outcome
	if out.Score != 30 || out.MaxScore != 45 || out.Percentage != 67 {
		t.Fatalf("expected 30/45 (67%%), got %d/%d (%d%%)", out.Score, out.MaxScore, out.Percentage)
	}
	if out.Classification != "Getting there" || out.MatchKind != domain.MatchCriterion {
		t.Fatalf("unexpected classification %q (%s)", out.Classification, out.MatchKind)
	}
	if result.ID != "r-1" || result.UserID != "u1" || !result.Completed || !result.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected result record: %+v", result)
	}

	stored, _ := h.results.ListResults(ctx, "wellbeing")
	if len(stored) != 1 || stored[0].ID != "r-1" {
		t.Fatalf("expected stored result, got %+v", stored)
	}
	stats, err := h.service.Stats(ctx, "wellbeing")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAttempts != 1 || stats.AverageScore != 30 || stats.AverageCompletionTime != 6 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestSubmitComplexQuizFallsBackToLetterCode(t *testing.T) {
	h := newHarness(t, energyQuiz())

	result, err := h.service.Submit(context.Background(), "u1", domain.Submission{
		QuizID:  "energy",
		Answers: []domain.SubmissionAnswer{answer("e1", 15), answer("e2", 15), answer("e3", 0), answer("e4", 5)},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	out := result.Outcome
	if out.DimensionScores["E/I"] != 30 || out.DimensionScores["S/N"] != 5 {
		t.Fatalf("unexpected dimension scores: %+v", out.DimensionScores)
	}
	if out.Classification != "EN" || out.MatchKind != domain.MatchPartial {
		t.Fatalf("expected partial EN, got %q (%s)", out.Classification, out.MatchKind)
	}
	if out.Degraded {
		t.Fatalf("linked quiz must not be scored degraded")
	}
}

func TestSubmitRejections(t *testing.T) {
	ctx := context.Background()
	inactive := wellbeingQuiz()
	inactive.ID = "paused"
	inactive.IsActive = false
	h := newHarness(t, wellbeingQuiz(), inactive)

	_, err := h.service.Submit(ctx, "u1", domain.Submission{QuizID: "wellbeing", TimeSpent: -1})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 2 {
		t.Fatalf("expected two payload issues, got %v", err)
	}
	for _, code := range verr.Codes() {
		if code != engine.CodeInvalidSubmission {
			t.Fatalf("unexpected code %s", code)
		}
	}

	_, err = h.service.Submit(ctx, "u1", domain.Submission{
		QuizID:  "wellbeing",
		Answers: []domain.SubmissionAnswer{{QuestionID: "w1"}},
	})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected answer without option to be rejected, got %v", err)
	}

	valid := []domain.SubmissionAnswer{answer("w1", 5)}
	if _, err := h.service.Submit(ctx, "u1", domain.Submission{QuizID: "missing", Answers: valid}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := h.service.Submit(ctx, "u1", domain.Submission{QuizID: "paused", Answers: valid}); !errors.Is(err, domain.ErrQuizUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestSubmitUnknownIdsStillProduceResult(t *testing.T) {
	h := newHarness(t, wellbeingQuiz())
	result, err := h.service.Submit(context.Background(), "u1", domain.Submission{
		QuizID:  "wellbeing",
		Answers: []domain.SubmissionAnswer{{QuestionID: "nope", OptionID: "nope"}, answer("w1", 5)},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Outcome.Score != 5 || result.Completed {
		t.Fatalf("expected partial score 5 and incomplete result, got %+v", result)
	}
}

func TestSubmitDuringRepairIsRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, energyQuiz())

	release, err := h.locker.Lock(ctx, "energy")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer release()

	_, err = h.service.Submit(ctx, "u1", domain.Submission{QuizID: "energy", Answers: []domain.SubmissionAnswer{answer("e1", 5)}})
	if !errors.Is(err, domain.ErrRepairInProgress) {
		t.Fatalf("expected repair in progress, got %v", err)
	}
}

func TestCorruptQuizIsScoredDegradedThenRepaired(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, corruptEnergyQuiz())
	answers := []domain.SubmissionAnswer{answer("e1", 15), answer("e2", 15), answer("e3", 15), answer("e4", 15)}

	result, err := h.service.Submit(ctx, "u1", domain.Submission{QuizID: "energy", Answers: answers})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.Outcome.Degraded || result.Outcome.Classification != "ES" {
		t.Fatalf("expected degraded ES result, got %+v", result.Outcome)
	}

	inspection, err := h.service.InspectQuiz(ctx, "energy")
	if err != nil || inspection.IsValid {
		t.Fatalf("expected corrupt quiz to fail inspection, got %+v (%v)", inspection, err)
	}

	report, err := h.service.RepairQuiz(ctx, "energy")
	if err != nil {
		t.Fatalf("repair: %v", err)
	}
	if !report.Success || len(report.IssuesFound) != 4 {
		t.Fatalf("expected four relinked questions, got %+v", report)
	}
	stored, _ := h.quizzes.LoadQuiz(ctx, "energy")
	if stored.Questions[0].DimensionID != "d-ei" || stored.Questions[3].DimensionID != "d-sn" {
		t.Fatalf("expected repaired links persisted, got %+v", stored.Questions)
	}

	again, err := h.service.RepairQuiz(ctx, "energy")
	if err != nil || !again.Success || again.Changed() {
		t.Fatalf("expected second repair to be a no-op, got %+v (%v)", again, err)
	}
	if inspection, _ := h.service.InspectQuiz(ctx, "energy"); !inspection.IsValid {
		t.Fatalf("expected repaired quiz to inspect clean, got %+v", inspection)
	}

	result, err = h.service.Submit(ctx, "u2", domain.Submission{QuizID: "energy", Answers: answers})
	if err != nil || result.Outcome.Degraded || result.Outcome.Classification != "ES" {
		t.Fatalf("expected clean ES result after repair, got %+v (%v)", result.Outcome, err)
	}
}

func TestSubmitSeesRepairThatFinishedBeforeItsLock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStaticQuizStore(map[string]domain.Quiz{"energy": corruptEnergyQuiz()})
	locks := &repairingLocker{QuizLocker: memory.NewQuizLocker()}
	service := app.NewQuizService(app.Repositories{
		Quizzes: memory.NewQuizRepository(store, time.Minute),
		Results: memory.NewResultStore(),
		Stats:   memory.NewStatsStore(),
		Locks:   locks,
	}, zap.NewNop())

	// warm the cache with the corrupt definition
	if _, err := service.InspectQuiz(ctx, "energy"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	locks.beforeRLock = func() {
		if _, err := service.RepairQuiz(ctx, "energy"); err != nil {
			t.Errorf("repair: %v", err)
		}
	}

	answers := []domain.SubmissionAnswer{answer("e1", 15), answer("e2", 15), answer("e3", 15), answer("e4", 15)}
	result, err := service.Submit(ctx, "u1", domain.Submission{QuizID: "energy", Answers: answers})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	stored, _ := store.LoadQuiz(ctx, "energy")
	if stored.Questions[0].DimensionID != "d-ei" {
		t.Fatalf("expected repair to persist links, got %q", stored.Questions[0].DimensionID)
	}
	if result.Outcome.Degraded || result.Outcome.Classification != "ES" {
		t.Fatalf("expected the repaired definition to be scored, got %+v", result.Outcome)
	}
}

// repairingLocker runs beforeRLock once, ahead of the first shared lock.
type repairingLocker struct {
	*memory.QuizLocker
	beforeRLock func()
	once        sync.Once
}

func (l *repairingLocker) RLock(ctx context.Context, quizID string) (func(), error) {
	if l.beforeRLock != nil {
		l.once.Do(l.beforeRLock)
	}
	return l.QuizLocker.RLock(ctx, quizID)
}

func TestSaveDefinition(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	invalid := wellbeingQuiz()
	invalid.ID = ""
	invalid.Title = ""
	_, res, err := h.service.SaveDefinition(ctx, invalid)
	if !errors.Is(err, domain.ErrValidationFailed) || res.Valid {
		t.Fatalf("expected validation failure, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Codes()[0] != engine.CodeMissingTitle {
		t.Fatalf("expected missing-title issue, got %v", err)
	}

	draft := wellbeingQuiz()
	draft.ID = ""
	draft.Questions[0].DimensionID = "stale"
	saved, res, err := h.service.SaveDefinition(ctx, draft)
	if err != nil || !res.Valid {
		t.Fatalf("save failed: %v %+v", err, res)
	}
	if saved.ID != "r-1" {
		t.Fatalf("expected generated id, got %q", saved.ID)
	}
	stored, err := h.quizzes.LoadQuiz(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load saved quiz: %v", err)
	}
	if stored.Questions[0].DimensionID != "" {
		t.Fatalf("expected simple quiz to be normalized before storage")
	}
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, wellbeingQuiz())

	submissions := []domain.Submission{
		{QuizID: "wellbeing", TimeSpent: 4, Answers: []domain.SubmissionAnswer{answer("w1", 15), answer("w2", 10), answer("w3", 5)}},
		{QuizID: "wellbeing", TimeSpent: 20, Answers: []domain.SubmissionAnswer{answer("w1", 5)}},
	}
	for _, sub := range submissions {
		if _, err := h.service.Submit(ctx, "u1", sub); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	analytics, err := h.service.Analytics(ctx, "wellbeing")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if analytics.TotalAttempts != 2 || analytics.CompletedAttempts != 1 || analytics.CompletionRate != 0.5 {
		t.Fatalf("unexpected attempt counts: %+v", analytics)
	}
	if analytics.AverageScore != 30 || analytics.AverageTimeSpent != 4 {
		t.Fatalf("expected averages over completed results only, got %+v", analytics)
	}

	if _, err := h.service.Analytics(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubscribeStatsReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, wellbeingQuiz())

	ch, cancel, err := h.service.SubscribeStats(ctx, "wellbeing")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	initial := <-ch
	if initial.TotalAttempts != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	_, err = h.service.Submit(ctx, "u1", domain.Submission{
		QuizID: "wellbeing", TimeSpent: 3,
		Answers: []domain.SubmissionAnswer{answer("w1", 15), answer("w2", 15), answer("w3", 15)},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case update := <-ch:
		if update.TotalAttempts != 1 || update.AverageScore != 45 {
			t.Fatalf("expected updated stats, got %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("no stats update received")
	}

	if _, _, err := h.service.SubscribeStats(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentSubmissionsKeepStatsConsistent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, wellbeingQuiz())

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.Submit(ctx, "u", domain.Submission{
				QuizID: "wellbeing", TimeSpent: 10,
				Answers: []domain.SubmissionAnswer{answer("w1", 10), answer("w2", 10), answer("w3", 10)},
			})
			if err != nil {
				t.Errorf("submit: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, err := h.service.Stats(ctx, "wellbeing")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalAttempts != 40 || stats.AverageScore != 30 || stats.AverageCompletionTime != 10 {
		t.Fatalf("expected 40 attempts at 30 points, got %+v", stats)
	}
	results, _ := h.results.ListResults(ctx, "wellbeing")
	if len(results) != 40 {
		t.Fatalf("expected 40 stored results, got %d", len(results))
	}
}
