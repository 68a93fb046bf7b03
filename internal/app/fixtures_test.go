package app_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"growth-quiz-service/internal/app"
	"growth-quiz-service/internal/domain"
	"growth-quiz-service/internal/infra/memory"
)

var fixedNow = time.Date(2024, 11, 22, 9, 30, 0, 0, time.UTC)

type harness struct {
	service *app.QuizService
	quizzes *memory.StaticQuizStore
	results *memory.ResultStore
	locker  *memory.QuizLocker
}

func newHarness(t *testing.T, quizzes ...domain.Quiz) harness {
	t.Helper()
	seed := make(map[string]domain.Quiz, len(quizzes))
	for _, q := range quizzes {
		seed[q.ID] = q
	}
	h := harness{
		quizzes: memory.NewStaticQuizStore(seed),
		results: memory.NewResultStore(),
		locker:  memory.NewQuizLocker(),
	}
	var seq atomic.Int64
	h.service = app.NewQuizService(app.Repositories{
		Quizzes: memory.NewQuizRepository(h.quizzes, time.Minute),
		Results: h.results,
		Stats:   memory.NewStatsStore(),
		Locks:   h.locker,
	}, zap.NewNop(),
		app.WithClock(func() time.Time { return fixedNow }),
		app.WithIDGenerator(func() string { return fmt.Sprintf("r-%d", seq.Add(1)) }),
	)
	return h
}

func intPtr(v int) *int { return &v }

func scaleOptions(qid string) []domain.Option {
	values := []int{0, 5, 10, 15}
	opts := make([]domain.Option, len(values))
	for i, v := range values {
		opts[i] = domain.Option{ID: fmt.Sprintf("%s-%d", qid, v), Text: fmt.Sprint(v), Value: v, Order: i}
	}
	return opts
}

func answer(qid string, value int) domain.SubmissionAnswer {
	return domain.SubmissionAnswer{QuestionID: qid, OptionID: fmt.Sprintf("%s-%d", qid, value)}
}

// wellbeingQuiz is simple with max score 45.
func wellbeingQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "wellbeing",
		Title:       "Wellbeing check",
		Description: "How balanced is your week?",
		Category:    "wellbeing",
		Type:        domain.QuizTypeSimple,
		IsPublic:    true,
		IsActive:    true,
		Questions: []domain.Question{
			{ID: "w1", Text: "Sleep", Order: 1, Options: scaleOptions("w1")},
			{ID: "w2", Text: "Exercise", Order: 2, Options: scaleOptions("w2")},
			{ID: "w3", Text: "Rest", Order: 3, Options: scaleOptions("w3")},
		},
		RangeCriteria: []domain.RangeCriterion{
			{MinScore: 0, MaxScore: 10, Label: "Burnout risk"},
			{MinScore: 11, MaxScore: 30, Label: "Getting there", Color: "#dbab09"},
		},
	}
}

// energyQuiz is complex with two dimensions and two questions each.
func energyQuiz() domain.Quiz {
	low, high := domain.SideLow, domain.SideHigh
	return domain.Quiz{
		ID:                   "energy",
		Title:                "Energy profile",
		Description:          "Where do you draw energy from?",
		Category:             "self-discovery",
		Type:                 domain.QuizTypeComplex,
		ClassificationScheme: domain.SchemeLetterCode,
		IsPublic:             true,
		IsActive:             true,
		Dimensions: []domain.Dimension{
			{ID: "d-ei", Name: "Extraversion / Introversion", ShortName: "E/I", Order: 1, MinScore: intPtr(0), MaxScore: intPtr(30), Threshold: intPtr(15)},
			{ID: "d-sn", Name: "Sensing / Intuition", ShortName: "S/N", Order: 2, MinScore: intPtr(0), MaxScore: intPtr(30), Threshold: intPtr(15)},
		},
		Questions: []domain.Question{
			{ID: "e1", Text: "Parties recharge me", Order: 1, DimensionID: "d-ei", Options: scaleOptions("e1")},
			{ID: "e2", Text: "I think out loud", Order: 2, DimensionID: "d-ei", Options: scaleOptions("e2")},
			{ID: "e3", Text: "I trust facts", Order: 3, DimensionID: "d-sn", Options: scaleOptions("e3")},
			{ID: "e4", Text: "Details matter", Order: 4, DimensionID: "d-sn", Options: scaleOptions("e4")},
		},
		RuleCriteria: []domain.RuleCriterion{
			{Name: "es", Label: "ES", Logic: domain.ThresholdLogic{Conditions: []domain.DimensionCondition{
				{Dimension: "E/I", Side: high}, {Dimension: "S/N", Side: high},
			}}},
			{Name: "in", Label: "IN", Logic: domain.ThresholdLogic{Conditions: []domain.DimensionCondition{
				{Dimension: "E/I", Side: low}, {Dimension: "S/N", Side: low},
			}}},
		},
	}
}

// corruptEnergyQuiz has lost every question-to-dimension link.
func corruptEnergyQuiz() domain.Quiz {
	quiz := energyQuiz()
	for i := range quiz.Questions {
		quiz.Questions[i].DimensionID = ""
	}
	return quiz
}
