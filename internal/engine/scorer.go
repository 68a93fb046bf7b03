package engine

import (
	"math"

	"growth-quiz-service/internal/domain"
)

// ScoreSheet is the scorer's output, consumed by Classify.
type ScoreSheet struct {
	Type domain.QuizType

	// Simple quizzes.
	Score      int
	RawScore   int
	MaxScore   int
	Percentage int

	// Complex quizzes, keyed by dimension short name.
	DimensionScores map[string]int

	// Answered counts distinct questions that received a resolvable answer.
	Answered int
	// Degraded is set when dimension links were reconstructed heuristically.
	Degraded bool
}

// Score computes the raw score of a submission. Unknown question or option ids are
// ignored and duplicate answers for one question all accumulate.
func Score(quiz domain.Quiz, answers []domain.SubmissionAnswer) ScoreSheet {
	if quiz.IsComplex() {
		return scoreComplex(quiz, answers)
	}
	return scoreSimple(quiz, answers)
}

func scoreSimple(quiz domain.Quiz, answers []domain.SubmissionAnswer) ScoreSheet {
	sheet := ScoreSheet{Type: domain.QuizTypeSimple}
	questions := questionsByID(quiz.Questions)
	answered := make(map[string]struct{})

	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		opt, ok := findOption(q, a.OptionID)
		if !ok {
			continue
		}
		sheet.RawScore += opt.Value
		answered[q.ID] = struct{}{}
	}
	for _, q := range quiz.Questions {
		sheet.MaxScore += q.MaxOptionValue()
	}

	sheet.Score = sheet.RawScore
	if sheet.MaxScore > 0 && sheet.Score > sheet.MaxScore {
		sheet.Score = sheet.MaxScore
	}
	sheet.Percentage = percentage(sheet.Score, sheet.MaxScore)
	sheet.Answered = len(answered)
	return sheet
}

func scoreComplex(quiz domain.Quiz, answers []domain.SubmissionAnswer) ScoreSheet {
	sheet := ScoreSheet{
		Type:            domain.QuizTypeComplex,
		DimensionScores: make(map[string]int, len(quiz.Dimensions)),
	}
	for _, d := range quiz.Dimensions {
		sheet.DimensionScores[d.ShortName] = 0
	}

	resolve := linkedDimensionResolver(quiz)
	if HasCorruptLinks(quiz) && len(quiz.Dimensions) > 0 {
		recon := Reconcile(quiz)
		resolve = recon.DimensionFor
		sheet.Degraded = true
	}

	questions := questionsByID(quiz.Questions)
	answered := make(map[string]struct{})
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		dim, ok := resolve(q.ID)
		if !ok {
			continue
		}
		opt, ok := findOption(q, a.OptionID)
		if !ok {
			continue
		}
		sheet.DimensionScores[dim.ShortName] += opt.Value
		answered[q.ID] = struct{}{}
	}
	sheet.Answered = len(answered)
	return sheet
}

func linkedDimensionResolver(quiz domain.Quiz) func(string) (domain.Dimension, bool) {
	dims := dimensionsByID(quiz.Dimensions)
	questions := questionsByID(quiz.Questions)
	return func(questionID string) (domain.Dimension, bool) {
		q, ok := questions[questionID]
		if !ok || q.DimensionID == "" {
			return domain.Dimension{}, false
		}
		d, ok := dims[q.DimensionID]
		return d, ok
	}
}

func percentage(score, maxScore int) int {
	if maxScore == 0 {
		return 0
	}
	p := int(math.Round(float64(score) / float64(maxScore) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func questionsByID(questions []domain.Question) map[string]domain.Question {
	index := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		index[q.ID] = q
	}
	return index
}

func findOption(q domain.Question, optionID string) (domain.Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return domain.Option{}, false
}
