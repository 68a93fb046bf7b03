package engine

import (
	"fmt"

	"growth-quiz-service/internal/domain"
)

func intPtr(v int) *int { return &v }

// scaleOptions returns options worth 0, 5, 10 and 15 points with ids "<qid>-0".."<qid>-15".
func scaleOptions(qid string) []domain.Option {
	values := []int{0, 5, 10, 15}
	opts := make([]domain.Option, len(values))
	for i, v := range values {
		opts[i] = domain.Option{ID: fmt.Sprintf("%s-%d", qid, v), Text: fmt.Sprintf("%d", v), Value: v, Order: i}
	}
	return opts
}

func answer(qid string, value int) domain.SubmissionAnswer {
	return domain.SubmissionAnswer{QuestionID: qid, OptionID: fmt.Sprintf("%s-%d", qid, value)}
}

func personalityDimensions() []domain.Dimension {
	return []domain.Dimension{
		{ID: "d-ei", Name: "Extraversion / Introversion", ShortName: "E/I", Order: 1, MinScore: intPtr(0), MaxScore: intPtr(30), Threshold: intPtr(15), LowLabel: "Introversion", HighLabel: "Extraversion"},
		{ID: "d-sn", Name: "Sensing / Intuition", ShortName: "S/N", Order: 2, MinScore: intPtr(0), MaxScore: intPtr(30), Threshold: intPtr(20), LowLabel: "Intuition", HighLabel: "Sensing"},
		{ID: "d-tf", Name: "Thinking / Feeling", ShortName: "T/F", Order: 3, MinScore: intPtr(0), MaxScore: intPtr(30), Threshold: intPtr(5), LowLabel: "Feeling", HighLabel: "Thinking"},
		{ID: "d-jp", Name: "Judging / Perceiving", ShortName: "J/P", Order: 4, MinScore: intPtr(0), MaxScore: intPtr(30), Threshold: intPtr(5), LowLabel: "Perceiving", HighLabel: "Judging"},
	}
}

func threshold(ei, sn, tf, jp domain.Side) domain.ThresholdLogic {
	return domain.ThresholdLogic{Conditions: []domain.DimensionCondition{
		{Dimension: "E/I", Side: ei},
		{Dimension: "S/N", Side: sn},
		{Dimension: "T/F", Side: tf},
		{Dimension: "J/P", Side: jp},
	}}
}

// personalityQuiz has two questions per dimension, q1..q8 in dimension order.
func personalityQuiz() domain.Quiz {
	dims := personalityDimensions()
	questions := make([]domain.Question, 0, 8)
	for i := 0; i < 8; i++ {
		qid := fmt.Sprintf("q%d", i+1)
		questions = append(questions, domain.Question{
			ID:          qid,
			Text:        "Statement " + qid,
			Order:       i + 1,
			DimensionID: dims[i/2].ID,
			Options:     scaleOptions(qid),
		})
	}
	low, high := domain.SideLow, domain.SideHigh
	return domain.Quiz{
		ID:                   "personality",
		Title:                "Personality profile",
		Description:          "Four-letter personality instrument",
		Category:             "self-discovery",
		Type:                 domain.QuizTypeComplex,
		ClassificationScheme: domain.SchemeLetterCode,
		IsPublic:             true,
		IsActive:             true,
		Dimensions:           dims,
		Questions:            questions,
		RuleCriteria: []domain.RuleCriterion{
			{Name: "estj", Label: "ESTJ", Logic: threshold(high, high, high, high)},
			{Name: "istj", Label: "ISTJ", Color: "#1f6feb", Logic: threshold(low, high, high, high),
				Guidance: domain.Guidance{Recommendations: []string{"Plan deep-work blocks"}}},
			{Name: "sensing-heavy", Label: "Sensing heavy", Logic: domain.HighestLogic{Dimension: "S/N", MinScore: 20, MaxScore: 30}},
			{Name: "infp", Label: "INFP", Logic: threshold(low, low, low, low)},
		},
	}
}

// istjAnswers yield E/I=10, S/N=25, T/F=10, J/P=10.
func istjAnswers() []domain.SubmissionAnswer {
	return []domain.SubmissionAnswer{
		answer("q1", 5), answer("q2", 5),
		answer("q3", 15), answer("q4", 10),
		answer("q5", 10), answer("q6", 0),
		answer("q7", 5), answer("q8", 5),
	}
}

// wellbeingQuiz is a simple quiz with max score 45 (three questions of 0-15).
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
			{MinScore: 0, MaxScore: 10, Label: "Burnout risk", Color: "#d73a49", Description: "Time to slow down.",
				Guidance: domain.Guidance{SupportNeeded: []string{"Talk to someone you trust"}}},
			{MinScore: 11, MaxScore: 30, Label: "Getting there", Color: "#dbab09"},
		},
	}
}
