package cli

import (
	"fmt"

	"growth-quiz-service/internal/domain"
)

// sampleQuizzes provides a demo catalogue for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"wellbeing":   wellbeingSample(),
		"personality": personalitySample(),
	}
}

func likert(questionID string) []domain.Option {
	labels := []string{"Never", "Rarely", "Sometimes", "Often", "Always"}
	opts := make([]domain.Option, len(labels))
	for i, label := range labels {
		opts[i] = domain.Option{ID: fmt.Sprintf("%s-o%d", questionID, i+1), Text: label, Value: i, Order: i + 1}
	}
	return opts
}

func wellbeingSample() domain.Quiz {
	prompts := []string{
		"I sleep at least seven hours",
		"I take breaks during work",
		"I exercise during the week",
		"I switch off after work",
		"I feel rested in the morning",
	}
	questions := make([]domain.Question, len(prompts))
	for i, p := range prompts {
		id := fmt.Sprintf("w%d", i+1)
		questions[i] = domain.Question{ID: id, Text: p, Order: i + 1, Options: likert(id)}
	}
	return domain.Quiz{
		ID:          "wellbeing",
		Title:       "Weekly wellbeing check",
		Description: "Five questions about rest and recovery",
		Category:    "wellbeing",
		Type:        domain.QuizTypeSimple,
		IsPublic:    true,
		IsActive:    true,
		Questions:   questions,
		RangeCriteria: []domain.RangeCriterion{
			{MinScore: 0, MaxScore: 7, Label: "Running on empty", Color: "#d73a49",
				Description: "Your routine leaves little room for recovery.",
				Guidance: domain.Guidance{
					SupportNeeded:   []string{"Talk to your manager about workload"},
					Recommendations: []string{"Block one evening a week with no screens"},
				}},
			{MinScore: 8, MaxScore: 14, Label: "Finding balance", Color: "#dbab09",
				Guidance: domain.Guidance{AreasOfImprovement: []string{"Consistent sleep schedule"}}},
			{MinScore: 15, MaxScore: 20, Label: "Well rested", Color: "#28a745"},
		},
	}
}

func personalitySample() domain.Quiz {
	bound := func(v int) *int { return &v }
	dims := []domain.Dimension{
		{ID: "ei", Name: "Extraversion / Introversion", ShortName: "E/I", Order: 1, LowLabel: "Introversion", HighLabel: "Extraversion"},
		{ID: "sn", Name: "Sensing / Intuition", ShortName: "S/N", Order: 2, LowLabel: "Intuition", HighLabel: "Sensing"},
		{ID: "tf", Name: "Thinking / Feeling", ShortName: "T/F", Order: 3, LowLabel: "Feeling", HighLabel: "Thinking"},
		{ID: "jp", Name: "Judging / Perceiving", ShortName: "J/P", Order: 4, LowLabel: "Perceiving", HighLabel: "Judging"},
	}
	for i := range dims {
		dims[i].MinScore, dims[i].MaxScore, dims[i].Threshold = bound(0), bound(8), bound(4)
	}
	prompts := []string{
		"Meeting new people energizes me", "I think out loud",
		"I trust concrete facts", "I prefer proven methods",
		"I decide with logic first", "Fairness beats harmony",
		"I plan ahead", "I finish tasks before starting new ones",
	}
	questions := make([]domain.Question, len(prompts))
	for i, p := range prompts {
		id := fmt.Sprintf("p%d", i+1)
		questions[i] = domain.Question{ID: id, Text: p, Order: i + 1, DimensionID: dims[i/2].ID, Options: likert(id)}
	}
	side := func(ei, sn, tf, jp domain.Side) domain.ThresholdLogic {
		return domain.ThresholdLogic{Conditions: []domain.DimensionCondition{
			{Dimension: "E/I", Side: ei}, {Dimension: "S/N", Side: sn},
			{Dimension: "T/F", Side: tf}, {Dimension: "J/P", Side: jp},
		}}
	}
	low, high := domain.SideLow, domain.SideHigh
	return domain.Quiz{
		ID:                   "personality",
		Title:                "Working style profile",
		Description:          "Four dimensions of how you work with others",
		Category:             "self-discovery",
		Type:                 domain.QuizTypeComplex,
		ClassificationScheme: domain.SchemeLetterCode,
		IsPublic:             true,
		IsActive:             true,
		Dimensions:           dims,
		Questions:            questions,
		RuleCriteria: []domain.RuleCriterion{
			{Name: "estj", Label: "ESTJ", Description: "Organised and decisive.", Logic: side(high, high, high, high),
				Guidance: domain.Guidance{Recommendations: []string{"Delegate the details you would rather control"}}},
			{Name: "infp", Label: "INFP", Description: "Idealistic and reflective.", Logic: side(low, low, low, low),
				Guidance: domain.Guidance{References: domain.References{Webinars: []string{"finding-focus"}}}},
			{Name: "analyst", Label: "Analyst", Description: "Logic leads your decisions.",
				Logic: domain.HighestLogic{Dimension: "T/F", MinScore: 7, MaxScore: 8}},
			{Name: "planner", Label: "Planner", Description: "Structure and logic go together for you.",
				Logic: domain.TopNLogic{N: 2, Dimensions: []string{"J/P", "T/F"}}},
		},
	}
}
