package engine

import (
	"testing"

	"growth-quiz-service/internal/domain"
)

func TestLadderLevel(t *testing.T) {
	tests := map[int]Level{
		100: LevelExcellent,
		95:  LevelExcellent,
		90:  LevelExcellent,
		89:  LevelGood,
		75:  LevelGood,
		55:  LevelFair,
		50:  LevelFair,
		30:  LevelNeedsImprovement,
		0:   LevelNeedsImprovement,
	}
	for pct, want := range tests {
		if got := LadderLevel(pct); got != want {
			t.Fatalf("percentage %d: expected %s, got %s", pct, want, got)
		}
	}
}

func TestClassifySimpleRangeFirstMatchWins(t *testing.T) {
	quiz := wellbeingQuiz()
	quiz.RangeCriteria = append(quiz.RangeCriteria, domain.RangeCriterion{MinScore: 0, MaxScore: 45, Label: "Catch-all"})

	class := Classify(quiz, ScoreSheet{Type: domain.QuizTypeSimple, Score: 5, MaxScore: 45, Percentage: 11})
	if class.Label != "Burnout risk" || class.Kind != domain.MatchCriterion {
		t.Fatalf("expected first band, got %+v", class)
	}
	if class.Feedback != "Time to slow down." || class.Color != "#d73a49" {
		t.Fatalf("expected band feedback and color, got %+v", class)
	}
	if len(class.SupportNeeded) != 1 {
		t.Fatalf("expected guidance to pass through, got %+v", class.Guidance)
	}
}

func TestClassifySimpleFallbackLadder(t *testing.T) {
	quiz := wellbeingQuiz()
	quiz.RangeCriteria = nil

	tests := []struct {
		percentage int
		want       Level
	}{
		{95, LevelExcellent},
		{75, LevelGood},
		{55, LevelFair},
		{30, LevelNeedsImprovement},
	}
	for _, tc := range tests {
		class := Classify(quiz, ScoreSheet{Type: domain.QuizTypeSimple, Score: 999, MaxScore: 45, Percentage: tc.percentage})
		if class.Label != string(tc.want) || class.Kind != domain.MatchFallback {
			t.Fatalf("percentage %d: expected %s fallback, got %+v", tc.percentage, tc.want, class)
		}
		if len(class.Recommendations) != 0 {
			t.Fatalf("fallback should carry no recommendations")
		}
	}
}

func TestClassifyComplexThresholdScenario(t *testing.T) {
	quiz := personalityQuiz()
	sheet := ScoreSheet{Type: domain.QuizTypeComplex, DimensionScores: map[string]int{"E/I": 10, "S/N": 25, "T/F": 10, "J/P": 10}}

	class := Classify(quiz, sheet)
	if class.Label != "ISTJ" || class.Criterion != "istj" {
		t.Fatalf("expected ISTJ, got %+v", class)
	}
	if class.Color != "#1f6feb" || len(class.Recommendations) != 1 {
		t.Fatalf("expected criterion guidance, got %+v", class)
	}

	for i := 0; i < 10; i++ {
		if again := Classify(quiz, sheet); again.Label != class.Label {
			t.Fatalf("classification not deterministic: %s vs %s", again.Label, class.Label)
		}
	}
}

func TestClassifyComplexThresholdBoundary(t *testing.T) {
	quiz := personalityQuiz()
	// score equal to the threshold is on the low side
	sheet := ScoreSheet{DimensionScores: map[string]int{"E/I": 15, "S/N": 21, "T/F": 6, "J/P": 6}}
	if class := Classify(quiz, sheet); class.Label != "ISTJ" {
		t.Fatalf("expected ISTJ at the E/I boundary, got %s", class.Label)
	}
	sheet.DimensionScores["E/I"] = 16
	if class := Classify(quiz, sheet); class.Label != "ESTJ" {
		t.Fatalf("expected ESTJ above the E/I threshold, got %s", class.Label)
	}
}

func TestClassifyComplexHighestAndTopN(t *testing.T) {
	quiz := personalityQuiz()
	quiz.RuleCriteria = []domain.RuleCriterion{
		{Name: "top2", Label: "Thinker-Judger", Logic: domain.TopNLogic{N: 2, Dimensions: []string{"T/F", "J/P"}}},
		{Name: "sensing", Label: "Sensing heavy", Logic: domain.HighestLogic{Dimension: "S/N", MinScore: 20, MaxScore: 30}},
	}

	class := Classify(quiz, ScoreSheet{DimensionScores: map[string]int{"E/I": 1, "S/N": 2, "T/F": 30, "J/P": 20}})
	if class.Label != "Thinker-Judger" {
		t.Fatalf("expected top-N match, got %s", class.Label)
	}

	// order matters: J/P above T/F no longer matches
	class = Classify(quiz, ScoreSheet{DimensionScores: map[string]int{"E/I": 1, "S/N": 25, "T/F": 20, "J/P": 30}})
	if class.Label != "Sensing heavy" {
		t.Fatalf("expected highest-range match, got %s", class.Label)
	}
}

func TestRankDimensionsTiesKeepDimensionOrder(t *testing.T) {
	got := RankDimensions(personalityDimensions(), map[string]int{"E/I": 5, "S/N": 10, "T/F": 10, "J/P": 5})
	want := []string{"S/N", "T/F", "E/I", "J/P"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestClassifyComplexPartialLetterCode(t *testing.T) {
	quiz := personalityQuiz()
	quiz.RuleCriteria = quiz.RuleCriteria[:1] // only ESTJ

	class := Classify(quiz, ScoreSheet{DimensionScores: map[string]int{"E/I": 20, "S/N": 0, "T/F": 0, "J/P": 30}})
	if class.Kind != domain.MatchPartial {
		t.Fatalf("expected partial classification, got %+v", class)
	}
	if class.Label != "ENFJ" {
		t.Fatalf("expected ENFJ, got %s", class.Label)
	}
}

func TestClassifyComplexPartialUsesLabelsWithoutPairedShortNames(t *testing.T) {
	quiz := personalityQuiz()
	quiz.RuleCriteria = nil
	names := []string{"energy", "info", "decisions", "structure"}
	for i := range quiz.Dimensions {
		quiz.Dimensions[i].ShortName = names[i]
	}
	class := Classify(quiz, ScoreSheet{DimensionScores: map[string]int{"energy": 0, "info": 30, "decisions": 0, "structure": 30}})
	if class.Label != "ISFJ" {
		t.Fatalf("expected ISFJ, got %s", class.Label)
	}
}

func TestClassifyComplexUnknown(t *testing.T) {
	quiz := personalityQuiz()
	quiz.ClassificationScheme = ""
	quiz.RuleCriteria = quiz.RuleCriteria[:1]

	class := Classify(quiz, ScoreSheet{DimensionScores: map[string]int{"E/I": 0, "S/N": 0, "T/F": 0, "J/P": 0}})
	if class.Label != UnknownClassification || class.Kind != domain.MatchUnknown {
		t.Fatalf("expected Unknown, got %+v", class)
	}
	if len(class.Recommendations) == 0 {
		t.Fatalf("expected generic remediation text")
	}
}

func TestMatchesMissingThresholdUsesMidpoint(t *testing.T) {
	dims := []domain.Dimension{{ID: "d", ShortName: "X", MinScore: intPtr(0), MaxScore: intPtr(20)}}
	logic := domain.ThresholdLogic{Conditions: []domain.DimensionCondition{{Dimension: "X", Side: domain.SideHigh}}}
	if Matches(logic, dims, map[string]int{"X": 10}) {
		t.Fatalf("score at the midpoint should be low")
	}
	if !Matches(logic, dims, map[string]int{"X": 11}) {
		t.Fatalf("score above the midpoint should be high")
	}
}

func TestEvaluateComplex(t *testing.T) {
	outcome, sheet := Evaluate(personalityQuiz(), istjAnswers())
	if outcome.Classification != "ISTJ" || outcome.MatchKind != domain.MatchCriterion {
		t.Fatalf("expected ISTJ outcome, got %+v", outcome)
	}
	if sheet.Answered != 8 {
		t.Fatalf("expected 8 answered questions, got %d", sheet.Answered)
	}
	if outcome.DimensionScores["S/N"] != 25 {
		t.Fatalf("expected dimension scores on outcome, got %+v", outcome.DimensionScores)
	}
}
