package engine

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"growth-quiz-service/internal/domain"
)

// Level is a bucket of the percentage ladder used when no range criterion matches.
type Level string

const (
	LevelExcellent        Level = "EXCELLENT"
	LevelGood             Level = "GOOD"
	LevelFair             Level = "FAIR"
	LevelNeedsImprovement Level = "NEEDS_IMPROVEMENT"
)

// Levels lists the ladder from best to worst.
var Levels = []Level{LevelExcellent, LevelGood, LevelFair, LevelNeedsImprovement}

var levelFeedback = map[Level]string{
	LevelExcellent:        "Excellent result. You are well ahead in this area.",
	LevelGood:             "Good result. A few areas still have room to grow.",
	LevelFair:             "Fair result. Focused practice will make a clear difference.",
	LevelNeedsImprovement: "This area needs attention. Start with small, consistent steps.",
}

// UnknownClassification is assigned when no complex rule matches.
const UnknownClassification = "Unknown"

// LadderLevel maps a percentage onto the fallback ladder.
func LadderLevel(percentage int) Level {
	switch {
	case percentage >= 90:
		return LevelExcellent
	case percentage >= 70:
		return LevelGood
	case percentage >= 50:
		return LevelFair
	default:
		return LevelNeedsImprovement
	}
}

// Classification is the label assigned to a score sheet.
type Classification struct {
	Label     string
	Feedback  string
	Color     string
	Criterion string
	Kind      domain.MatchKind
	domain.Guidance
}

// Classify maps a score sheet to a classification. Criteria are scanned in
// definition order and the first match wins: authoring order is priority order.
func Classify(quiz domain.Quiz, sheet ScoreSheet) Classification {
	if quiz.IsComplex() {
		return classifyComplex(quiz, sheet.DimensionScores)
	}
	return classifySimple(quiz, sheet)
}

func classifySimple(quiz domain.Quiz, sheet ScoreSheet) Classification {
	for _, rc := range quiz.RangeCriteria {
		if !rc.Contains(sheet.Score) {
			continue
		}
		return Classification{
			Label:     rc.Label,
			Feedback:  feedbackFor(rc.Description, rc.Label),
			Color:     rc.Color,
			Criterion: rc.Label,
			Kind:      domain.MatchCriterion,
			Guidance:  rc.Guidance,
		}
	}
	level := LadderLevel(sheet.Percentage)
	return Classification{
		Label:    string(level),
		Feedback: levelFeedback[level],
		Kind:     domain.MatchFallback,
	}
}

func classifyComplex(quiz domain.Quiz, scores map[string]int) Classification {
	for _, rc := range quiz.RuleCriteria {
		if !Matches(rc.Logic, quiz.Dimensions, scores) {
			continue
		}
		return Classification{
			Label:     rc.Label,
			Feedback:  feedbackFor(rc.Description, rc.Label),
			Color:     rc.Color,
			Criterion: rc.Name,
			Kind:      domain.MatchCriterion,
			Guidance:  rc.Guidance,
		}
	}
	if quiz.ClassificationScheme == domain.SchemeLetterCode && len(quiz.Dimensions) > 0 {
		return Classification{
			Label:    letterCode(quiz.Dimensions, scores),
			Feedback: "No profile matched exactly. This result is derived letter by letter from each dimension.",
			Kind:     domain.MatchPartial,
		}
	}
	return Classification{
		Label:    UnknownClassification,
		Feedback: "We could not determine a profile from these answers.",
		Kind:     domain.MatchUnknown,
		Guidance: domain.Guidance{
			Recommendations: []string{
				"Answer every question to get a complete profile.",
				"Retake the quiz when you can answer without rushing.",
			},
		},
	}
}

// Matches evaluates one scoring logic against a dimension score vector.
func Matches(logic domain.ScoringLogic, dims []domain.Dimension, scores map[string]int) bool {
	switch l := logic.(type) {
	case domain.ThresholdLogic:
		if len(l.Conditions) == 0 {
			return false
		}
		byName := dimensionsByShortName(dims)
		for _, cond := range l.Conditions {
			d, ok := byName[cond.Dimension]
			if !ok {
				return false
			}
			score, ok := scores[cond.Dimension]
			if !ok || sideOf(score, d) != cond.Side {
				return false
			}
		}
		return true
	case domain.HighestLogic:
		score, ok := scores[l.Dimension]
		return ok && score >= l.MinScore && score <= l.MaxScore
	case domain.TopNLogic:
		if l.N <= 0 || l.N != len(l.Dimensions) {
			return false
		}
		top := RankDimensions(dims, scores)
		if len(top) < l.N {
			return false
		}
		for i := 0; i < l.N; i++ {
			if top[i] != l.Dimensions[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// RankDimensions orders short names by score descending. Ties keep dimension order.
func RankDimensions(dims []domain.Dimension, scores map[string]int) []string {
	ordered := append([]domain.Dimension(nil), dims...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i].ShortName] > scores[ordered[j].ShortName]
	})
	names := make([]string, len(ordered))
	for i, d := range ordered {
		names[i] = d.ShortName
	}
	return names
}

func sideOf(score int, d domain.Dimension) domain.Side {
	if float64(score) > d.EffectiveThreshold() {
		return domain.SideHigh
	}
	return domain.SideLow
}

// letterCode concatenates one letter per dimension in dimension order.
func letterCode(dims []domain.Dimension, scores map[string]int) string {
	ordered := append([]domain.Dimension(nil), dims...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	var b strings.Builder
	for _, d := range ordered {
		b.WriteRune(dimensionLetter(d, sideOf(scores[d.ShortName], d)))
	}
	return b.String()
}

// dimensionLetter reads a paired short name such as "E/I" as high=E, low=I and
// otherwise uses the first letter of the side label.
func dimensionLetter(d domain.Dimension, side domain.Side) rune {
	var label string
	if parts := strings.SplitN(d.ShortName, "/", 2); len(parts) == 2 {
		label = parts[1]
		if side == domain.SideHigh {
			label = parts[0]
		}
	} else {
		label = d.LowLabel
		if side == domain.SideHigh {
			label = d.HighLabel
		}
	}
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(label))
	if r == utf8.RuneError {
		return '?'
	}
	return unicode.ToUpper(r)
}

func dimensionsByShortName(dims []domain.Dimension) map[string]domain.Dimension {
	index := make(map[string]domain.Dimension, len(dims))
	for _, d := range dims {
		index[d.ShortName] = d
	}
	return index
}

func feedbackFor(description, label string) string {
	if strings.TrimSpace(description) != "" {
		return description
	}
	return "Your result: " + label
}

// Evaluate scores and classifies a submission in one pass.
func Evaluate(quiz domain.Quiz, answers []domain.SubmissionAnswer) (domain.ScoringOutcome, ScoreSheet) {
	sheet := Score(quiz, answers)
	class := Classify(quiz, sheet)
	outcome := domain.ScoringOutcome{
		QuizType:        quiz.Type,
		Score:           sheet.Score,
		MaxScore:        sheet.MaxScore,
		Percentage:      sheet.Percentage,
		DimensionScores: sheet.DimensionScores,
		Classification:  class.Label,
		Feedback:        class.Feedback,
		Color:           class.Color,
		MatchKind:       class.Kind,
		Degraded:        sheet.Degraded,
		Guidance:        class.Guidance,
	}
	return outcome, sheet
}
