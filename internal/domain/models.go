package domain

import (
	"math"
	"time"
)

// QuizType selects the scoring scheme a quiz uses for its entire lifetime.
type QuizType string

const (
	QuizTypeSimple  QuizType = "SIMPLE"
	QuizTypeComplex QuizType = "COMPLEX"
)

// SchemeLetterCode tags complex quizzes whose classification is one letter per dimension
// (e.g. a four-dimension personality instrument). It enables partial classification
// when no rule criterion matches.
const SchemeLetterCode = "LETTER_CODE"

// Quiz is a fully hydrated quiz definition.
type Quiz struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Category             string           `json:"category"`
	Type                 QuizType         `json:"quizType"`
	ClassificationScheme string           `json:"classificationScheme,omitempty"`
	IsPublic             bool             `json:"isPublic"`
	IsActive             bool             `json:"isActive"`
	Dimensions           []Dimension      `json:"dimensions,omitempty"`
	Questions            []Question       `json:"questions"`
	RangeCriteria        []RangeCriterion `json:"rangeCriteria,omitempty"`
	RuleCriteria         []RuleCriterion  `json:"ruleCriteria,omitempty"`
}

// IsComplex reports whether the quiz scores per dimension.
func (q Quiz) IsComplex() bool {
	return q.Type == QuizTypeComplex
}

// Dimension is an independent scoring axis of a complex quiz.
type Dimension struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Order     int    `json:"order"`
	MinScore  *int   `json:"minScore,omitempty"`
	MaxScore  *int   `json:"maxScore,omitempty"`
	Threshold *int   `json:"threshold,omitempty"`
	LowLabel  string `json:"lowLabel,omitempty"`
	HighLabel string `json:"highLabel,omitempty"`
}

// EffectiveThreshold returns the configured threshold, the midpoint of the
// score bounds when no threshold is set, or 0.
func (d Dimension) EffectiveThreshold() float64 {
	if d.Threshold != nil {
		return float64(*d.Threshold)
	}
	if d.MinScore != nil && d.MaxScore != nil {
		return float64(*d.MinScore+*d.MaxScore) / 2
	}
	return 0
}

// Question belongs to a quiz; DimensionID is only meaningful for complex quizzes.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Order       int      `json:"order"`
	DimensionID string   `json:"dimensionId,omitempty"`
	Options     []Option `json:"options"`
}

// MaxOptionValue returns the largest option value, or 0 without options.
func (q Question) MaxOptionValue() int {
	best := 0
	for i, opt := range q.Options {
		if i == 0 || opt.Value > best {
			best = opt.Value
		}
	}
	return best
}

// MinOptionValue returns the smallest option value, or 0 without options.
func (q Question) MinOptionValue() int {
	least := 0
	for i, opt := range q.Options {
		if i == 0 || opt.Value < least {
			least = opt.Value
		}
	}
	return least
}

// Option is a selectable answer; Value is its non-negative contribution.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value int    `json:"value"`
	Order int    `json:"order"`
}

// References are opaque cross-reference lists passed through to results.
type References struct {
	Courses  []string `json:"courses,omitempty"`
	Products []string `json:"products,omitempty"`
	Streams  []string `json:"streams,omitempty"`
	Webinars []string `json:"webinars,omitempty"`
}

// Guidance is the advice attached to an outcome band or classification.
type Guidance struct {
	Recommendations    []string   `json:"recommendations,omitempty"`
	AreasOfImprovement []string   `json:"areasOfImprovement,omitempty"`
	SupportNeeded      []string   `json:"supportNeeded,omitempty"`
	References         References `json:"references"`
}

// RangeCriterion is an inclusive band over the total score of a simple quiz.
type RangeCriterion struct {
	MinScore    int    `json:"minScore"`
	MaxScore    int    `json:"maxScore"`
	Label       string `json:"label"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
	Guidance
}

// Contains reports whether score falls inside the band.
func (c RangeCriterion) Contains(score int) bool {
	return score >= c.MinScore && score <= c.MaxScore
}

// SubmissionAnswer selects one option for one question.
type SubmissionAnswer struct {
	QuestionID string `json:"questionId" validate:"required"`
	OptionID   string `json:"optionId" validate:"required"`
}

// Submission is the payload a participant sends for a quiz.
type Submission struct {
	QuizID    string             `json:"quizId" validate:"required"`
	Answers   []SubmissionAnswer `json:"answers" validate:"required,dive"`
	TimeSpent int                `json:"timeSpent" validate:"gte=0,lte=1440"`
}

// MatchKind records how a classification was reached.
type MatchKind string

const (
	MatchCriterion MatchKind = "criterion"
	MatchFallback  MatchKind = "fallback"
	MatchPartial   MatchKind = "partial"
	MatchUnknown   MatchKind = "unknown"
)

// ScoringOutcome is computed fresh for every submission.
type ScoringOutcome struct {
	QuizType        QuizType       `json:"quizType"`
	Score           int            `json:"score"`
	MaxScore        int            `json:"maxScore"`
	Percentage      int            `json:"percentage"`
	DimensionScores map[string]int `json:"dimensionScores,omitempty"`
	Classification  string         `json:"classification"`
	Feedback        string         `json:"feedback"`
	Color           string         `json:"color,omitempty"`
	MatchKind       MatchKind      `json:"matchKind"`
	Degraded        bool           `json:"degraded"`
	Guidance
}

// Result is the immutable historical record of one submission.
type Result struct {
	ID        string         `json:"id"`
	QuizID    string         `json:"quizId"`
	UserID    string         `json:"userId"`
	Outcome   ScoringOutcome `json:"outcome"`
	TimeSpent int            `json:"timeSpent"`
	Completed bool           `json:"completed"`
	CreatedAt time.Time      `json:"createdAt"`
}

// QuizStats are the quiz-level counters maintained after each submission.
type QuizStats struct {
	QuizID                string    `json:"quizId"`
	TotalAttempts         int       `json:"totalAttempts"`
	AverageScore          float64   `json:"averageScore"`
	AverageCompletionTime float64   `json:"averageCompletionTime"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// StatsSample is one submission's contribution to QuizStats.
type StatsSample struct {
	Score     int
	TimeSpent int
}

// StatsFromSums derives QuizStats from running counters.
func StatsFromSums(quizID string, attempts int64, scoreSum, timeSum float64, updatedAt time.Time) QuizStats {
	stats := QuizStats{QuizID: quizID, TotalAttempts: int(attempts), UpdatedAt: updatedAt}
	if attempts > 0 {
		stats.AverageScore = math.Round(scoreSum/float64(attempts)*100) / 100
		stats.AverageCompletionTime = math.Round(timeSum/float64(attempts)*100) / 100
	}
	return stats
}
