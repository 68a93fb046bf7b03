package engine

import (
	"math"
	"sort"

	"growth-quiz-service/internal/domain"
)

// QuizAnalytics summarizes the historical results of one quiz.
type QuizAnalytics struct {
	QuizID                 string                `json:"quizId"`
	QuizType               domain.QuizType       `json:"quizType"`
	TotalAttempts          int                   `json:"totalAttempts"`
	CompletedAttempts      int                   `json:"completedAttempts"`
	CompletionRate         float64               `json:"completionRate"`
	AverageScore           float64               `json:"averageScore"`
	AverageTimeSpent       float64               `json:"averageTimeSpent"`
	LevelDistribution      map[Level]int         `json:"levelDistribution,omitempty"`
	DimensionDistribution  []DimensionAverage    `json:"dimensionDistribution,omitempty"`
	PopularClassifications []ClassificationCount `json:"popularClassifications"`
	TimeDistribution       TimeDistribution      `json:"timeDistribution"`
	DropoffPoints          []DropoffPoint        `json:"dropoffPoints"`
}

// DimensionAverage is the mean of the non-zero recorded scores of a dimension.
type DimensionAverage struct {
	ShortName string  `json:"shortName"`
	Name      string  `json:"name"`
	Average   float64 `json:"average"`
	MinScore  *int    `json:"minScore,omitempty"`
	MaxScore  *int    `json:"maxScore,omitempty"`
}

// ClassificationCount is how often a classification was assigned.
type ClassificationCount struct {
	Classification string  `json:"classification"`
	Count          int     `json:"count"`
	Percentage     float64 `json:"percentage"`
}

// TimeDistribution buckets completion times: fast < 5, normal 5-15, slow > 15 minutes.
type TimeDistribution struct {
	Fast   int `json:"fast"`
	Normal int `json:"normal"`
	Slow   int `json:"slow"`
}

// DropoffPoint estimates the share of participants leaving at a question position.
type DropoffPoint struct {
	QuestionIndex int     `json:"questionIndex"`
	Rate          float64 `json:"rate"`
}

// dropoffEstimates are fixed rates at 25/50/75% of the quiz. There is no
// per-question abandonment telemetry to derive them from yet.
var dropoffEstimates = []struct {
	fraction float64
	rate     float64
}{
	{0.25, 0.05},
	{0.50, 0.10},
	{0.75, 0.15},
}

// Aggregate computes analytics over a quiz's results. Averages and distributions
// cover completed results only.
func Aggregate(quiz domain.Quiz, results []domain.Result) QuizAnalytics {
	a := QuizAnalytics{
		QuizID:                 quiz.ID,
		QuizType:               quiz.Type,
		TotalAttempts:          len(results),
		PopularClassifications: []ClassificationCount{},
	}

	completed := make([]domain.Result, 0, len(results))
	for _, r := range results {
		if r.Completed {
			completed = append(completed, r)
		}
	}
	a.CompletedAttempts = len(completed)
	if a.TotalAttempts > 0 {
		a.CompletionRate = round2(float64(a.CompletedAttempts) / float64(a.TotalAttempts))
	}

	var scoreSum, timeSum int
	for _, r := range completed {
		scoreSum += r.Outcome.Score
		timeSum += r.TimeSpent
		switch {
		case r.TimeSpent < 5:
			a.TimeDistribution.Fast++
		case r.TimeSpent <= 15:
			a.TimeDistribution.Normal++
		default:
			a.TimeDistribution.Slow++
		}
	}
	if n := len(completed); n > 0 {
		a.AverageTimeSpent = round2(float64(timeSum) / float64(n))
		if !quiz.IsComplex() {
			a.AverageScore = round2(float64(scoreSum) / float64(n))
		}
	}

	if quiz.IsComplex() {
		a.DimensionDistribution = dimensionAverages(quiz.Dimensions, completed)
	} else {
		a.LevelDistribution = levelDistribution(completed)
	}
	a.PopularClassifications = popularClassifications(completed)
	a.DropoffPoints = dropoffPoints(len(quiz.Questions))
	return a
}

func levelDistribution(results []domain.Result) map[Level]int {
	dist := make(map[Level]int, len(Levels))
	for _, l := range Levels {
		dist[l] = 0
	}
	for _, r := range results {
		dist[LadderLevel(r.Outcome.Percentage)]++
	}
	return dist
}

// dimensionAverages skips zero scores so dimensions a participant never
// exercised do not drag the mean down.
func dimensionAverages(dims []domain.Dimension, results []domain.Result) []DimensionAverage {
	ordered := append([]domain.Dimension(nil), dims...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	out := make([]DimensionAverage, 0, len(ordered))
	for _, d := range ordered {
		var sum, n int
		for _, r := range results {
			if score := r.Outcome.DimensionScores[d.ShortName]; score != 0 {
				sum += score
				n++
			}
		}
		avg := DimensionAverage{
			ShortName: d.ShortName,
			Name:      d.Name,
			MinScore:  d.MinScore,
			MaxScore:  d.MaxScore,
		}
		if n > 0 {
			avg.Average = round2(float64(sum) / float64(n))
		}
		out = append(out, avg)
	}
	return out
}

func popularClassifications(results []domain.Result) []ClassificationCount {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Outcome.Classification]++
	}
	out := make([]ClassificationCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, ClassificationCount{
			Classification: label,
			Count:          n,
			Percentage:     round2(float64(n) / float64(len(results)) * 100),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Classification < out[j].Classification
	})
	return out
}

func dropoffPoints(questionCount int) []DropoffPoint {
	if questionCount == 0 {
		return []DropoffPoint{}
	}
	out := make([]DropoffPoint, 0, len(dropoffEstimates))
	for _, e := range dropoffEstimates {
		out = append(out, DropoffPoint{
			QuestionIndex: int(math.Ceil(float64(questionCount) * e.fraction)),
			Rate:          e.rate,
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
