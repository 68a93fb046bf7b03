package engine

import (
	"sort"

	"growth-quiz-service/internal/domain"
)

// Reconciliation is a heuristic question-to-dimension assignment for quizzes whose
// questions lost their dimension linkage. Questions and dimensions live in arenas
// sorted by order; assignment maps a question index to a dimension index.
// It never replaces an authoritative DimensionID on its own.
type Reconciliation struct {
	Questions  []domain.Question
	Dimensions []domain.Dimension
	BucketSize int
	assignment []int
}

// HasCorruptLinks reports the corruption signature: a complex quiz with questions
// where none resolves to one of its dimensions.
func HasCorruptLinks(quiz domain.Quiz) bool {
	if !quiz.IsComplex() || len(quiz.Questions) == 0 {
		return false
	}
	index := dimensionsByID(quiz.Dimensions)
	for _, q := range quiz.Questions {
		if _, ok := index[q.DimensionID]; ok {
			return false
		}
	}
	return true
}

// Reconcile partitions the questions, sorted by order, into ceil(questions/dimensions)
// sized contiguous buckets, one per dimension in dimension order.
func Reconcile(quiz domain.Quiz) Reconciliation {
	questions := append([]domain.Question(nil), quiz.Questions...)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	dims := append([]domain.Dimension(nil), quiz.Dimensions...)
	sort.SliceStable(dims, func(i, j int) bool { return dims[i].Order < dims[j].Order })

	r := Reconciliation{Questions: questions, Dimensions: dims}
	if len(dims) == 0 {
		return r
	}
	r.BucketSize = (len(questions) + len(dims) - 1) / len(dims)
	r.assignment = make([]int, len(questions))
	for i := range questions {
		d := 0
		if r.BucketSize > 0 {
			d = i / r.BucketSize
		}
		if d >= len(dims) {
			d = len(dims) - 1
		}
		r.assignment[i] = d
	}
	return r
}

// DimensionAt returns the dimension assigned to the question at arena index i.
func (r Reconciliation) DimensionAt(i int) (domain.Dimension, bool) {
	if i < 0 || i >= len(r.assignment) {
		return domain.Dimension{}, false
	}
	return r.Dimensions[r.assignment[i]], true
}

// DimensionFor returns the dimension assigned to a question id.
func (r Reconciliation) DimensionFor(questionID string) (domain.Dimension, bool) {
	for i, q := range r.Questions {
		if q.ID == questionID {
			return r.DimensionAt(i)
		}
	}
	return domain.Dimension{}, false
}

// QuestionsOf returns the arena indexes assigned to dimension index d.
func (r Reconciliation) QuestionsOf(d int) []int {
	var out []int
	for i, assigned := range r.assignment {
		if assigned == d {
			out = append(out, i)
		}
	}
	return out
}

func dimensionsByID(dims []domain.Dimension) map[string]domain.Dimension {
	index := make(map[string]domain.Dimension, len(dims))
	for _, d := range dims {
		if d.ID != "" {
			index[d.ID] = d
		}
	}
	return index
}
