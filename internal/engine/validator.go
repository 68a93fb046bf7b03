package engine

import (
	"fmt"
	"strings"

	"growth-quiz-service/internal/domain"
)

// Reason codes reported by the definition validator.
const (
	CodeMissingTitle              = "missing-title"
	CodeMissingDescription        = "missing-description"
	CodeMissingCategory           = "missing-category"
	CodeInvalidQuizType           = "invalid-quiz-type"
	CodeNoQuestions               = "no-questions"
	CodeTooFewOptions             = "too-few-options"
	CodeNegativeOptionValue       = "negative-option-value"
	CodeNoDimensions              = "no-dimensions"
	CodeMissingDimensionBounds    = "missing-dimension-bounds"
	CodeDuplicateShortName        = "duplicate-short-name"
	CodeMissingDimensionReference = "missing-dimension-reference"
	CodeInvalidDimensionReference = "invalid-dimension-reference"
	CodeMissingGradingCriteria    = "missing-grading-criteria"
	CodeDimensionMismatch         = "dimension-mismatch"
	CodeInvalidScoringLogic       = "invalid-scoring-logic"

	// CodeInvalidSubmission tags payload errors on the submission path.
	CodeInvalidSubmission = "invalid-submission"

	WarnOverlappingRange = "overlapping-range"
	WarnDuplicateRule    = "duplicate-rule"
)

// ValidationResult is returned by every validator entry point. Warnings never affect Valid.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Errors   []domain.Issue `json:"errors"`
	Warnings []domain.Issue `json:"warnings,omitempty"`
}

// Err returns a *domain.ValidationError when the result is invalid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &domain.ValidationError{Issues: r.Errors}
}

type collector struct {
	errors   []domain.Issue
	warnings []domain.Issue
}

func (c *collector) fail(field, code, format string, args ...any) {
	c.errors = append(c.errors, domain.Issue{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) warn(field, code, format string, args ...any) {
	c.warnings = append(c.warnings, domain.Issue{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) result() ValidationResult {
	return ValidationResult{
		Valid:    len(c.errors) == 0,
		Errors:   c.errors,
		Warnings: c.warnings,
	}
}

// Validate checks a whole draft definition for internal consistency.
// Criteria are evaluated first-match-wins, so overlaps are reported as warnings.
func Validate(quiz domain.Quiz) ValidationResult {
	var c collector
	c.basics(quiz)
	if quiz.IsComplex() {
		c.dimensions(quiz.Dimensions)
		if len(quiz.Dimensions) == 0 {
			c.fail("dimensions", CodeNoDimensions, "complex quiz needs at least one dimension")
		}
	}
	c.questions(quiz.Type, quiz.Questions, quiz.Dimensions)
	if quiz.IsComplex() {
		c.ruleCriteria(quiz.RuleCriteria, quiz.Dimensions)
	} else {
		c.rangeCriteria(quiz.RangeCriteria)
	}
	return c.result()
}

// ValidateBasics checks only the top-level fields of a draft.
func ValidateBasics(quiz domain.Quiz) ValidationResult {
	var c collector
	c.basics(quiz)
	return c.result()
}

// ValidateDimensions checks a dimension list on its own.
func ValidateDimensions(dims []domain.Dimension) ValidationResult {
	var c collector
	if len(dims) == 0 {
		c.fail("dimensions", CodeNoDimensions, "complex quiz needs at least one dimension")
	}
	c.dimensions(dims)
	return c.result()
}

// ValidateQuestions checks a question list against an already known dimension set.
func ValidateQuestions(quizType domain.QuizType, questions []domain.Question, dims []domain.Dimension) ValidationResult {
	var c collector
	c.questions(quizType, questions, dims)
	return c.result()
}

func (c *collector) basics(quiz domain.Quiz) {
	if strings.TrimSpace(quiz.Title) == "" {
		c.fail("title", CodeMissingTitle, "title is required")
	}
	if strings.TrimSpace(quiz.Description) == "" {
		c.fail("description", CodeMissingDescription, "description is required")
	}
	if strings.TrimSpace(quiz.Category) == "" {
		c.fail("category", CodeMissingCategory, "category is required")
	}
	if quiz.Type != domain.QuizTypeSimple && quiz.Type != domain.QuizTypeComplex {
		c.fail("quizType", CodeInvalidQuizType, "quiz type %q must be SIMPLE or COMPLEX", quiz.Type)
	}
}

func (c *collector) dimensions(dims []domain.Dimension) {
	seen := make(map[string]int, len(dims))
	for i, d := range dims {
		field := fmt.Sprintf("dimensions[%d]", i)
		if d.MinScore == nil || d.MaxScore == nil || d.Threshold == nil {
			c.fail(field, CodeMissingDimensionBounds, "dimension %q needs minScore, maxScore and threshold", d.ShortName)
		}
		if prev, ok := seen[d.ShortName]; ok {
			c.fail(field, CodeDuplicateShortName, "shortName %q already used by dimensions[%d]", d.ShortName, prev)
			continue
		}
		seen[d.ShortName] = i
	}
}

func (c *collector) questions(quizType domain.QuizType, questions []domain.Question, dims []domain.Dimension) {
	if len(questions) == 0 {
		c.fail("questions", CodeNoQuestions, "at least one question is required")
	}
	ids := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		ids[d.ID] = struct{}{}
	}
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if len(q.Options) < 2 {
			c.fail(field, CodeTooFewOptions, "question %q needs at least two options", q.ID)
		}
		for _, opt := range q.Options {
			if opt.Value < 0 {
				c.fail(field, CodeNegativeOptionValue, "option %q has negative value %d", opt.ID, opt.Value)
			}
		}
		if quizType != domain.QuizTypeComplex {
			continue
		}
		if q.DimensionID == "" {
			c.fail(field, CodeMissingDimensionReference, "question %q has no dimension", q.ID)
			continue
		}
		if _, ok := ids[q.DimensionID]; !ok {
			c.fail(field, CodeInvalidDimensionReference, "question %q references dimension %q outside this quiz", q.ID, q.DimensionID)
		}
	}
}

func (c *collector) rangeCriteria(criteria []domain.RangeCriterion) {
	for i, rc := range criteria {
		field := fmt.Sprintf("rangeCriteria[%d]", i)
		if rc.MinScore > rc.MaxScore {
			c.fail(field, CodeInvalidScoringLogic, "minScore %d exceeds maxScore %d", rc.MinScore, rc.MaxScore)
			continue
		}
		for j := 0; j < i; j++ {
			prev := criteria[j]
			if rc.MinScore <= prev.MaxScore && prev.MinScore <= rc.MaxScore {
				c.warn(field, WarnOverlappingRange, "range %d-%d overlaps %q; the earlier criterion wins", rc.MinScore, rc.MaxScore, prev.Label)
				break
			}
		}
	}
}

func (c *collector) ruleCriteria(criteria []domain.RuleCriterion, dims []domain.Dimension) {
	if len(criteria) == 0 {
		c.fail("ruleCriteria", CodeMissingGradingCriteria, "complex quiz needs at least one rule criterion")
		return
	}
	known := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		known[d.ShortName] = struct{}{}
	}
	checkDim := func(field, name string) {
		if _, ok := known[name]; !ok {
			c.fail(field, CodeDimensionMismatch, "unknown dimension %q", name)
		}
	}

	seen := make(map[string]string, len(criteria))
	for i, rc := range criteria {
		field := fmt.Sprintf("ruleCriteria[%d]", i)
		switch l := rc.Logic.(type) {
		case domain.ThresholdLogic:
			if len(l.Conditions) == 0 {
				c.fail(field, CodeInvalidScoringLogic, "threshold rule %q has no dimensions", rc.Name)
			}
			for _, cond := range l.Conditions {
				checkDim(field, cond.Dimension)
				if cond.Side != domain.SideLow && cond.Side != domain.SideHigh {
					c.fail(field, CodeInvalidScoringLogic, "side %q must be low or high", cond.Side)
				}
			}
		case domain.HighestLogic:
			checkDim(field, l.Dimension)
			if l.MinScore > l.MaxScore {
				c.fail(field, CodeInvalidScoringLogic, "minScore %d exceeds maxScore %d", l.MinScore, l.MaxScore)
			}
		case domain.TopNLogic:
			for _, name := range l.Dimensions {
				checkDim(field, name)
			}
			if l.N <= 0 || l.N != len(l.Dimensions) || l.N > len(dims) {
				c.fail(field, CodeInvalidScoringLogic, "topN rule %q needs 0 < n = len(dimensions) <= %d", rc.Name, len(dims))
			}
		default:
			c.fail(field, CodeInvalidScoringLogic, "rule %q has no scoring logic", rc.Name)
			continue
		}

		key := logicKey(rc.Logic)
		if prev, ok := seen[key]; ok {
			c.warn(field, WarnDuplicateRule, "rule %q repeats the logic of %q and can never match", rc.Name, prev)
			continue
		}
		seen[key] = rc.Name
	}
}

func logicKey(logic domain.ScoringLogic) string {
	return fmt.Sprintf("%s:%v", logic.Type(), logic)
}

// Normalize drops the fields a simple quiz ignores.
func Normalize(quiz domain.Quiz) domain.Quiz {
	if quiz.IsComplex() {
		return quiz
	}
	quiz.Dimensions = nil
	quiz.RuleCriteria = nil
	quiz.ClassificationScheme = ""
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.DimensionID = ""
		questions[i] = q
	}
	quiz.Questions = questions
	return quiz
}
