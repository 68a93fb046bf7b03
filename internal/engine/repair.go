package engine

import (
	"fmt"

	"growth-quiz-service/internal/domain"
)

// RepairReport is the outcome of a persistent integrity repair.
type RepairReport struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	IssuesFound []string `json:"issuesFound"`
}

// Changed reports whether the repaired definition differs from the input.
func (r RepairReport) Changed() bool {
	return len(r.IssuesFound) > 0
}

// InspectionReport describes the integrity of a persisted quiz without changing it.
type InspectionReport struct {
	IsValid  bool     `json:"isValid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// Repair assigns unlinked questions to dimensions with the order-bucket heuristic
// and derives missing dimension score bounds from the assigned questions.
// Running it on its own output finds no further issues.
func Repair(quiz domain.Quiz) (domain.Quiz, RepairReport) {
	report := RepairReport{IssuesFound: []string{}}
	if !quiz.IsComplex() {
		report.Success = true
		report.Message = "simple quiz has no dimension links to repair"
		return quiz, report
	}
	if len(quiz.Dimensions) == 0 {
		report.Message = "quiz has no dimensions to assign questions to"
		if len(quiz.Questions) > 0 {
			report.IssuesFound = append(report.IssuesFound, fmt.Sprintf("%d questions cannot be linked without dimensions", len(quiz.Questions)))
		}
		return quiz, report
	}

	repaired := quiz
	repaired.Dimensions = append([]domain.Dimension(nil), quiz.Dimensions...)
	repaired.Questions = append([]domain.Question(nil), quiz.Questions...)

	for i := range repaired.Dimensions {
		d := &repaired.Dimensions[i]
		if d.ID == "" {
			d.ID = "dim-" + d.ShortName
			report.IssuesFound = append(report.IssuesFound, fmt.Sprintf("dimension %q had no id; assigned %q", d.ShortName, d.ID))
		}
	}

	linked := dimensionsByID(repaired.Dimensions)
	recon := Reconcile(repaired)
	position := make(map[string]int, len(repaired.Questions))
	for i, q := range repaired.Questions {
		position[q.ID] = i
	}
	for i, q := range recon.Questions {
		if _, ok := linked[q.DimensionID]; ok {
			continue
		}
		dim, ok := recon.DimensionAt(i)
		if !ok {
			continue
		}
		if q.DimensionID == "" {
			report.IssuesFound = append(report.IssuesFound, fmt.Sprintf("question %q had no dimension; assigned to %q", q.ID, dim.ShortName))
		} else {
			report.IssuesFound = append(report.IssuesFound, fmt.Sprintf("question %q referenced unknown dimension %q; assigned to %q", q.ID, q.DimensionID, dim.ShortName))
		}
		repaired.Questions[position[q.ID]].DimensionID = dim.ID
	}

	for i := range repaired.Dimensions {
		d := &repaired.Dimensions[i]
		if d.MinScore != nil && d.MaxScore != nil {
			continue
		}
		lo, hi := dimensionRange(d.ID, repaired.Questions)
		if d.MinScore == nil {
			d.MinScore = &lo
		}
		if d.MaxScore == nil {
			d.MaxScore = &hi
		}
		report.IssuesFound = append(report.IssuesFound, fmt.Sprintf("dimension %q had no score range; derived %d-%d", d.ShortName, *d.MinScore, *d.MaxScore))
	}

	report.Success = true
	if report.Changed() {
		report.Message = fmt.Sprintf("repaired %d issues", len(report.IssuesFound))
	} else {
		report.Message = "no issues found"
	}
	return repaired, report
}

func dimensionRange(dimensionID string, questions []domain.Question) (int, int) {
	lo, hi := 0, 0
	for _, q := range questions {
		if q.DimensionID != dimensionID {
			continue
		}
		lo += q.MinOptionValue()
		hi += q.MaxOptionValue()
	}
	return lo, hi
}

// Inspect reports integrity problems of a persisted quiz. Missing thresholds are
// warnings because scoring proceeds with a derived threshold.
func Inspect(quiz domain.Quiz) InspectionReport {
	report := InspectionReport{Issues: []string{}, Warnings: []string{}}
	if len(quiz.Questions) == 0 {
		report.Issues = append(report.Issues, "quiz has no questions")
	}
	for _, q := range quiz.Questions {
		if len(q.Options) < 2 {
			report.Issues = append(report.Issues, fmt.Sprintf("question %q has %d options", q.ID, len(q.Options)))
		}
	}

	if quiz.IsComplex() {
		inspectComplex(quiz, &report)
	}

	report.IsValid = len(report.Issues) == 0
	return report
}

func inspectComplex(quiz domain.Quiz, report *InspectionReport) {
	if len(quiz.Dimensions) == 0 {
		report.Issues = append(report.Issues, "complex quiz has no dimensions")
	}
	if HasCorruptLinks(quiz) {
		report.Issues = append(report.Issues, "no question is linked to a dimension; scoring will use order buckets until repaired")
	}

	dims := dimensionsByID(quiz.Dimensions)
	for _, q := range quiz.Questions {
		switch _, ok := dims[q.DimensionID]; {
		case q.DimensionID == "":
			report.Issues = append(report.Issues, fmt.Sprintf("question %q has no dimension", q.ID))
		case !ok:
			report.Issues = append(report.Issues, fmt.Sprintf("question %q references unknown dimension %q", q.ID, q.DimensionID))
		}
	}
	for _, d := range quiz.Dimensions {
		if d.MinScore == nil || d.MaxScore == nil {
			report.Issues = append(report.Issues, fmt.Sprintf("dimension %q has no score range", d.ShortName))
		}
		if d.Threshold == nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("dimension %q has no threshold; using %.1f", d.ShortName, d.EffectiveThreshold()))
		}
	}
	if len(quiz.RuleCriteria) == 0 {
		report.Warnings = append(report.Warnings, "quiz has no rule criteria; every result will be a fallback classification")
	}
}
