package quiz

import (
	"math"

	"growth-hub-quiz/internal/domain"
)

// Evaluate reports whether answer is correct for q. A missing answer, an
// answer of the wrong variant or a malformed question all grade incorrect.
func Evaluate(q domain.Question, answer domain.Answer) bool {
	if answer == nil {
		return false
	}
	switch question := q.(type) {
	case domain.TrueFalse:
		submitted, ok := answer.(domain.TrueFalseAnswer)
		return ok && bool(submitted) == question.CorrectAnswer
	case domain.SingleChoice:
		submitted, ok := answer.(domain.ChoiceAnswer)
		key := question.CorrectLabel()
		return ok && key != "" && string(submitted) == key
	case domain.MultiSelect:
		submitted, ok := answer.(domain.SelectAnswer)
		return ok && sameLabels(submitted, question.CorrectLabels())
	case domain.Matching:
		submitted, ok := answer.(domain.MatchAnswer)
		return ok && samePairsInOrder(submitted, question.Pairs)
	default:
		return false
	}
}

// Grade evaluates every question in order against answers. With no
// questions it returns an empty 0% report and ErrDegenerateInput.
func Grade(questions []domain.Question, answers map[string]domain.Answer) (domain.Report, error) {
	report := domain.Report{
		Results: make([]domain.Result, 0, len(questions)),
		Total:   len(questions),
	}
	if len(questions) == 0 {
		return report, domain.ErrDegenerateInput
	}

	for _, q := range questions {
		submitted := answers[q.QuestionID()]
		correct := Evaluate(q, submitted)
		if correct {
			report.Score++
		}
		report.Results = append(report.Results, domain.Result{
			QuestionID: q.QuestionID(),
			Submitted:  submitted,
			IsCorrect:  correct,
		})
	}
	report.Percentage = int(math.Round(100 * float64(report.Score) / float64(report.Total)))
	return report, nil
}

// sameLabels compares as sets: order is irrelevant and duplicates collapse.
func sameLabels(submitted, key []string) bool {
	want := make(map[string]struct{}, len(key))
	for _, label := range key {
		want[label] = struct{}{}
	}
	got := make(map[string]struct{}, len(submitted))
	for _, label := range submitted {
		if _, ok := want[label]; !ok {
			return false
		}
		got[label] = struct{}{}
	}
	return len(got) == len(want)
}

// samePairsInOrder compares positionally. A correct matching submitted in a
// different order than the stored key does not count.
func samePairsInOrder(submitted, key []domain.Pair) bool {
	if len(submitted) != len(key) {
		return false
	}
	for i := range key {
		if submitted[i] != key[i] {
			return false
		}
	}
	return true
}
