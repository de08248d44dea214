package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is a learner's response to one question. Its variant must match the
// question's variant.
type Answer interface {
	AnswerType() QuestionType
}

type (
	TrueFalseAnswer bool
	ChoiceAnswer    string
	SelectAnswer    []string
	MatchAnswer     []Pair
)

func (TrueFalseAnswer) AnswerType() QuestionType { return TypeTrueFalse }
func (ChoiceAnswer) AnswerType() QuestionType    { return TypeSingleChoice }
func (SelectAnswer) AnswerType() QuestionType    { return TypeMultiSelect }
func (MatchAnswer) AnswerType() QuestionType     { return TypeMatching }

// Result is the verdict for a single question. Submitted is nil when the
// learner never answered.
type Result struct {
	QuestionID string `json:"questionId"`
	Submitted  Answer `json:"submittedAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Report aggregates the results of a graded session.
type Report struct {
	Results    []Result `json:"results"`
	Score      int      `json:"score"`
	Total      int      `json:"total"`
	Percentage int      `json:"percentage"`
}

// Passed reports a perfect score, which is what unlocks lesson and course completion.
func (r Report) Passed() bool {
	return r.Total > 0 && r.Score == r.Total
}

// DecodeAnswer parses raw JSON into the answer variant of q.
func DecodeAnswer(q Question, raw json.RawMessage) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("question %s: empty answer: %w", q.QuestionID(), ErrAnswerTypeMismatch)
	}

	var (
		answer Answer
		err    error
	)
	switch q.(type) {
	case TrueFalse:
		var v bool
		err = json.Unmarshal(raw, &v)
		answer = TrueFalseAnswer(v)
	case SingleChoice:
		var v string
		err = json.Unmarshal(raw, &v)
		answer = ChoiceAnswer(v)
	case MultiSelect:
		var v []string
		err = json.Unmarshal(raw, &v)
		answer = SelectAnswer(v)
	case Matching:
		var v []Pair
		err = json.Unmarshal(raw, &v)
		answer = MatchAnswer(v)
	default:
		return nil, fmt.Errorf("question %s: %w", q.QuestionID(), ErrUnsupportedQuestionType)
	}
	if err != nil {
		return nil, fmt.Errorf("question %s: %v: %w", q.QuestionID(), err, ErrAnswerTypeMismatch)
	}
	return answer, nil
}
