package domain

// QuestionType is the discriminator stored in a question document.
type QuestionType string

const (
	TypeTrueFalse    QuestionType = "TF"
	TypeSingleChoice QuestionType = "MC"
	TypeMultiSelect  QuestionType = "MS"
	TypeMatching     QuestionType = "MATCH"
)

// OptionLabels are the fixed labels of choice questions, in display order.
var OptionLabels = []string{"a", "b", "c", "d"}

// Question is one of TrueFalse, SingleChoice, MultiSelect or Matching.
type Question interface {
	QuestionID() string
	QuestionPrompt() string
	Type() QuestionType
	isQuestion()
}

// Option is a labeled entry of a choice question.
type Option struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Pair is one left/right association of a matching question.
type Pair struct {
	Left  string `json:"field_1"`
	Right string `json:"field_2"`
}

type TrueFalse struct {
	ID            string
	Prompt        string
	CorrectAnswer bool
}

// SingleChoice has exactly one option flagged correct when well formed.
type SingleChoice struct {
	ID      string
	Prompt  string
	Options []Option
}

// MultiSelect may flag any subset of its options as correct.
type MultiSelect struct {
	ID      string
	Prompt  string
	Options []Option
}

// Matching stores its answer key as an ordered list of pairs.
type Matching struct {
	ID     string
	Prompt string
	Pairs  []Pair
}

func (q TrueFalse) QuestionID() string        { return q.ID }
func (q TrueFalse) QuestionPrompt() string    { return q.Prompt }
func (TrueFalse) Type() QuestionType          { return TypeTrueFalse }
func (TrueFalse) isQuestion()                 {}
func (q SingleChoice) QuestionID() string     { return q.ID }
func (q SingleChoice) QuestionPrompt() string { return q.Prompt }
func (SingleChoice) Type() QuestionType       { return TypeSingleChoice }
func (SingleChoice) isQuestion()              {}
func (q MultiSelect) QuestionID() string      { return q.ID }
func (q MultiSelect) QuestionPrompt() string  { return q.Prompt }
func (MultiSelect) Type() QuestionType        { return TypeMultiSelect }
func (MultiSelect) isQuestion()               {}
func (q Matching) QuestionID() string         { return q.ID }
func (q Matching) QuestionPrompt() string     { return q.Prompt }
func (Matching) Type() QuestionType           { return TypeMatching }
func (Matching) isQuestion()                  {}

// CorrectLabel returns the first option flagged correct, or "" when none is.
func (q SingleChoice) CorrectLabel() string {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.Label
		}
	}
	return ""
}

// CorrectLabels returns the labels of every option flagged correct.
func (q MultiSelect) CorrectLabels() []string {
	labels := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsCorrect {
			labels = append(labels, opt.Label)
		}
	}
	return labels
}

// HasPair reports whether p is one of the key pairs.
func (q Matching) HasPair(p Pair) bool {
	for _, key := range q.Pairs {
		if key == p {
			return true
		}
	}
	return false
}

// Quiz is an ordered question set resolved from a QuizRef.
type Quiz struct {
	Ref       QuizRef
	Questions []Question
	// TotalLessons is the lesson count of the quiz's course, used to detect
	// the final lesson on completion.
	TotalLessons int
}
