package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// choiceDocument is one labeled entry (a..d) of a stored choice question.
type choiceDocument struct {
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
}

// questionDocument is the stored question record shared by every variant.
type questionDocument struct {
	ID          documentID      `json:"question_id"`
	Description string          `json:"description"`
	Type        QuestionType    `json:"question_type"`
	Answer      *bool           `json:"answer,omitempty"`
	A           *choiceDocument `json:"a,omitempty"`
	B           *choiceDocument `json:"b,omitempty"`
	C           *choiceDocument `json:"c,omitempty"`
	D           *choiceDocument `json:"d,omitempty"`
	AnswerKey   []Pair          `json:"answer_key,omitempty"`
}

// documentID accepts both numeric and string IDs.
type documentID string

func (id *documentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = documentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question_id: %w", err)
	}
	*id = documentID(n.String())
	return nil
}

// MarshalJSON writes numeric IDs back as numbers, matching the stored records.
func (id documentID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// QuestionDocument wraps a Question for JSON encoding in the stored document format.
type QuestionDocument struct {
	Question Question
}

func (d *QuestionDocument) UnmarshalJSON(data []byte) error {
	q, err := DecodeQuestion(data)
	if err != nil {
		return err
	}
	d.Question = q
	return nil
}

func (d QuestionDocument) MarshalJSON() ([]byte, error) {
	return EncodeQuestion(d.Question)
}

// DecodeQuestion parses a stored question document into its variant.
func DecodeQuestion(data []byte) (Question, error) {
	var doc questionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}
	id := string(doc.ID)

	switch doc.Type {
	case TypeTrueFalse:
		q := TrueFalse{ID: id, Prompt: doc.Description}
		if doc.Answer != nil {
			q.CorrectAnswer = *doc.Answer
		}
		return q, nil
	case TypeSingleChoice:
		return SingleChoice{ID: id, Prompt: doc.Description, Options: doc.options()}, nil
	case TypeMultiSelect:
		return MultiSelect{ID: id, Prompt: doc.Description, Options: doc.options()}, nil
	case TypeMatching:
		return Matching{ID: id, Prompt: doc.Description, Pairs: doc.AnswerKey}, nil
	default:
		return nil, fmt.Errorf("question %s type %q: %w", id, doc.Type, ErrUnsupportedQuestionType)
	}
}

// EncodeQuestion writes q in the stored document format.
func EncodeQuestion(q Question) ([]byte, error) {
	doc := questionDocument{
		ID:          documentID(q.QuestionID()),
		Description: q.QuestionPrompt(),
		Type:        q.Type(),
	}
	switch v := q.(type) {
	case TrueFalse:
		answer := v.CorrectAnswer
		doc.Answer = &answer
	case SingleChoice:
		doc.setOptions(v.Options)
	case MultiSelect:
		doc.setOptions(v.Options)
	case Matching:
		doc.AnswerKey = v.Pairs
	default:
		return nil, fmt.Errorf("question %s: %w", q.QuestionID(), ErrUnsupportedQuestionType)
	}
	return json.Marshal(doc)
}

// options returns the present entries in label order; missing entries are skipped.
func (d questionDocument) options() []Option {
	entries := []*choiceDocument{d.A, d.B, d.C, d.D}
	options := make([]Option, 0, len(entries))
	for i, entry := range entries {
		if entry == nil {
			continue
		}
		options = append(options, Option{
			Label:     OptionLabels[i],
			Text:      entry.Answer,
			IsCorrect: entry.IsCorrect,
		})
	}
	return options
}

func (d *questionDocument) setOptions(options []Option) {
	for _, opt := range options {
		entry := &choiceDocument{Answer: opt.Text, IsCorrect: opt.IsCorrect}
		switch opt.Label {
		case "a":
			d.A = entry
		case "b":
			d.B = entry
		case "c":
			d.C = entry
		case "d":
			d.D = entry
		}
	}
}

type quizDocument struct {
	Ref          string             `json:"ref"`
	TotalLessons int                `json:"totalLessons"`
	Questions    []QuestionDocument `json:"questions"`
}

func (q Quiz) MarshalJSON() ([]byte, error) {
	doc := quizDocument{
		Ref:          q.Ref.String(),
		TotalLessons: q.TotalLessons,
		Questions:    make([]QuestionDocument, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		doc.Questions = append(doc.Questions, QuestionDocument{Question: question})
	}
	return json.Marshal(doc)
}

func (q *Quiz) UnmarshalJSON(data []byte) error {
	var doc quizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode quiz: %w", err)
	}
	ref, err := ParseQuizRef(doc.Ref)
	if err != nil {
		return err
	}
	q.Ref = ref
	q.TotalLessons = doc.TotalLessons
	q.Questions = make([]Question, 0, len(doc.Questions))
	for _, d := range doc.Questions {
		q.Questions = append(q.Questions, d.Question)
	}
	return nil
}
