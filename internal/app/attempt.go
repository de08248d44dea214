package app

import (
	"sort"
	"sync"
	"time"

	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/quiz"
)

// Attempt is one learner's run through a quiz. The engine session is not safe
// for concurrent use, so every access goes through mu.
type Attempt struct {
	ID        string
	LearnerID string
	Quiz      domain.Quiz
	StartedAt time.Time

	mu      sync.Mutex
	session *quiz.Session
}

// NewAttempt is exported for infrastructure layers that need to seed attempts.
func NewAttempt(id, learnerID string, q domain.Quiz, startedAt time.Time) (*Attempt, error) {
	session, err := quiz.NewSession(q.Questions)
	if err != nil {
		return nil, err
	}
	return &Attempt{
		ID:        id,
		LearnerID: learnerID,
		Quiz:      q,
		StartedAt: startedAt,
		session:   session,
	}, nil
}

// AttemptView is the client-facing state of an attempt. Answer keys never
// leave the service through it.
type AttemptView struct {
	AttemptID string           `json:"attemptId"`
	QuizID    string           `json:"quizId"`
	LearnerID string           `json:"learnerId"`
	State     quiz.State       `json:"state"`
	Position  int              `json:"position"`
	Total     int              `json:"total"`
	Current   *QuestionView    `json:"current,omitempty"`
	Answered  bool             `json:"answered"`
	IsLast    bool             `json:"isLast"`
	Report    *domain.Report   `json:"report,omitempty"`
	Progress  *domain.Progress `json:"progress,omitempty"`
}

// QuestionView renders a question without its answer key.
type QuestionView struct {
	ID      string              `json:"id"`
	Type    domain.QuestionType `json:"type"`
	Prompt  string              `json:"prompt"`
	Options []OptionView        `json:"options,omitempty"`
	Left    []string            `json:"left,omitempty"`
	Right   []string            `json:"right,omitempty"`
}

type OptionView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// NewQuestionView strips the answer key from q. Matching columns are sorted
// so the key order does not leak.
func NewQuestionView(q domain.Question) QuestionView {
	view := QuestionView{ID: q.QuestionID(), Type: q.Type(), Prompt: q.QuestionPrompt()}
	switch v := q.(type) {
	case domain.SingleChoice:
		view.Options = optionViews(v.Options)
	case domain.MultiSelect:
		view.Options = optionViews(v.Options)
	case domain.Matching:
		for _, p := range v.Pairs {
			view.Left = append(view.Left, p.Left)
			view.Right = append(view.Right, p.Right)
		}
		sort.Strings(view.Left)
		sort.Strings(view.Right)
	}
	return view
}

func optionViews(options []domain.Option) []OptionView {
	out := make([]OptionView, 0, len(options))
	for _, opt := range options {
		out = append(out, OptionView{Label: opt.Label, Text: opt.Text})
	}
	return out
}

func (a *Attempt) viewLocked() AttemptView {
	view := AttemptView{
		AttemptID: a.ID,
		QuizID:    a.Quiz.Ref.String(),
		LearnerID: a.LearnerID,
		State:     a.session.State(),
		Position:  a.session.Position(),
		Total:     a.session.Len(),
		Answered:  a.session.IsCurrentAnswered(),
		IsLast:    a.session.IsLast(),
	}
	if report, ok := a.session.Report(); ok {
		view.Report = &report
		return view
	}
	if q, ok := a.session.Current(); ok {
		qv := NewQuestionView(q)
		view.Current = &qv
	}
	return view
}
