package quiz

import (
	"fmt"

	"growth-hub-quiz/internal/domain"
)

// State is the lifecycle phase of a Session.
type State string

const (
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// Session is one run-through of a fixed question sequence. It is not safe for
// concurrent use; callers owning a session shared across goroutines must
// serialise access.
type Session struct {
	questions []domain.Question
	index     map[string]int

	answers  map[string]domain.Answer
	position int
	state    State
	report   domain.Report
}

// NewSession builds a session over questions. Question IDs must be unique.
func NewSession(questions []domain.Question) (*Session, error) {
	index := make(map[string]int, len(questions))
	for i, q := range questions {
		if q == nil {
			return nil, fmt.Errorf("question %d is nil: %w", i, domain.ErrInvalidArgument)
		}
		if _, dup := index[q.QuestionID()]; dup {
			return nil, fmt.Errorf("duplicate question %s: %w", q.QuestionID(), domain.ErrInvalidArgument)
		}
		index[q.QuestionID()] = i
	}

	fixed := make([]domain.Question, len(questions))
	copy(fixed, questions)

	s := &Session{questions: fixed, index: index}
	s.Reset()
	return s, nil
}

// RecordAnswer stores answer for questionID, replacing any earlier answer.
func (s *Session) RecordAnswer(questionID string, answer domain.Answer) error {
	if s.state == StateComplete {
		return domain.ErrSessionComplete
	}
	q, err := s.question(questionID)
	if err != nil {
		return err
	}
	if answer == nil || answer.AnswerType() != q.Type() {
		return fmt.Errorf("question %s: %w", questionID, domain.ErrAnswerTypeMismatch)
	}
	s.answers[questionID] = answer
	return nil
}

// Match tries to pair left with right on a matching question. The pair is
// accepted only when it belongs to the answer key and neither side has been
// matched yet; accepted pairs accumulate in submission order as the
// question's answer.
func (s *Session) Match(questionID, left, right string) (bool, error) {
	if s.state == StateComplete {
		return false, domain.ErrSessionComplete
	}
	q, err := s.question(questionID)
	if err != nil {
		return false, err
	}
	matching, ok := q.(domain.Matching)
	if !ok {
		return false, fmt.Errorf("question %s is %s: %w", questionID, q.Type(), domain.ErrAnswerTypeMismatch)
	}

	pair := domain.Pair{Left: left, Right: right}
	if !matching.HasPair(pair) {
		return false, nil
	}
	prior, _ := s.answers[questionID].(domain.MatchAnswer)
	for _, p := range prior {
		if p.Left == left || p.Right == right {
			return false, nil
		}
	}

	next := make(domain.MatchAnswer, 0, len(prior)+1)
	next = append(next, prior...)
	next = append(next, pair)
	s.answers[questionID] = next
	return true, nil
}

// IsCurrentAnswered reports whether the question at the current position has
// a recorded answer. Callers use it to gate Advance.
func (s *Session) IsCurrentAnswered() bool {
	q, ok := s.Current()
	if !ok {
		return false
	}
	_, answered := s.answers[q.QuestionID()]
	return answered
}

// Advance moves to the next question, or grades the session when called on
// the last one. It does not check IsCurrentAnswered. Grading an empty
// session completes it and returns ErrDegenerateInput with a 0% report.
func (s *Session) Advance() (State, error) {
	if s.state == StateComplete {
		return s.state, domain.ErrSessionComplete
	}
	if s.position < len(s.questions)-1 {
		s.position++
		return s.state, nil
	}

	report, err := Grade(s.questions, s.answers)
	s.report = report
	s.state = StateComplete
	return s.state, err
}

// Reset returns the session to its initial state.
func (s *Session) Reset() {
	s.answers = make(map[string]domain.Answer, len(s.questions))
	s.position = 0
	s.state = StateInProgress
	s.report = domain.Report{}
}

// Current returns the question at the current position.
func (s *Session) Current() (domain.Question, bool) {
	if s.position >= len(s.questions) {
		return nil, false
	}
	return s.questions[s.position], true
}

// Position is the zero-based index of the current question.
func (s *Session) Position() int { return s.position }

// Len is the number of questions in the session.
func (s *Session) Len() int { return len(s.questions) }

// State is InProgress until the last Advance grades the session.
func (s *Session) State() State { return s.state }

// IsLast reports whether the current question is the final one, i.e. whether
// the next Advance grades the session.
func (s *Session) IsLast() bool {
	return s.position >= len(s.questions)-1
}

// Question returns the session question with the given ID.
func (s *Session) Question(questionID string) (domain.Question, error) {
	return s.question(questionID)
}

// Answer returns the answer recorded for questionID, if any.
func (s *Session) Answer(questionID string) (domain.Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Results returns a copy of the graded results, nil until complete.
func (s *Session) Results() []domain.Result {
	if s.state != StateComplete {
		return nil
	}
	out := make([]domain.Result, len(s.report.Results))
	copy(out, s.report.Results)
	return out
}

// Report returns the aggregate report once the session is complete.
func (s *Session) Report() (domain.Report, bool) {
	if s.state != StateComplete {
		return domain.Report{}, false
	}
	report := s.report
	report.Results = s.Results()
	return report, true
}

func (s *Session) question(questionID string) (domain.Question, error) {
	i, ok := s.index[questionID]
	if !ok {
		return nil, fmt.Errorf("question %s not in session: %w", questionID, domain.ErrInvalidArgument)
	}
	return s.questions[i], nil
}
