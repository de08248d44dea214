package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/quiz"
)

// AttemptRepository abstracts how attempts are stored (in-memory, Redis, etc).
type AttemptRepository interface {
	Save(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, ref domain.QuizRef) (domain.Quiz, error)
}

// ProgressRecorder persists lesson/course completion and learner points.
type ProgressRecorder interface {
	RecordCompletion(ctx context.Context, completion domain.Completion) (domain.Progress, error)
}

// Leaderboard keeps the points table and fans updates out to subscribers.
type Leaderboard interface {
	Award(ctx context.Context, learnerID string, points int) (domain.Leaderboard, error)
	Snapshot(ctx context.Context) (domain.Leaderboard, error)
	Subscribe() (<-chan domain.Leaderboard, func())
}

// QuizService contains the quiz attempt use cases.
type QuizService struct {
	attempts AttemptRepository
	quizzes  QuizRepository
	progress ProgressRecorder
	board    Leaderboard
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

type Option func(*QuizService)

func WithLogger(l *zap.Logger) Option          { return func(s *QuizService) { s.logger = l } }
func WithClock(now func() time.Time) Option    { return func(s *QuizService) { s.now = now } }
func WithIDGenerator(gen func() string) Option { return func(s *QuizService) { s.newID = gen } }

func NewQuizService(attempts AttemptRepository, quizzes QuizRepository, progress ProgressRecorder, board Leaderboard, opts ...Option) *QuizService {
	s := &QuizService{
		attempts: attempts,
		quizzes:  quizzes,
		progress: progress,
		board:    board,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start loads the quiz and opens a new attempt for the learner.
func (s *QuizService) Start(ctx context.Context, quizID, learnerID string) (AttemptView, error) {
	if learnerID == "" {
		return AttemptView{}, fmt.Errorf("learner id required: %w", domain.ErrInvalidArgument)
	}
	q, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return AttemptView{}, err
	}

	attempt, err := NewAttempt(s.newID(), learnerID, q, s.now())
	if err != nil {
		return AttemptView{}, fmt.Errorf("quiz %s: %w", quizID, err)
	}
	s.attempts.Save(attempt)
	s.logger.Info("attempt started",
		zap.String("attempt", attempt.ID),
		zap.String("quiz", quizID),
		zap.String("learner", learnerID),
		zap.Int("questions", len(q.Questions)),
	)

	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.viewLocked(), nil
}

// View returns the current state of an attempt.
func (s *QuizService) View(_ context.Context, attemptID string) (AttemptView, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return AttemptView{}, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.viewLocked(), nil
}

// Question returns a question of the attempt, used to decode raw answers.
func (s *QuizService) Question(_ context.Context, attemptID, questionID string) (domain.Question, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return nil, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	return attempt.session.Question(questionID)
}

// Answer records the learner's answer for a question of the attempt.
func (s *QuizService) Answer(_ context.Context, attemptID, questionID string, answer domain.Answer) (AttemptView, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return AttemptView{}, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	if err := attempt.session.RecordAnswer(questionID, answer); err != nil {
		return AttemptView{}, err
	}
	return attempt.viewLocked(), nil
}

// Match tries one left/right pairing on a matching question.
func (s *QuizService) Match(_ context.Context, attemptID, questionID, left, right string) (bool, AttemptView, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return false, AttemptView{}, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	accepted, err := attempt.session.Match(questionID, left, right)
	if err != nil {
		return false, AttemptView{}, err
	}
	return accepted, attempt.viewLocked(), nil
}

// Next advances the attempt. On the last question it grades the attempt and,
// for a perfect score, records the completion and updates the leaderboard.
// An empty quiz completes with a 0% report and an ErrDegenerateInput error.
func (s *QuizService) Next(ctx context.Context, attemptID string) (AttemptView, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return AttemptView{}, err
	}

	attempt.mu.Lock()
	state, advErr := attempt.session.Advance()
	view := attempt.viewLocked()
	report, _ := attempt.session.Report()
	attempt.mu.Unlock()

	if advErr != nil && !errors.Is(advErr, domain.ErrDegenerateInput) {
		return view, advErr
	}
	if state != quiz.StateComplete {
		return view, nil
	}

	s.logger.Info("attempt graded",
		zap.String("attempt", attempt.ID),
		zap.String("quiz", attempt.Quiz.Ref.String()),
		zap.Int("score", report.Score),
		zap.Int("total", report.Total),
		zap.Int("percentage", report.Percentage),
	)
	if advErr != nil {
		s.logger.Warn("graded empty quiz", zap.String("attempt", attempt.ID), zap.Error(advErr))
		return view, advErr
	}
	if !report.Passed() {
		return view, nil
	}

	progress, err := s.complete(ctx, attempt, report)
	if err != nil {
		return view, err
	}
	view.Progress = &progress
	return view, nil
}

// Retake resets the attempt to its first question with no answers.
func (s *QuizService) Retake(_ context.Context, attemptID string) (AttemptView, error) {
	attempt, err := s.attempt(attemptID)
	if err != nil {
		return AttemptView{}, err
	}
	attempt.mu.Lock()
	defer attempt.mu.Unlock()
	attempt.session.Reset()
	return attempt.viewLocked(), nil
}

// Abandon discards the attempt.
func (s *QuizService) Abandon(_ context.Context, attemptID string) {
	s.attempts.Delete(attemptID)
}

// Describe lists a quiz's questions without answer keys.
func (s *QuizService) Describe(ctx context.Context, quizID string) ([]QuestionView, error) {
	q, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	views := make([]QuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		views = append(views, NewQuestionView(question))
	}
	return views, nil
}

// Grade grades a full answer set in one shot without opening an attempt.
// Answers are raw JSON keyed by question ID; unanswered questions grade incorrect.
func (s *QuizService) Grade(ctx context.Context, quizID string, raw map[string]json.RawMessage) (domain.Report, error) {
	q, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.Report{}, err
	}
	byID := make(map[string]domain.Question, len(q.Questions))
	for _, question := range q.Questions {
		byID[question.QuestionID()] = question
	}

	answers := make(map[string]domain.Answer, len(raw))
	for questionID, value := range raw {
		question, ok := byID[questionID]
		if !ok {
			return domain.Report{}, fmt.Errorf("question %s not in quiz %s: %w", questionID, quizID, domain.ErrInvalidArgument)
		}
		answer, err := domain.DecodeAnswer(question, value)
		if err != nil {
			return domain.Report{}, err
		}
		answers[questionID] = answer
	}
	return quiz.Grade(q.Questions, answers)
}

// Leaderboard returns the current points table.
func (s *QuizService) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	return s.board.Snapshot(ctx)
}

// Subscribe returns a channel that receives leaderboard updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context) (<-chan domain.Leaderboard, func()) {
	return s.board.Subscribe()
}

func (s *QuizService) complete(ctx context.Context, attempt *Attempt, report domain.Report) (domain.Progress, error) {
	completion := domain.Completion{
		LearnerID:    attempt.LearnerID,
		Ref:          attempt.Quiz.Ref,
		TotalLessons: attempt.Quiz.TotalLessons,
		Report:       report,
		CompletedAt:  s.now(),
	}
	progress, err := s.progress.RecordCompletion(ctx, completion)
	if err != nil {
		s.logger.Error("record completion failed",
			zap.String("attempt", attempt.ID),
			zap.String("learner", attempt.LearnerID),
			zap.Error(err),
		)
		return domain.Progress{}, fmt.Errorf("record completion: %w", err)
	}

	if progress.NewlyCompleted {
		if _, err := s.board.Award(ctx, attempt.LearnerID, progress.Points); err != nil {
			s.logger.Warn("leaderboard update failed", zap.String("learner", attempt.LearnerID), zap.Error(err))
		}
	}
	s.logger.Info("completion recorded",
		zap.String("learner", attempt.LearnerID),
		zap.String("quiz", attempt.Quiz.Ref.String()),
		zap.Bool("new", progress.NewlyCompleted),
		zap.Int("points", progress.Points),
	)
	return progress, nil
}

func (s *QuizService) loadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	ref, err := domain.ParseQuizRef(quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return s.quizzes.GetQuiz(ctx, ref)
}

func (s *QuizService) attempt(attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}
