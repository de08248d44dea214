package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when an operation names a question that is
	// not part of the session, or otherwise receives input it cannot act on.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAnswerTypeMismatch indicates an answer whose shape does not fit the question variant.
	ErrAnswerTypeMismatch = fmt.Errorf("%w: answer does not match question type", ErrInvalidArgument)
	// ErrDegenerateInput is returned when grading a session with no questions.
	ErrDegenerateInput = errors.New("degenerate input: quiz has no questions")
	// ErrSessionComplete is returned when a completed session is mutated without a reset.
	ErrSessionComplete = errors.New("quiz session already complete")
	// ErrUnsupportedQuestionType indicates a stored question with an unknown type tag.
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when an attempt ID is unknown or was discarded.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
)
