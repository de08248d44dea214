package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// QuizKind distinguishes per-lesson quizzes from the end-of-course quiz.
type QuizKind string

const (
	KindLesson QuizKind = "lesson"
	KindCourse QuizKind = "course"
)

// QuizRef identifies a quiz: "lesson:<course>:<n>" or "course:<course>".
type QuizRef struct {
	Kind     QuizKind
	CourseID string
	Lesson   int
}

func LessonQuiz(courseID string, lesson int) QuizRef {
	return QuizRef{Kind: KindLesson, CourseID: courseID, Lesson: lesson}
}

func CourseQuiz(courseID string) QuizRef {
	return QuizRef{Kind: KindCourse, CourseID: courseID}
}

func (r QuizRef) String() string {
	if r.Kind == KindLesson {
		return fmt.Sprintf("%s:%s:%d", KindLesson, r.CourseID, r.Lesson)
	}
	return fmt.Sprintf("%s:%s", KindCourse, r.CourseID)
}

// ParseQuizRef parses the string form produced by QuizRef.String.
func ParseQuizRef(raw string) (QuizRef, error) {
	parts := strings.Split(raw, ":")
	switch {
	case len(parts) == 3 && parts[0] == string(KindLesson) && parts[1] != "":
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return QuizRef{}, fmt.Errorf("quiz %q: lesson must be a positive number: %w", raw, ErrInvalidArgument)
		}
		return LessonQuiz(parts[1], n), nil
	case len(parts) == 2 && parts[0] == string(KindCourse) && parts[1] != "":
		return CourseQuiz(parts[1]), nil
	default:
		return QuizRef{}, fmt.Errorf("quiz %q: %w", raw, ErrInvalidArgument)
	}
}
