// Package catalog holds the course, lesson and question bank document and
// assembles lesson and end-of-course quizzes from it.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"growth-hub-quiz/internal/domain"
)

// Catalog is the question bank plus the course structure referencing it.
type Catalog struct {
	Questions []domain.Question
	Courses   []Course
}

type Course struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Lesson lists the question IDs of its end-of-lesson quiz in display order.
type Lesson struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	QuestionIDs []string `json:"questions"`
}

type document struct {
	Questions []domain.QuestionDocument `json:"questions"`
	Courses   []Course                  `json:"courses"`
}

// Load decodes a catalog JSON document.
func Load(r io.Reader) (Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	c := Catalog{
		Questions: make([]domain.Question, 0, len(doc.Questions)),
		Courses:   doc.Courses,
	}
	for _, q := range doc.Questions {
		c.Questions = append(c.Questions, q.Question)
	}
	return c, nil
}

// Course returns the course with the given ID, lessons sorted by number.
func (c Catalog) Course(id string) (Course, bool) {
	for _, course := range c.Courses {
		if course.ID == id {
			lessons := make([]Lesson, len(course.Lessons))
			copy(lessons, course.Lessons)
			sort.Slice(lessons, func(i, j int) bool { return lessons[i].Number < lessons[j].Number })
			course.Lessons = lessons
			return course, true
		}
	}
	return Course{}, false
}

// Quiz assembles the quiz for ref. A lesson quiz lists the lesson's questions
// in order, skipping IDs missing from the bank. A course quiz takes one
// question per lesson among those not already taken for an earlier lesson,
// chosen by pick(n) which must return a value in [0, n).
func (c Catalog) Quiz(ref domain.QuizRef, pick func(n int) int) (domain.Quiz, error) {
	course, ok := c.Course(ref.CourseID)
	if !ok {
		return domain.Quiz{}, fmt.Errorf("course %s: %w", ref.CourseID, domain.ErrQuizNotFound)
	}
	bank := make(map[string]domain.Question, len(c.Questions))
	for _, q := range c.Questions {
		bank[q.QuestionID()] = q
	}

	quiz := domain.Quiz{Ref: ref, TotalLessons: len(course.Lessons)}
	switch ref.Kind {
	case domain.KindLesson:
		lesson, ok := findLesson(course, ref.Lesson)
		if !ok {
			return domain.Quiz{}, fmt.Errorf("lesson %s: %w", ref, domain.ErrQuizNotFound)
		}
		quiz.Questions = resolve(bank, lesson.QuestionIDs)
	case domain.KindCourse:
		// Lessons may share questions; each one is picked at most once.
		picked := make(map[string]bool, len(course.Lessons))
		for _, lesson := range course.Lessons {
			var available []domain.Question
			for _, q := range resolve(bank, lesson.QuestionIDs) {
				if !picked[q.QuestionID()] {
					available = append(available, q)
				}
			}
			if len(available) == 0 {
				continue
			}
			q := available[pick(len(available))]
			picked[q.QuestionID()] = true
			quiz.Questions = append(quiz.Questions, q)
		}
	default:
		return domain.Quiz{}, fmt.Errorf("quiz %s: %w", ref, domain.ErrInvalidArgument)
	}
	return quiz, nil
}

func findLesson(course Course, number int) (Lesson, bool) {
	for _, lesson := range course.Lessons {
		if lesson.Number == number {
			return lesson, true
		}
	}
	return Lesson{}, false
}

func resolve(bank map[string]domain.Question, ids []string) []domain.Question {
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := bank[id]; ok {
			out = append(out, q)
		}
	}
	return out
}
