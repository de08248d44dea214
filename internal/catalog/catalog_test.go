package catalog

import (
	"errors"
	"strings"
	"testing"

	"growth-hub-quiz/internal/domain"
)

const sampleCatalog = `{
  "questions": [
    {"question_id": 1, "description": "q1", "question_type": "TF", "answer": true},
    {"question_id": 2, "description": "q2", "question_type": "TF", "answer": false},
    {"question_id": 3, "description": "q3", "question_type": "MC",
     "a": {"answer": "A", "is_correct": true}, "b": {"answer": "B", "is_correct": false}},
    {"question_id": 4, "description": "q4", "question_type": "MATCH",
     "answer_key": [{"field_1": "x", "field_2": "1"}]}
  ],
  "courses": [
    {"id": "basic_anatomy", "title": "Basic Anatomy", "lessons": [
      {"number": 2, "title": "Hygiene", "questions": ["3", "4"]},
      {"number": 1, "title": "Intro", "questions": ["1", "2", "99"]},
      {"number": 3, "title": "Empty", "questions": []}
    ]}
  ]
}`

func TestLessonQuizKeepsOrderAndSkipsMissing(t *testing.T) {
	c := mustLoad(t)

	quiz, err := c.Quiz(domain.LessonQuiz("basic_anatomy", 1), firstPick)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if ids := questionIDs(quiz); strings.Join(ids, ",") != "1,2" {
		t.Fatalf("expected 1,2 got %v", ids)
	}
	if quiz.TotalLessons != 3 {
		t.Fatalf("expected 3 lessons, got %d", quiz.TotalLessons)
	}
}

func TestCourseQuizTakesOnePerLesson(t *testing.T) {
	c := mustLoad(t)

	var bounds []int
	pick := func(n int) int {
		bounds = append(bounds, n)
		return n - 1
	}
	quiz, err := c.Quiz(domain.CourseQuiz("basic_anatomy"), pick)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if ids := questionIDs(quiz); strings.Join(ids, ",") != "2,4" {
		t.Fatalf("expected last question of lessons 1 and 2, got %v", ids)
	}
	if len(bounds) != 2 || bounds[0] != 2 || bounds[1] != 2 {
		t.Fatalf("expected pick over 2 candidates per non-empty lesson, got %v", bounds)
	}
}

func TestCourseQuizSkipsQuestionsSharedBetweenLessons(t *testing.T) {
	c := Catalog{
		Questions: []domain.Question{
			domain.TrueFalse{ID: "1", Prompt: "shared", CorrectAnswer: true},
			domain.TrueFalse{ID: "2", Prompt: "q2", CorrectAnswer: true},
			domain.TrueFalse{ID: "3", Prompt: "q3", CorrectAnswer: false},
		},
		Courses: []Course{{ID: "c", Lessons: []Lesson{
			{Number: 1, QuestionIDs: []string{"1", "2"}},
			{Number: 2, QuestionIDs: []string{"1"}},
			{Number: 3, QuestionIDs: []string{"1", "3"}},
		}}},
	}

	quiz, err := c.Quiz(domain.CourseQuiz("c"), firstPick)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if ids := questionIDs(quiz); strings.Join(ids, ",") != "1,3" {
		t.Fatalf("expected each question at most once, got %v", ids)
	}
}

func TestQuizNotFound(t *testing.T) {
	c := mustLoad(t)

	if _, err := c.Quiz(domain.CourseQuiz("missing"), firstPick); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found for course, got %v", err)
	}
	if _, err := c.Quiz(domain.LessonQuiz("basic_anatomy", 7), firstPick); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found for lesson, got %v", err)
	}
}

func mustLoad(t *testing.T) Catalog {
	t.Helper()
	c, err := Load(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func firstPick(int) int { return 0 }

func questionIDs(q domain.Quiz) []string {
	ids := make([]string, 0, len(q.Questions))
	for _, question := range q.Questions {
		ids = append(ids, question.QuestionID())
	}
	return ids
}

func TestSampleCatalogLoads(t *testing.T) {
	c, err := Sample()
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	q, err := c.Quiz(domain.LessonQuiz("basic_anatomy", 1), func(int) int { return 0 })
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if len(q.Questions) != 2 || q.Questions[0].Type() != domain.TypeMatching {
		t.Fatalf("unexpected lesson quiz: %+v", q.Questions)
	}
	cq, err := c.Quiz(domain.CourseQuiz("ipv_awareness"), func(int) int { return 0 })
	if err != nil {
		t.Fatalf("course quiz: %v", err)
	}
	if len(cq.Questions) != 2 || cq.Questions[0].QuestionID() != "233" {
		t.Fatalf("unexpected course quiz: %+v", cq.Questions)
	}
}
