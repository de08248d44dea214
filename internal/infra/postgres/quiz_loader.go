package postgres

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"growth-hub-quiz/internal/catalog"
	"growth-hub-quiz/internal/domain"
)

// QuizLoader assembles quizzes from the lessons table and question JSONB documents.
type QuizLoader struct {
	pool *pgxpool.Pool

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{
		pool: pool,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, ref domain.QuizRef) (domain.Quiz, error) {
	course, ids, err := l.loadCourse(ctx, ref.CourseID)
	if err != nil {
		return domain.Quiz{}, err
	}
	questions, err := l.loadQuestions(ctx, ids)
	if err != nil {
		return domain.Quiz{}, err
	}

	c := catalog.Catalog{Questions: questions, Courses: []catalog.Course{course}}
	l.mu.Lock()
	defer l.mu.Unlock()
	return c.Quiz(ref, l.rnd.Intn)
}

func (l *QuizLoader) loadCourse(ctx context.Context, courseID string) (catalog.Course, []string, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT number, title, question_ids FROM lessons WHERE course_id=$1 ORDER BY number`, courseID)
	if err != nil {
		return catalog.Course{}, nil, fmt.Errorf("load lessons: %w", err)
	}
	defer rows.Close()

	course := catalog.Course{ID: courseID}
	var ids []string
	for rows.Next() {
		var lesson catalog.Lesson
		if err := rows.Scan(&lesson.Number, &lesson.Title, &lesson.QuestionIDs); err != nil {
			return catalog.Course{}, nil, fmt.Errorf("scan lesson: %w", err)
		}
		course.Lessons = append(course.Lessons, lesson)
		ids = append(ids, lesson.QuestionIDs...)
	}
	if err := rows.Err(); err != nil {
		return catalog.Course{}, nil, fmt.Errorf("load lessons: %w", err)
	}
	if len(course.Lessons) == 0 {
		return catalog.Course{}, nil, fmt.Errorf("course %s: %w", courseID, domain.ErrQuizNotFound)
	}
	return course, ids, nil
}

func (l *QuizLoader) loadQuestions(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := l.pool.Query(ctx, `SELECT data FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0, len(ids))
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q, err := domain.DecodeQuestion(raw)
		if err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
