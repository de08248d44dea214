package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"growth-hub-quiz/internal/catalog"
	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuizLoader: memory.NewCatalogLoader(sampleCatalog())}
	repo := NewQuizRepository(client, loader, time.Minute)
	ref := domain.LessonQuiz("go-101", 1)

	first, err := repo.GetQuiz(context.Background(), ref)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:lesson:go-101:1") {
		t.Fatalf("expected quiz to be cached")
	}
	if ttl := mr.TTL("quiz:lesson:go-101:1"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	second, err := repo.GetQuiz(context.Background(), ref)
	if err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if second.Ref != first.Ref || second.TotalLessons != 2 || len(second.Questions) != len(first.Questions) {
		t.Fatalf("cached quiz differs: %+v vs %+v", second, first)
	}
	sc, ok := second.Questions[1].(domain.SingleChoice)
	if !ok || sc.CorrectLabel() != "a" {
		t.Fatalf("expected answer key to survive the cache, got %#v", second.Questions[1])
	}
}

func TestQuizRepositoryReloadsCorruptEntry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	if err := mr.Set("quiz:course:go-101", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	loader := &countingLoader{QuizLoader: memory.NewCatalogLoader(sampleCatalog())}
	repo := NewQuizRepository(newClient(mr), loader, time.Minute)

	q, err := repo.GetQuiz(context.Background(), domain.CourseQuiz("go-101"))
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 || len(q.Questions) != 2 {
		t.Fatalf("expected reload with one question per lesson, calls=%d quiz=%+v", loader.calls, q)
	}
}

type countingLoader struct {
	memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, ref domain.QuizRef) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, ref)
}

func sampleCatalog() catalog.Catalog {
	return catalog.Catalog{
		Questions: []domain.Question{
			domain.TrueFalse{ID: "1", Prompt: "Go has generics.", CorrectAnswer: true},
			domain.SingleChoice{ID: "2", Prompt: "Zero value of int?", Options: []domain.Option{
				{Label: "a", Text: "0", IsCorrect: true},
				{Label: "b", Text: "nil"},
			}},
			domain.Matching{ID: "3", Prompt: "Match the types.", Pairs: []domain.Pair{
				{Left: "int", Right: "0"},
				{Left: "string", Right: `""`},
			}},
		},
		Courses: []catalog.Course{{
			ID: "go-101",
			Lessons: []catalog.Lesson{
				{Number: 1, QuestionIDs: []string{"1", "2"}},
				{Number: 2, QuestionIDs: []string{"3"}},
			},
		}},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
