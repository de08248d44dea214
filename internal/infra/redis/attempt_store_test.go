package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"growth-hub-quiz/internal/app"
	"growth-hub-quiz/internal/domain"
)

func TestAttemptStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewAttemptStore(newClient(mr), time.Minute)
	attempt, err := app.NewAttempt("a1", "u1", domain.Quiz{Ref: domain.CourseQuiz("go-101")}, time.Now())
	if err != nil {
		t.Fatalf("new attempt: %v", err)
	}

	store.Save(attempt)
	if got, err := mr.Get("quiz:attempt:a1"); err != nil || got != "u1" {
		t.Fatalf("expected liveness key for u1, got %q (%v)", got, err)
	}

	mr.FastForward(30 * time.Second)
	if _, ok := store.Get("a1"); !ok {
		t.Fatalf("expected attempt to be found")
	}
	if ttl := mr.TTL("quiz:attempt:a1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed on get, got %s", ttl)
	}

	store.Delete("a1")
	if mr.Exists("quiz:attempt:a1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected attempt to be gone")
	}
}
