package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/infra/memory"
)

// QuizRepository caches resolved quizzes in Redis and falls back to a loader on cache miss.
// Quizzes are stored as: SET quiz:{ref} {quiz document JSON}
type QuizRepository struct {
	client *redis.Client
	loader memory.QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader memory.QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, ref domain.QuizRef) (domain.Quiz, error) {
	key := r.key(ref)
	if q, ok := r.cached(ctx, key); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := r.cached(ctx, key); ok {
			return q, nil
		}

		q, err := r.loader.LoadQuiz(ctx, ref)
		if err != nil {
			return domain.Quiz{}, err
		}

		// A cache write failure only costs a reload.
		if payload, err := json.Marshal(q); err == nil {
			_ = r.client.Set(ctx, key, payload, r.ttlWithJitter()).Err()
		}
		return q, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var q domain.Quiz
	if err := json.Unmarshal(payload, &q); err != nil {
		// Stale or foreign payload: drop it and reload.
		_ = r.client.Del(ctx, key).Err()
		return domain.Quiz{}, false
	}
	return q, true
}

func (r *QuizRepository) key(ref domain.QuizRef) string {
	return "quiz:" + ref.String()
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
