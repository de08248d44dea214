package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"growth-hub-quiz/internal/catalog"
	"growth-hub-quiz/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, ref domain.QuizRef) (domain.Quiz, error)
}

// QuizRepository caches quizzes with TTL to avoid repeated DB hits. A cached
// end-of-course quiz keeps its random picks until the entry expires.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, ref domain.QuizRef) (domain.Quiz, error) {
	key := ref.String()
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quiz, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quiz, nil
		}
		r.mu.RUnlock()

		q, err := r.loader.LoadQuiz(ctx, ref)
		if err != nil {
			return domain.Quiz{}, err
		}

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[key] = cachedQuiz{quiz: q, expiresAt: expiresAt}
		r.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// CatalogLoader serves quizzes from an in-memory catalog (useful for tests/demos).
type CatalogLoader struct {
	catalog catalog.Catalog

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogLoader(c catalog.Catalog) *CatalogLoader {
	return &CatalogLoader{
		catalog: c,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (l *CatalogLoader) LoadQuiz(_ context.Context, ref domain.QuizRef) (domain.Quiz, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.catalog.Quiz(ref, l.rnd.Intn)
}
