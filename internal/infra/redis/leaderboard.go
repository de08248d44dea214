package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"growth-hub-quiz/internal/app"
	"growth-hub-quiz/internal/domain"
)

const leaderboardKey = "leaderboard:points"

// Leaderboard keeps point totals in a sorted set shared by every instance.
// Local subscribers receive the shared table through an in-process board used
// only for fan-out.
type Leaderboard struct {
	client *redis.Client
	fanout *app.Board
	now    func() time.Time
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{
		client: client,
		fanout: app.NewBoard(),
		now:    time.Now,
	}
}

func (l *Leaderboard) Award(ctx context.Context, learnerID string, points int) (domain.Leaderboard, error) {
	if err := l.client.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(points), Member: learnerID}).Err(); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("zadd leaderboard: %w", err)
	}
	lb, err := l.Snapshot(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	l.fanout.Publish(lb)
	return lb, nil
}

// Snapshot reads the shared table. Ties on points order by learner ID.
func (l *Leaderboard) Snapshot(ctx context.Context) (domain.Leaderboard, error) {
	zs, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, -1).Result()
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("read leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{LearnerID: member, Points: int(z.Score)})
	}
	// ZREVRANGE returns equal scores in reverse member order.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].LearnerID < entries[j].LearnerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: l.now()}, nil
}

// Subscribe is primed with the shared table and then receives it again after
// every award made through this instance.
func (l *Leaderboard) Subscribe() (<-chan domain.Leaderboard, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	initial, err := l.Snapshot(ctx)
	if err != nil {
		initial = domain.Leaderboard{Entries: []domain.LeaderboardEntry{}, UpdatedAt: l.now()}
	}
	return l.fanout.SubscribeFrom(initial)
}
