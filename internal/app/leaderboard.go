package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"growth-hub-quiz/internal/domain"
)

// Board is an in-process points leaderboard that fans snapshots out to subscribers.
type Board struct {
	now         func() time.Time
	mu          sync.RWMutex
	standings   map[string]*standing
	subscribers map[chan domain.Leaderboard]struct{}
}

type standing struct {
	learnerID string
	points    int
	reachedAt time.Time
}

func NewBoard() *Board {
	return NewBoardWithClock(time.Now)
}

// NewBoardWithClock allows deterministic timestamps in tests.
func NewBoardWithClock(now func() time.Time) *Board {
	return &Board{
		now:         now,
		standings:   make(map[string]*standing),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Award sets the learner's point total and broadcasts the new table.
func (b *Board) Award(_ context.Context, learnerID string, points int) (domain.Leaderboard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if st, ok := b.standings[learnerID]; ok {
		if st.points != points {
			st.points = points
			st.reachedAt = now
		}
	} else {
		b.standings[learnerID] = &standing{learnerID: learnerID, points: points, reachedAt: now}
	}
	return b.broadcastLocked(), nil
}

func (b *Board) Snapshot(_ context.Context) (domain.Leaderboard, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshotLocked(), nil
}

// Subscribe returns a channel of leaderboard snapshots, primed with the
// current one. The caller must invoke cancel to avoid leaks.
func (b *Board) Subscribe() (<-chan domain.Leaderboard, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(b.snapshotLocked())
}

// SubscribeFrom is Subscribe primed with initial instead of the board's own
// standings, for callers that keep the table elsewhere and Publish it.
func (b *Board) SubscribeFrom(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(initial)
}

// Publish fans lb out to every subscriber as is.
func (b *Board) Publish(lb domain.Leaderboard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishLocked(lb)
}

func (b *Board) subscribeLocked(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	b.subscribers[ch] = struct{}{}
	// The buffer is empty, so this cannot block while mu is held.
	ch <- initial

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Board) broadcastLocked() domain.Leaderboard {
	lb := b.snapshotLocked()
	b.publishLocked(lb)
	return lb
}

func (b *Board) publishLocked(lb domain.Leaderboard) {
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (b *Board) snapshotLocked() domain.Leaderboard {
	ordered := make([]*standing, 0, len(b.standings))
	for _, st := range b.standings {
		ordered = append(ordered, st)
	}

	// Points desc, then whoever reached the total first, then learner ID.
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].points != ordered[j].points {
			return ordered[i].points > ordered[j].points
		}
		if !ordered[i].reachedAt.Equal(ordered[j].reachedAt) {
			return ordered[i].reachedAt.Before(ordered[j].reachedAt)
		}
		return ordered[i].learnerID < ordered[j].learnerID
	})

	entries := make([]domain.LeaderboardEntry, 0, len(ordered))
	for i, st := range ordered {
		entries = append(entries, domain.LeaderboardEntry{
			LearnerID: st.learnerID,
			Points:    st.points,
			Rank:      i + 1,
		})
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: b.now()}
}
