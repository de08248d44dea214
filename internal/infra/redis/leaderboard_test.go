package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestLeaderboardSharedTable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)
	first := NewLeaderboard(client)
	second := NewLeaderboard(client)

	ch, cancel := first.Subscribe()
	defer cancel()
	<-ch // initial snapshot

	if _, err := first.Award(ctx, "bob", 10); err != nil {
		t.Fatalf("award: %v", err)
	}
	if _, err := second.Award(ctx, "alice", 10); err != nil {
		t.Fatalf("award: %v", err)
	}
	lb, err := second.Award(ctx, "carol", 20)
	if err != nil {
		t.Fatalf("award: %v", err)
	}

	want := []string{"carol", "alice", "bob"}
	for i, id := range want {
		if lb.Entries[i].LearnerID != id || lb.Entries[i].Rank != i+1 {
			t.Fatalf("entry %d: expected %s, got %+v", i, id, lb.Entries)
		}
	}

	snap, err := first.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Entries) != 3 || snap.Entries[0].Points != 20 {
		t.Fatalf("expected instances to share the table, got %+v", snap.Entries)
	}

	pushed := <-ch
	if len(pushed.Entries) != 1 || pushed.Entries[0].LearnerID != "bob" || pushed.Entries[0].Rank != 1 {
		t.Fatalf("expected shared table after bob's award, got %+v", pushed.Entries)
	}
}

func TestLeaderboardSubscriberSeesSharedTable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)
	first := NewLeaderboard(client)
	second := NewLeaderboard(client)

	if _, err := first.Award(ctx, "alice", 50); err != nil {
		t.Fatalf("award: %v", err)
	}

	ch, cancel := second.Subscribe()
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 1 || initial.Entries[0].LearnerID != "alice" {
		t.Fatalf("expected subscription primed with the shared table, got %+v", initial.Entries)
	}

	if _, err := second.Award(ctx, "bob", 10); err != nil {
		t.Fatalf("award: %v", err)
	}
	pushed := <-ch
	snap, err := second.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(pushed.Entries) != len(snap.Entries) {
		t.Fatalf("pushed table %+v disagrees with snapshot %+v", pushed.Entries, snap.Entries)
	}
	for i := range snap.Entries {
		if pushed.Entries[i] != snap.Entries[i] {
			t.Fatalf("entry %d: pushed %+v, snapshot %+v", i, pushed.Entries[i], snap.Entries[i])
		}
	}
	if pushed.Entries[0].LearnerID != "alice" || pushed.Entries[1].Rank != 2 {
		t.Fatalf("expected alice first and bob second, got %+v", pushed.Entries)
	}
}
