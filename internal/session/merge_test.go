package session

import (
	"context"
	"errors"
	"testing"

	"github.com/j00les/workout-map/internal/workout"
)

func TestMergeSnapshots(t *testing.T) {
	stored := []workout.Snapshot{{ID: "a"}, {ID: "b", ClickCount: 1}}
	incoming := []workout.Snapshot{{ID: "b", ClickCount: 3}, {ID: "c"}}

	got := mergeSnapshots(stored, incoming)
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("unexpected merge order %+v", got)
	}
	if got[1].ClickCount != 3 {
		t.Fatalf("expected incoming record to replace the stored one")
	}
}

func TestMergingStoreKeepsOtherWriters(t *testing.T) {
	inner := newFakeStore()
	m := newMergingStore(inner)
	ctx := context.Background()

	if err := m.Save(ctx, "workouts", []workout.Snapshot{{ID: "a"}}); err != nil {
		t.Fatalf("save a: %v", err)
	}
	// a second writer that never saw "a"
	if err := m.Save(ctx, "workouts", []workout.Snapshot{{ID: "b"}}); err != nil {
		t.Fatalf("save b: %v", err)
	}

	got, err := m.Load(ctx, "workouts")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected both writers kept, got %+v", got)
	}
}

func TestMergingStoreReloadFailure(t *testing.T) {
	inner := newFakeStore()
	inner.loadErr = errors.New("unreachable")
	m := newMergingStore(inner)

	if err := m.Save(context.Background(), "workouts", []workout.Snapshot{{ID: "a"}}); err == nil {
		t.Fatalf("expected save to fail when the stored collection cannot be read")
	}
	if _, saves := inner.saved("workouts"); saves != 0 {
		t.Fatalf("must not overwrite a collection it could not read")
	}
}
