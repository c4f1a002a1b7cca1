package handhistory

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "hands.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec, _ := playShowdownHand(t)
	rec.ID = "rt-1"
	if err := store.Append(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "rt-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != rec.ID || got.TotalPot != rec.TotalPot || len(got.Actions) != len(rec.Actions) {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
	if len(got.Seats) != len(rec.Seats) {
		t.Fatalf("seats = %d, want %d", len(got.Seats), len(rec.Seats))
	}
}

func TestStoreAppendIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec, _ := playShowdownHand(t)
	rec.ID = "dup-1"
	if err := store.Append(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("re-append failed: %v", err)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("records = %d after duplicate append, want 1", len(recent))
	}
}

func TestStoreRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base, _ := playShowdownHand(t)
	for i, id := range []string{"old", "mid", "new"} {
		rec := *base
		rec.ID = id
		rec.PlayedAt = time.Date(2026, 8, 1+i, 12, 0, 0, 0, time.UTC)
		if err := store.Append(ctx, &rec); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("records = %d, want 2", len(recent))
	}
	if recent[0].ID != "new" || recent[1].ID != "mid" {
		t.Fatalf("order = [%s %s], want [new mid]", recent[0].ID, recent[1].ID)
	}
}

func TestStoreRejectsRecordWithoutID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Append(context.Background(), &Record{}); err == nil {
		t.Fatal("record without ID accepted")
	}
}
