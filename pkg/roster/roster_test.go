package roster

import (
	"context"
	"path/filepath"
	"testing"

	"shoproute/pkg/storage"

	"github.com/sirupsen/logrus"
)

func testService(t *testing.T) (*Service, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(db, log), db
}

func seedStores(t *testing.T, db *storage.DB, ids ...string) {
	t.Helper()
	stores := make([]storage.Store, 0, len(ids))
	for _, id := range ids {
		stores = append(stores, storage.Store{
			ID: id, Name: "Store " + id, Address: "1 Main St",
			City: "Springfield", State: "IL", ZipCode: "62701",
			Latitude: 39.78, Longitude: -89.65,
		})
	}
	if err := db.UpsertStores(context.Background(), stores); err != nil {
		t.Fatal(err)
	}
}

func orders(t *testing.T, s *Service) map[string]int {
	t.Helper()
	entries, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.StoreID] = e.PreferenceOrder
	}
	return out
}

func TestAddAppendsAtEnd(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	seedStores(t, db, "a", "b", "c")

	for _, id := range []string{"a", "b", "c"} {
		if !s.Add(ctx, id) {
			t.Fatalf("add %s failed", id)
		}
	}

	got := orders(t, s)
	want := map[string]int{"a": 0, "b": 1, "c": 2}
	for id, order := range want {
		if got[id] != order {
			t.Fatalf("store %s: expected order %d, got %d", id, order, got[id])
		}
	}
}

func TestAddDuplicateStoreFails(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	seedStores(t, db, "a")

	if !s.Add(ctx, "a") {
		t.Fatal("first add should succeed")
	}
	if s.Add(ctx, "a") {
		t.Fatal("adding the same store twice should report false")
	}
	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestRemoveLeavesGaps(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	seedStores(t, db, "a", "b", "c")
	s.Add(ctx, "a")
	s.Add(ctx, "b")
	s.Add(ctx, "c")

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Remove(ctx, entries[1].ID) {
		t.Fatal("remove failed")
	}

	got := orders(t, s)
	if got["a"] != 0 || got["c"] != 2 {
		t.Fatalf("remove must not renumber survivors, got %v", got)
	}
}

func TestRemoveUnknownEntryReportsFalse(t *testing.T) {
	s, _ := testService(t)
	if s.Remove(context.Background(), 12345) {
		t.Fatal("removing a missing entry should report false")
	}
}

func TestReorderRenumbersContiguously(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	seedStores(t, db, "a", "b", "c", "d")
	for _, id := range []string{"a", "b", "c", "d"} {
		s.Add(ctx, id)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Move the last store to the front.
	if err := s.Reorder(ctx, entries[3].ID, 0); err != nil {
		t.Fatal(err)
	}

	got := orders(t, s)
	want := map[string]int{"d": 0, "a": 1, "b": 2, "c": 3}
	for id, order := range want {
		if got[id] != order {
			t.Fatalf("after move: store %s expected order %d, got %d (%v)", id, order, got[id], got)
		}
	}
}

func TestReorderClampsIndex(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	seedStores(t, db, "a", "b")
	s.Add(ctx, "a")
	s.Add(ctx, "b")

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Reorder(ctx, entries[0].ID, 99); err != nil {
		t.Fatal(err)
	}

	got := orders(t, s)
	if got["a"] != 1 || got["b"] != 0 {
		t.Fatalf("out-of-range index should clamp to the end, got %v", got)
	}
}

func TestReorderUnknownEntry(t *testing.T) {
	s, _ := testService(t)
	if err := s.Reorder(context.Background(), 999, 0); err == nil {
		t.Fatal("expected an error for an unknown entry")
	}
}

func TestContains(t *testing.T) {
	ctx := context.Background()
	s, db := testService(t)
	seedStores(t, db, "a")
	s.Add(ctx, "a")

	if !s.Contains(ctx, "a") {
		t.Fatal("expected roster to contain a")
	}
	if s.Contains(ctx, "b") {
		t.Fatal("did not expect roster to contain b")
	}
}
