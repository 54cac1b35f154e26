package route

import (
	"context"
	"path/filepath"
	"testing"

	"shoproute/pkg/geo"
	"shoproute/pkg/list"
	"shoproute/pkg/storage"

	"github.com/sirupsen/logrus"
)

type fakeRoster struct {
	entries []storage.RosterEntry
}

func (f *fakeRoster) List(ctx context.Context) ([]storage.RosterEntry, error) {
	return f.entries, nil
}

type fakeStores struct {
	stores map[string]storage.Store
}

func (f *fakeStores) GetStore(ctx context.Context, id string) (storage.Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return storage.Store{}, storage.ErrNotFound
	}
	return s, nil
}

func testList(t *testing.T) *list.Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return list.Open(filepath.Join(t.TempDir(), list.FileName), log)
}

func entry(id int64, storeID, name string, order int) storage.RosterEntry {
	return storage.RosterEntry{
		ID:              id,
		StoreID:         storeID,
		PreferenceOrder: order,
		Store:           storage.Store{ID: storeID, Name: name},
	}
}

func TestRosteredStoreSortsFirst(t *testing.T) {
	// Worked example: Kroger item is cheaper but Walmart is rostered,
	// so Walmart is the first stop.
	ls := testList(t)
	ls.Add(list.Item{ProductID: "a", ProductName: "Milk", Store: "Kroger", Price: 2.79})
	ls.Add(list.Item{ProductID: "b", ProductName: "Milk", Store: "Walmart", Price: 2.98})

	p := &Planner{
		List:   ls,
		Roster: &fakeRoster{entries: []storage.RosterEntry{entry(1, "walmart-1", "Walmart", 0)}},
	}

	stops, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(stops))
	}
	if stops[0].Store != "Walmart" || stops[0].RosterRank != 0 {
		t.Fatalf("expected Walmart first with rank 0, got %+v", stops[0])
	}
	if stops[1].Store != "Kroger" || stops[1].RosterRank != UnrankedOrder {
		t.Fatalf("expected Kroger last with sentinel rank, got %+v", stops[1])
	}
	if stops[0].Subtotal != 2.98 || stops[1].Subtotal != 2.79 {
		t.Fatalf("bad subtotals: %f / %f", stops[0].Subtotal, stops[1].Subtotal)
	}
}

func TestRouteSortedByRankThenDistance(t *testing.T) {
	ls := testList(t)
	ls.Add(list.Item{ProductID: "a", Store: "Far", StoreID: "far", Price: 1})
	ls.Add(list.Item{ProductID: "b", Store: "Near", StoreID: "near", Price: 1})

	// Both rostered at the same rank; distance breaks the tie.
	p := &Planner{
		List: ls,
		Roster: &fakeRoster{entries: []storage.RosterEntry{
			entry(1, "far", "Far", 0),
			entry(2, "near", "Near", 0),
		}},
		Stores: &fakeStores{stores: map[string]storage.Store{
			"far":  {ID: "far", Latitude: 41.0, Longitude: -89.0},
			"near": {ID: "near", Latitude: 39.8, Longitude: -89.6},
		}},
		Origin: &geo.Point{Lat: 39.7817, Lng: -89.6501},
	}

	stops, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stops[0].StoreID != "near" {
		t.Fatalf("expected nearest store first on rank tie, got %s", stops[0].StoreID)
	}
	for i := 1; i < len(stops); i++ {
		prev, cur := stops[i-1], stops[i]
		if prev.RosterRank > cur.RosterRank {
			t.Fatalf("stops not sorted by rank: %d before %d", prev.RosterRank, cur.RosterRank)
		}
		if prev.RosterRank == cur.RosterRank && prev.DistanceMiles > cur.DistanceMiles {
			t.Fatalf("rank tie not broken by distance: %f before %f", prev.DistanceMiles, cur.DistanceMiles)
		}
	}
}

func TestRosterMatchKeyedByStoreID(t *testing.T) {
	// The roster store was renamed; id matching must still find it.
	ls := testList(t)
	ls.Add(list.Item{ProductID: "a", Store: "Old Name", StoreID: "kroger-1", Price: 1})

	p := &Planner{
		List:   ls,
		Roster: &fakeRoster{entries: []storage.RosterEntry{entry(1, "kroger-1", "New Name", 2)}},
	}

	stops, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stops[0].RosterRank != 2 {
		t.Fatalf("expected rank 2 via id match, got %d", stops[0].RosterRank)
	}
}

func TestNameFallbackForIDLessItems(t *testing.T) {
	ls := testList(t)
	ls.Add(list.Item{ProductID: "a", Store: "Walmart", Price: 1})

	p := &Planner{
		List:   ls,
		Roster: &fakeRoster{entries: []storage.RosterEntry{entry(1, "walmart-1", "Walmart", 0)}},
	}

	stops, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stops[0].RosterRank != 0 {
		t.Fatalf("expected name-fallback rank 0, got %d", stops[0].RosterRank)
	}
	if stops[0].StoreID != "walmart-1" {
		t.Fatalf("expected stop to adopt the roster's store id, got %q", stops[0].StoreID)
	}
}

func TestEstimatedTimeFloor(t *testing.T) {
	ls := testList(t)
	ls.Add(list.Item{ProductID: "a", Store: "Kroger", Price: 1})

	p := &Planner{List: ls, Roster: &fakeRoster{}}
	stops, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stops[0].EstimatedMinutes != 10 {
		t.Fatalf("expected 10 minute floor for a single item, got %d", stops[0].EstimatedMinutes)
	}

	for i := 0; i < 7; i++ {
		ls.Add(list.Item{ProductID: string(rune('b' + i)), Store: "Kroger", Price: 1})
	}
	stops, err = p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stops[0].EstimatedMinutes != 16 {
		t.Fatalf("expected 2 min per item past the floor (8 items = 16), got %d", stops[0].EstimatedMinutes)
	}
}

func TestEmptyListYieldsEmptyRoute(t *testing.T) {
	p := &Planner{List: testList(t), Roster: &fakeRoster{}}
	stops, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stops) != 0 {
		t.Fatalf("expected no stops, got %d", len(stops))
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	ls := testList(t)
	ls.Add(list.Item{ProductID: "a", Store: "Kroger", StoreID: "k", Price: 1})
	ls.Add(list.Item{ProductID: "b", Store: "Walmart", StoreID: "w", Price: 2})

	p := &Planner{
		List: ls,
		Roster: &fakeRoster{entries: []storage.RosterEntry{
			entry(1, "w", "Walmart", 0),
			entry(2, "k", "Kroger", 1),
		}},
	}

	first, err := p.OptimizedRoute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := p.OptimizedRoute(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("route length changed between runs")
		}
		for j := range again {
			if again[j].StoreID != first[j].StoreID || again[j].DistanceMiles != first[j].DistanceMiles {
				t.Fatalf("route changed between identical runs: %+v vs %+v", first[j], again[j])
			}
		}
	}
}
