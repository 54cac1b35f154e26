// Package route turns the shopping list plus the store roster into an
// ordered sequence of store stops.
package route

import (
	"context"
	"sort"

	"shoproute/pkg/geo"
	"shoproute/pkg/list"
	"shoproute/pkg/storage"
)

// UnrankedOrder is the sentinel rank for stores that are not on the
// roster; it sorts after every real preference order.
const UnrankedOrder = 999

// Stop is one store visit: the items to buy there, their subtotal, and
// the ordering attributes the plan was sorted by. Recomputed on every
// request, never persisted.
type Stop struct {
	Store            string
	StoreID          string
	Items            []list.Item
	Subtotal         float64
	EstimatedMinutes int
	DistanceMiles    float64
	RosterRank       int
}

// RosterSource is the slice of the roster service the planner needs.
type RosterSource interface {
	List(ctx context.Context) ([]storage.RosterEntry, error)
}

// StoreSource resolves store ids to their reference data.
type StoreSource interface {
	GetStore(ctx context.Context, id string) (storage.Store, error)
}

// Planner computes routes from the current list and roster state.
type Planner struct {
	List   *list.Store
	Roster RosterSource
	Stores StoreSource

	// Origin is the shopper's position. When set, stops for stores with
	// known coordinates get a real great-circle distance; otherwise the
	// distance stays zero.
	Origin *geo.Point
}

// OptimizedRoute groups list items by store, attaches the roster
// preference rank and distance to each group, and returns the stops
// sorted ascending by rank, ties broken by distance.
func (p *Planner) OptimizedRoute(ctx context.Context) ([]Stop, error) {
	groups := p.List.ItemsByStore()
	if len(groups) == 0 {
		return []Stop{}, nil
	}

	entries, err := p.Roster.List(ctx)
	if err != nil {
		return nil, err
	}

	byStoreID := make(map[string]storage.RosterEntry, len(entries))
	byStoreName := make(map[string]storage.RosterEntry, len(entries))
	for _, e := range entries {
		byStoreID[e.StoreID] = e
		if _, dup := byStoreName[e.Store.Name]; !dup {
			byStoreName[e.Store.Name] = e
		}
	}

	stops := make([]Stop, 0, len(groups))
	for _, g := range groups {
		first := g.Items[0]
		stop := Stop{
			Store:      first.Store,
			StoreID:    first.StoreID,
			Items:      g.Items,
			RosterRank: UnrankedOrder,
		}
		for _, it := range g.Items {
			stop.Subtotal += it.Price
		}
		stop.EstimatedMinutes = estimatedMinutes(len(g.Items))

		// Roster match is keyed by store id; display name is only a
		// fallback for items added before the store was synced.
		entry, ok := byStoreID[first.StoreID]
		if !ok || first.StoreID == "" {
			entry, ok = byStoreName[first.Store]
		}
		if ok {
			stop.RosterRank = entry.PreferenceOrder
			if stop.StoreID == "" {
				stop.StoreID = entry.StoreID
			}
		}

		stop.DistanceMiles = p.distanceTo(ctx, stop.StoreID)
		stops = append(stops, stop)
	}

	sort.SliceStable(stops, func(i, j int) bool {
		if stops[i].RosterRank != stops[j].RosterRank {
			return stops[i].RosterRank < stops[j].RosterRank
		}
		return stops[i].DistanceMiles < stops[j].DistanceMiles
	})
	return stops, nil
}

// estimatedMinutes is a monotonic function of item count with a floor,
// so every stop shows at least ten minutes.
func estimatedMinutes(itemCount int) int {
	m := itemCount * 2
	if m < 10 {
		return 10
	}
	return m
}

func (p *Planner) distanceTo(ctx context.Context, storeID string) float64 {
	if p.Origin == nil || storeID == "" || p.Stores == nil {
		return 0
	}
	store, err := p.Stores.GetStore(ctx, storeID)
	if err != nil {
		return 0
	}
	return geo.Distance(p.Origin.Lat, p.Origin.Lng, store.Latitude, store.Longitude)
}
