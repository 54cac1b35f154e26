package catalog

import (
	"context"
	"sort"

	"shoproute/pkg/geo"
	"shoproute/pkg/storage"
)

// NearbyStore is a store annotated with its distance from the query
// point.
type NearbyStore struct {
	storage.Store
	Distance float64 // miles
}

// FindStoresNear returns all stores within radiusMiles of a point,
// sorted ascending by distance. Distance math happens here rather than
// in SQL; the store table is small enough that a full scan is fine.
func (s *Service) FindStoresNear(ctx context.Context, at geo.Point, radiusMiles float64) ([]NearbyStore, error) {
	if radiusMiles <= 0 {
		radiusMiles = 25
	}
	stores, err := s.db.ListStores(ctx)
	if err != nil {
		return nil, err
	}

	var out []NearbyStore
	for _, st := range stores {
		d := geo.Distance(at.Lat, at.Lng, st.Latitude, st.Longitude)
		if d <= radiusMiles {
			out = append(out, NearbyStore{Store: st, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}
