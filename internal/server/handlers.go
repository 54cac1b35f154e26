package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shoproute/pkg/geo"
	"shoproute/pkg/list"
	"shoproute/pkg/route"
	"shoproute/pkg/storage"
)

// ---- products ----

func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	products, err := s.Catalog.SearchProducts(r.Context(), q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []storage.Product{}
	}
	json.NewEncoder(w).Encode(products)
}

func (s *Server) handleProductByUPC(w http.ResponseWriter, r *http.Request) {
	product, err := s.Catalog.GetProductByUPC(r.Context(), r.PathValue("upc"))
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(product)
}

func (s *Server) handleProductPrices(w http.ResponseWriter, r *http.Request) {
	at, err := optionalPoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	quotes, err := s.Catalog.GetProductPrices(r.Context(), r.PathValue("id"), at)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(quotes)
}

type ProductSyncRequest struct {
	Query      string `json:"query"`
	LocationID string `json:"location_id"`
}

func (s *Server) handleProductSync(w http.ResponseWriter, r *http.Request) {
	if s.Kroger == nil {
		http.Error(w, "kroger integration not configured", http.StatusServiceUnavailable)
		return
	}
	var req ProductSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	products, err := s.Kroger.SyncProducts(r.Context(), s.DB, req.Query, req.LocationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// ---- roster ----

func (s *Server) handleRosterList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Roster.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []storage.RosterEntry{}
	}
	json.NewEncoder(w).Encode(entries)
}

type RosterAddRequest struct {
	StoreID string `json:"store_id"`
}

func (s *Server) handleRosterAdd(w http.ResponseWriter, r *http.Request) {
	var req RosterAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.StoreID == "" {
		http.Error(w, "store_id is required", http.StatusBadRequest)
		return
	}
	added := s.Roster.Add(r.Context(), req.StoreID)
	json.NewEncoder(w).Encode(map[string]bool{"added": added})
}

func (s *Server) handleRosterRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad roster entry id", http.StatusBadRequest)
		return
	}
	removed := s.Roster.Remove(r.Context(), id)
	json.NewEncoder(w).Encode(map[string]bool{"removed": removed})
}

type RosterReorderRequest struct {
	ID       int64 `json:"id"`
	NewIndex int   `json:"new_index"`
}

func (s *Server) handleRosterReorder(w http.ResponseWriter, r *http.Request) {
	var req RosterReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Roster.Reorder(r.Context(), req.ID, req.NewIndex); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ---- shopping list ----

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items := s.List.Items()
	if items == nil {
		items = []list.Item{}
	}
	json.NewEncoder(w).Encode(items)
}

type ListAddRequest struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Store       string  `json:"store"`
	StoreID     string  `json:"store_id"`
	Price       float64 `json:"price"`
}

func (s *Server) handleListAdd(w http.ResponseWriter, r *http.Request) {
	var req ListAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ProductID == "" || req.Store == "" {
		http.Error(w, "product_id and store are required", http.StatusBadRequest)
		return
	}
	item := s.List.Add(list.Item{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Store:       req.Store,
		StoreID:     req.StoreID,
		Price:       req.Price,
	})
	json.NewEncoder(w).Encode(item)
}

func (s *Server) handleListRemove(w http.ResponseWriter, r *http.Request) {
	s.List.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListToggle(w http.ResponseWriter, r *http.Request) {
	s.List.Toggle(r.PathValue("id"))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListClear(w http.ResponseWriter, r *http.Request) {
	s.List.Clear()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListTotal(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]float64{"total": s.List.TotalCost()})
}

// ---- route ----

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	origin, err := optionalPoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	planner := &route.Planner{
		List:   s.List,
		Roster: s.Roster,
		Stores: s.DB,
		Origin: origin,
	}
	stops, err := planner.OptimizedRoute(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stops)
}

// ---- stores & locations ----

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.DB.ListStores(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if stores == nil {
		stores = []storage.Store{}
	}
	json.NewEncoder(w).Encode(stores)
}

func (s *Server) handleStoresNear(w http.ResponseWriter, r *http.Request) {
	at, err := optionalPoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if at == nil {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	radius, _ := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	stores, err := s.Catalog.FindStoresNear(r.Context(), *at, radius)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stores)
}

type StoreSyncRequest struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius int     `json:"radius"`
}

func (s *Server) handleStoreSync(w http.ResponseWriter, r *http.Request) {
	if s.Kroger == nil {
		http.Error(w, "kroger integration not configured", http.StatusServiceUnavailable)
		return
	}
	var req StoreSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stores, err := s.Kroger.SyncLocations(r.Context(), s.DB, req.Lat, req.Lng, req.Radius)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stores": stores,
		"count":  len(stores),
	})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.DB.ListUserLocations(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if locations == nil {
		locations = []storage.UserLocation{}
	}
	json.NewEncoder(w).Encode(locations)
}

func (s *Server) handleLocationSave(w http.ResponseWriter, r *http.Request) {
	var loc storage.UserLocation
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if loc.Name == "" || loc.Address == "" {
		http.Error(w, "name and address are required", http.StatusBadRequest)
		return
	}
	id, err := s.DB.SaveUserLocation(r.Context(), loc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	loc.ID = id
	json.NewEncoder(w).Encode(loc)
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if s.Geocoder == nil {
		http.Error(w, "geocoding not configured", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}
	point, err := s.Geocoder.Geocode(r.Context(), q)
	if errors.Is(err, geo.ErrNoMatch) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(point)
}

// ---- stats ----

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

// optionalPoint reads lat/lng query params. Both present returns a
// point, both absent returns nil, anything else is an error.
func optionalPoint(r *http.Request) (*geo.Point, error) {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("bad lat parameter")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, errors.New("bad lng parameter")
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}
