package server

import (
	"net/http"

	"shoproute/internal/utils"
	"shoproute/pkg/catalog"
	"shoproute/pkg/geo"
	"shoproute/pkg/kroger"
	"shoproute/pkg/list"
	"shoproute/pkg/roster"
	"shoproute/pkg/storage"
)

// Server wires the JSON API over the session's service objects. Kroger
// and Geocoder may be nil when unconfigured; their endpoints then
// report a configuration error instead of crashing.
type Server struct {
	DB       *storage.DB
	Catalog  *catalog.Service
	Roster   *roster.Service
	List     *list.Store
	Kroger   *kroger.Client
	Geocoder *geo.Geocoder

	Username string
	Password string
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// Products
	mux.HandleFunc("GET /api/products/search", s.basicAuth(s.handleProductSearch))
	mux.HandleFunc("GET /api/products/{upc}", s.basicAuth(s.handleProductByUPC))
	mux.HandleFunc("GET /api/products/{id}/prices", s.basicAuth(s.handleProductPrices))
	mux.HandleFunc("POST /api/products/sync", s.basicAuth(s.handleProductSync))

	// Roster
	mux.HandleFunc("GET /api/roster", s.basicAuth(s.handleRosterList))
	mux.HandleFunc("POST /api/roster", s.basicAuth(s.handleRosterAdd))
	mux.HandleFunc("DELETE /api/roster/{id}", s.basicAuth(s.handleRosterRemove))
	mux.HandleFunc("POST /api/roster/reorder", s.basicAuth(s.handleRosterReorder))

	// Shopping list
	mux.HandleFunc("GET /api/list", s.basicAuth(s.handleListItems))
	mux.HandleFunc("POST /api/list", s.basicAuth(s.handleListAdd))
	mux.HandleFunc("DELETE /api/list", s.basicAuth(s.handleListClear))
	mux.HandleFunc("DELETE /api/list/{id}", s.basicAuth(s.handleListRemove))
	mux.HandleFunc("POST /api/list/{id}/toggle", s.basicAuth(s.handleListToggle))
	mux.HandleFunc("GET /api/list/total", s.basicAuth(s.handleListTotal))

	// Route
	mux.HandleFunc("GET /api/route", s.basicAuth(s.handleRoute))

	// Stores & locations
	mux.HandleFunc("GET /api/stores", s.basicAuth(s.handleStores))
	mux.HandleFunc("GET /api/stores/near", s.basicAuth(s.handleStoresNear))
	mux.HandleFunc("POST /api/stores/sync", s.basicAuth(s.handleStoreSync))
	mux.HandleFunc("GET /api/locations", s.basicAuth(s.handleLocations))
	mux.HandleFunc("POST /api/locations", s.basicAuth(s.handleLocationSave))
	mux.HandleFunc("GET /api/geocode", s.basicAuth(s.handleGeocode))

	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))

	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
