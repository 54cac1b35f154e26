package cmd

import (
	"fmt"
	"path/filepath"

	"shoproute/internal/utils"
	"shoproute/pkg/catalog"
	"shoproute/pkg/geo"
	"shoproute/pkg/kroger"
	"shoproute/pkg/list"
	"shoproute/pkg/roster"
	"shoproute/pkg/storage"

	"github.com/spf13/viper"
)

// session bundles the service objects every command works with. Each
// owns its state explicitly; commands construct one session per run.
type session struct {
	DB      *storage.DB
	Catalog *catalog.Service
	Roster  *roster.Service
	List    *list.Store
}

func openSession() (*session, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open database at %s: %w", path, err)
	}

	dir, err := dataDir()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &session{
		DB:      db,
		Catalog: catalog.New(db, utils.Log),
		Roster:  roster.New(db, utils.Log),
		List:    list.Open(filepath.Join(dir, list.FileName), utils.Log),
	}, nil
}

func (s *session) Close() {
	s.DB.Close()
}

// krogerClient builds the Kroger API client from configured
// credentials, or reports that the integration is unconfigured.
func krogerClient() (*kroger.Client, error) {
	id := viper.GetString("kroger.client_id")
	secret := viper.GetString("kroger.client_secret")
	if id == "" || secret == "" {
		return nil, fmt.Errorf("kroger.client_id and kroger.client_secret must be set in the config file")
	}
	return kroger.NewClient(id, secret, utils.Log), nil
}

func geocoder() *geo.Geocoder {
	return geo.NewGeocoder(viper.GetString("geocode.countrycodes"))
}
