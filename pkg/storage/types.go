package storage

import "time"

// Product is immutable catalog reference data, owned by the external
// sync process (see pkg/kroger).
type Product struct {
	ID       string
	UPC      string
	Name     string
	Brand    string
	Size     string
	Category string
	ImageURL string

	// Optional metadata, present only for some products.
	Ingredients    string
	NutritionFacts string // raw JSON blob
	Allergens      []string
}

// Store is reference data for a physical store location.
type Store struct {
	ID        string
	Name      string
	Address   string
	City      string
	State     string
	ZipCode   string
	Latitude  float64
	Longitude float64
	Phone         string
	Hours         string // raw JSON blob
	SupportedAPIs []string
}

// PriceRow is one store's price for one product.
type PriceRow struct {
	ProductID string
	StoreID   string
	Price     float64
	SalePrice *float64
	InStock   bool
}

// StorePrice is a price row joined with its store, as fetched for a
// single product lookup. Never persisted by callers.
type StorePrice struct {
	Store     Store
	Price     float64
	SalePrice *float64
	InStock   bool
}

// RosterEntry is one store in the user's ordered preference list.
// Lower PreferenceOrder means more preferred.
type RosterEntry struct {
	ID              int64
	StoreID         string
	PreferenceOrder int
	Store           Store
}

// UserLocation is a saved named location (home, work, ...).
type UserLocation struct {
	ID        int64
	Name      string
	Address   string
	City      string
	State     string
	ZipCode   string
	Latitude  float64
	Longitude float64
	IsPrimary bool
}

// SearchRecord is one entry of the user's lookup history.
type SearchRecord struct {
	UPC        string
	SearchType string // "text" | "barcode"
	SearchedAt time.Time
}

// Stats holds row counts for the db stats command.
type Stats struct {
	Products      int
	Stores        int
	Prices        int
	RosterEntries int
	Locations     int
	Searches      int
}
