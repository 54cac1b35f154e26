package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertProductsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	p := Product{ID: "p1", UPC: "100", Name: "Milk", Allergens: []string{"milk"}}
	if err := db.UpsertProducts(ctx, []Product{p}); err != nil {
		t.Fatal(err)
	}

	p.Name = "Whole Milk"
	if err := db.UpsertProducts(ctx, []Product{p}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Whole Milk" {
		t.Fatalf("expected the second upsert to win, got %q", got.Name)
	}
	if len(got.Allergens) != 1 || got.Allergens[0] != "milk" {
		t.Fatalf("allergens did not round-trip: %v", got.Allergens)
	}

	products, err := db.SearchProducts(ctx, "milk", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 {
		t.Fatalf("upsert must not duplicate rows, got %d", len(products))
	}
}

func TestGetProductNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetProduct(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := db.GetProductByUPC(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertStoresRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	s := Store{
		ID: "kroger-1", Name: "Ralphs", Address: "1 Main St",
		City: "Springfield", State: "IL", ZipCode: "62701",
		Latitude: 39.78, Longitude: -89.65,
		Phone: "555-0100", SupportedAPIs: []string{"kroger_api"},
	}
	if err := db.UpsertStores(ctx, []Store{s}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetStore(ctx, "kroger-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != s.Name || got.Latitude != s.Latitude || got.Phone != s.Phone {
		t.Fatalf("store did not round-trip: %+v", got)
	}
	if len(got.SupportedAPIs) != 1 || got.SupportedAPIs[0] != "kroger_api" {
		t.Fatalf("supported apis did not round-trip: %v", got.SupportedAPIs)
	}

	if _, err := db.GetStore(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertPricesReplacesPerStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if err := db.UpsertStores(ctx, []Store{{ID: "s1", Name: "Mart", Address: "1 A St", City: "C", State: "IL", ZipCode: "62701"}}); err != nil {
		t.Fatal(err)
	}

	if err := db.UpsertPrices(ctx, []PriceRow{{ProductID: "p1", StoreID: "s1", Price: 2.79, InStock: true}}); err != nil {
		t.Fatal(err)
	}
	sale := 1.99
	if err := db.UpsertPrices(ctx, []PriceRow{{ProductID: "p1", StoreID: "s1", Price: 2.99, SalePrice: &sale, InStock: true}}); err != nil {
		t.Fatal(err)
	}

	prices, err := db.ListPricesForProduct(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(prices) != 1 {
		t.Fatalf("expected one price row per (product, store), got %d", len(prices))
	}
	if prices[0].Price != 2.99 || prices[0].SalePrice == nil || *prices[0].SalePrice != 1.99 {
		t.Fatalf("expected the newer quote, got %+v", prices[0])
	}
}

func TestRecentSearchesNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, upc := range []string{"100", "200", "300"} {
		if err := db.RecordSearch(ctx, upc, "barcode"); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := db.ListRecentSearches(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(recs))
	}
	if recs[0].UPC != "300" || recs[1].UPC != "200" {
		t.Fatalf("expected newest first, got %+v", recs)
	}
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.UpsertProducts(ctx, []Product{{ID: "p1", UPC: "100", Name: "Milk"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertStores(ctx, []Store{{ID: "s1", Name: "Mart", Address: "1 A St", City: "C", State: "IL", ZipCode: "62701"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertRosterEntry(ctx, "s1", 0); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Products != 1 || stats.Stores != 1 || stats.RosterEntries != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
