package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by exact lookups when no row matches.
var ErrNotFound = errors.New("storage: not found")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS products (
  id              TEXT PRIMARY KEY,
  upc             TEXT NOT NULL UNIQUE,
  name            TEXT NOT NULL,
  brand           TEXT,
  size            TEXT,
  category        TEXT,
  image_url       TEXT,
  ingredients     TEXT,
  nutrition_facts TEXT,
  allergens       TEXT
);
CREATE TABLE IF NOT EXISTS stores (
  id             TEXT PRIMARY KEY,
  name           TEXT NOT NULL,
  address        TEXT NOT NULL,
  city           TEXT NOT NULL,
  state          TEXT NOT NULL,
  zip_code       TEXT NOT NULL,
  latitude       REAL NOT NULL,
  longitude      REAL NOT NULL,
  phone          TEXT,
  hours          TEXT,
  supported_apis TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS product_prices (
  id         INTEGER PRIMARY KEY,
  product_id TEXT NOT NULL,
  store_id   TEXT NOT NULL,
  price      REAL NOT NULL,
  sale_price REAL,
  in_stock   INTEGER NOT NULL DEFAULT 1 CHECK (in_stock IN (0,1)),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(product_id, store_id)
);
CREATE INDEX IF NOT EXISTS idx_prices_product ON product_prices(product_id);
CREATE TABLE IF NOT EXISTS user_store_roster (
  id               INTEGER PRIMARY KEY,
  store_id         TEXT NOT NULL UNIQUE,
  preference_order INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS user_locations (
  id         INTEGER PRIMARY KEY,
  name       TEXT NOT NULL,
  address    TEXT NOT NULL,
  city       TEXT,
  state      TEXT,
  zip_code   TEXT,
  latitude   REAL NOT NULL,
  longitude  REAL NOT NULL,
  is_primary INTEGER NOT NULL DEFAULT 0 CHECK (is_primary IN (0,1))
);
CREATE TABLE IF NOT EXISTS user_search_history (
  id          INTEGER PRIMARY KEY,
  product_upc TEXT NOT NULL,
  search_type TEXT NOT NULL,
  searched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ---- products ----

func (d *DB) UpsertProducts(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, p := range products {
		_, err = tx.ExecContext(ctx, `INSERT INTO products(id, upc, name, brand, size, category, image_url, ingredients, nutrition_facts, allergens)
VALUES(?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  upc = excluded.upc, name = excluded.name, brand = excluded.brand,
  size = excluded.size, category = excluded.category, image_url = excluded.image_url,
  ingredients = excluded.ingredients, nutrition_facts = excluded.nutrition_facts,
  allergens = excluded.allergens`,
			p.ID, p.UPC, p.Name, nullIfEmpty(p.Brand), nullIfEmpty(p.Size), nullIfEmpty(p.Category),
			nullIfEmpty(p.ImageURL), nullIfEmpty(p.Ingredients), nullIfEmpty(p.NutritionFacts),
			marshalStrings(p.Allergens))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const productColumns = "id, upc, name, brand, size, category, image_url, ingredients, nutrition_facts, allergens"

// SearchProducts does a case-insensitive partial match against product
// name, brand and category. Result count is bounded by limit.
func (d *DB) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+productColumns+` FROM products
WHERE lower(name) LIKE ? OR lower(coalesce(brand,'')) LIKE ? OR lower(coalesce(category,'')) LIKE ?
ORDER BY name LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) GetProductByUPC(ctx context.Context, upc string) (Product, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE upc = ?", upc)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (d *DB) GetProduct(ctx context.Context, id string) (Product, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(r rowScanner) (Product, error) {
	var p Product
	var brand, size, category, imageURL, ingredients, nutrition, allergens sql.NullString
	if err := r.Scan(&p.ID, &p.UPC, &p.Name, &brand, &size, &category, &imageURL, &ingredients, &nutrition, &allergens); err != nil {
		return Product{}, err
	}
	p.Brand = brand.String
	p.Size = size.String
	p.Category = category.String
	p.ImageURL = imageURL.String
	p.Ingredients = ingredients.String
	p.NutritionFacts = nutrition.String
	p.Allergens = unmarshalStrings(allergens.String)
	return p, nil
}

// ---- search history ----

func (d *DB) RecordSearch(ctx context.Context, upc, searchType string) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO user_search_history(product_upc, search_type) VALUES(?,?)", upc, searchType)
	return err
}

func (d *DB) ListRecentSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx,
		"SELECT product_upc, search_type, searched_at FROM user_search_history ORDER BY searched_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var at string
		if err := rows.Scan(&rec.UPC, &rec.SearchType, &at); err != nil {
			return nil, err
		}
		rec.SearchedAt = parseSQLiteTime(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ---- stores ----

func (d *DB) UpsertStores(ctx context.Context, stores []Store) error {
	if len(stores) == 0 {
		return nil
	}
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, s := range stores {
		_, err = tx.ExecContext(ctx, `INSERT INTO stores(id, name, address, city, state, zip_code, latitude, longitude, phone, hours, supported_apis)
VALUES(?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name, address = excluded.address, city = excluded.city,
  state = excluded.state, zip_code = excluded.zip_code,
  latitude = excluded.latitude, longitude = excluded.longitude,
  phone = excluded.phone, hours = excluded.hours, supported_apis = excluded.supported_apis`,
			s.ID, s.Name, s.Address, s.City, s.State, s.ZipCode, s.Latitude, s.Longitude,
			nullIfEmpty(s.Phone), nullIfEmpty(s.Hours), marshalStrings(s.SupportedAPIs))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const storeColumns = "id, name, address, city, state, zip_code, latitude, longitude, phone, hours, supported_apis"

func (d *DB) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+storeColumns+" FROM stores ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) GetStore(ctx context.Context, id string) (Store, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+storeColumns+" FROM stores WHERE id = ?", id)
	s, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Store{}, ErrNotFound
	}
	return s, err
}

func scanStore(r rowScanner) (Store, error) {
	var s Store
	var phone, hours, apis sql.NullString
	if err := r.Scan(&s.ID, &s.Name, &s.Address, &s.City, &s.State, &s.ZipCode, &s.Latitude, &s.Longitude, &phone, &hours, &apis); err != nil {
		return Store{}, err
	}
	s.Phone = phone.String
	s.Hours = hours.String
	s.SupportedAPIs = unmarshalStrings(apis.String)
	return s, nil
}

// ---- prices ----

func (d *DB) UpsertPrices(ctx context.Context, prices []PriceRow) error {
	if len(prices) == 0 {
		return nil
	}
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, p := range prices {
		var sale interface{}
		if p.SalePrice != nil {
			sale = *p.SalePrice
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO product_prices(product_id, store_id, price, sale_price, in_stock, updated_at)
VALUES(?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(product_id, store_id) DO UPDATE SET
  price = excluded.price, sale_price = excluded.sale_price,
  in_stock = excluded.in_stock, updated_at = CURRENT_TIMESTAMP`,
			p.ProductID, p.StoreID, p.Price, sale, boolToInt(p.InStock))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListPricesForProduct returns all in-stock price rows for a product,
// each joined with its store. Row order follows the insertion id so
// callers get a stable fetch order to sort on.
func (d *DB) ListPricesForProduct(ctx context.Context, productID string) ([]StorePrice, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT p.price, p.sale_price, p.in_stock, `+prefixColumns("s", storeColumns)+`
FROM product_prices p JOIN stores s ON s.id = p.store_id
WHERE p.product_id = ? AND p.in_stock = 1
ORDER BY p.id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StorePrice
	for rows.Next() {
		var sp StorePrice
		var sale sql.NullFloat64
		var inStock int
		var phone, hours, apis sql.NullString
		if err := rows.Scan(&sp.Price, &sale, &inStock,
			&sp.Store.ID, &sp.Store.Name, &sp.Store.Address, &sp.Store.City, &sp.Store.State,
			&sp.Store.ZipCode, &sp.Store.Latitude, &sp.Store.Longitude, &phone, &hours, &apis); err != nil {
			return nil, err
		}
		if sale.Valid {
			v := sale.Float64
			sp.SalePrice = &v
		}
		sp.InStock = inStock == 1
		sp.Store.Phone = phone.String
		sp.Store.Hours = hours.String
		sp.Store.SupportedAPIs = unmarshalStrings(apis.String)
		out = append(out, sp)
	}
	return out, rows.Err()
}

// ---- roster rows ----

func (d *DB) ListRoster(ctx context.Context) ([]RosterEntry, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT r.id, r.store_id, r.preference_order, `+prefixColumns("s", storeColumns)+`
FROM user_store_roster r JOIN stores s ON s.id = r.store_id
ORDER BY r.preference_order, r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterEntry
	for rows.Next() {
		var e RosterEntry
		var phone, hours, apis sql.NullString
		if err := rows.Scan(&e.ID, &e.StoreID, &e.PreferenceOrder,
			&e.Store.ID, &e.Store.Name, &e.Store.Address, &e.Store.City, &e.Store.State,
			&e.Store.ZipCode, &e.Store.Latitude, &e.Store.Longitude, &phone, &hours, &apis); err != nil {
			return nil, err
		}
		e.Store.Phone = phone.String
		e.Store.Hours = hours.String
		e.Store.SupportedAPIs = unmarshalStrings(apis.String)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) CountRoster(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_store_roster").Scan(&n)
	return n, err
}

func (d *DB) InsertRosterEntry(ctx context.Context, storeID string, order int) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO user_store_roster(store_id, preference_order) VALUES(?,?)", storeID, order)
	return err
}

func (d *DB) DeleteRosterEntry(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM user_store_roster WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) UpdateRosterOrder(ctx context.Context, id int64, order int) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE user_store_roster SET preference_order = ? WHERE id = ?", order, id)
	return err
}

func (d *DB) RosterContains(ctx context.Context, storeID string) (bool, error) {
	var n int
	err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_store_roster WHERE store_id = ?", storeID).Scan(&n)
	return n > 0, err
}

// ---- user locations ----

func (d *DB) SaveUserLocation(ctx context.Context, loc UserLocation) (int64, error) {
	res, err := d.sql.ExecContext(ctx, `INSERT INTO user_locations(name, address, city, state, zip_code, latitude, longitude, is_primary)
VALUES(?,?,?,?,?,?,?,?)`,
		loc.Name, loc.Address, nullIfEmpty(loc.City), nullIfEmpty(loc.State), nullIfEmpty(loc.ZipCode),
		loc.Latitude, loc.Longitude, boolToInt(loc.IsPrimary))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) ListUserLocations(ctx context.Context) ([]UserLocation, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT id, name, address, city, state, zip_code, latitude, longitude, is_primary
FROM user_locations ORDER BY is_primary DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserLocation
	for rows.Next() {
		var l UserLocation
		var city, state, zip sql.NullString
		var primary int
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &city, &state, &zip, &l.Latitude, &l.Longitude, &primary); err != nil {
			return nil, err
		}
		l.City = city.String
		l.State = state.String
		l.ZipCode = zip.String
		l.IsPrimary = primary == 1
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---- stats ----

func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"products", &s.Products},
		{"stores", &s.Stores},
		{"product_prices", &s.Prices},
		{"user_store_roster", &s.RosterEntries},
		{"user_locations", &s.Locations},
		{"user_search_history", &s.Searches},
	}
	for _, c := range counts {
		if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}

// ---- helpers ----

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = prefix + "." + p
	}
	return strings.Join(parts, ", ")
}

func parseSQLiteTime(s string) time.Time {
	// Parse SQLite CURRENT_TIMESTAMP format, then RFC3339.
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func marshalStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalStrings(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
