// Package catalog is the read side of the product directory: text
// search, exact UPC lookup, and per-store price comparison.
package catalog

import (
	"context"
	"sort"
	"time"

	"shoproute/pkg/geo"
	"shoproute/pkg/storage"

	"github.com/sirupsen/logrus"
)

const searchLimit = 20

// PriceQuote is one store's offer for a product, optionally annotated
// with the distance from the caller's position.
type PriceQuote struct {
	Store     storage.Store
	Price     float64
	SalePrice *float64
	InStock   bool
	Distance  *float64 // miles, set only when caller coordinates were given
}

// Effective returns the price the shopper actually pays: the sale price
// when one is set, the regular price otherwise.
func (q PriceQuote) Effective() float64 {
	if q.SalePrice != nil {
		return *q.SalePrice
	}
	return q.Price
}

// Service exposes catalog reads over the backing store.
type Service struct {
	db  *storage.DB
	log *logrus.Logger
}

func New(db *storage.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// SearchProducts runs a case-insensitive partial match against product
// name, brand and category, capped at 20 results. On a backing-store
// error the caller is expected to render an empty result state.
func (s *Service) SearchProducts(ctx context.Context, text string) ([]storage.Product, error) {
	products, err := s.db.SearchProducts(ctx, text, searchLimit)
	if err != nil {
		return nil, err
	}
	s.recordSearch(text, "text")
	return products, nil
}

// GetProductByUPC does an exact barcode lookup. The lookup is recorded
// in the search history as a side effect; a history write failure never
// blocks or fails the read.
func (s *Service) GetProductByUPC(ctx context.Context, upc string) (storage.Product, error) {
	s.recordSearch(upc, "barcode")
	return s.db.GetProductByUPC(ctx, upc)
}

// GetProductPrices returns all in-stock quotes for a product, sorted
// ascending by effective price. Ties keep the fetch order (stable
// sort). When at is non-nil each quote carries the great-circle
// distance from that point to the store.
func (s *Service) GetProductPrices(ctx context.Context, productID string, at *geo.Point) ([]PriceQuote, error) {
	rows, err := s.db.ListPricesForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	quotes := make([]PriceQuote, 0, len(rows))
	for _, r := range rows {
		q := PriceQuote{
			Store:     r.Store,
			Price:     r.Price,
			SalePrice: r.SalePrice,
			InStock:   r.InStock,
		}
		if at != nil {
			d := geo.Distance(at.Lat, at.Lng, r.Store.Latitude, r.Store.Longitude)
			q.Distance = &d
		}
		quotes = append(quotes, q)
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Effective() < quotes[j].Effective()
	})
	return quotes, nil
}

// recordSearch writes the lookup to the history table, fire-and-forget.
func (s *Service) recordSearch(term, searchType string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.RecordSearch(ctx, term, searchType); err != nil {
			s.log.Debugf("could not record %s search for %q: %v", searchType, term, err)
		}
	}()
}
