package kroger

import (
	"context"

	"shoproute/pkg/storage"
)

// SyncLocations searches Kroger stores around a coordinate and upserts
// them into the local stores table. Returns the synced stores.
func (c *Client) SyncLocations(ctx context.Context, db *storage.DB, lat, lng float64, radiusMiles int) ([]storage.Store, error) {
	stores, err := c.SearchLocations(ctx, lat, lng, radiusMiles)
	if err != nil {
		return nil, err
	}
	if err := db.UpsertStores(ctx, stores); err != nil {
		return nil, err
	}
	c.log.Infof("synced %d Kroger locations", len(stores))
	return stores, nil
}

// SyncProducts searches Kroger products and upserts them into the local
// catalog. When locationID is given, the results carry store prices and
// those are upserted against that store as well (store id
// "kroger-<locationID>"). Returns the synced products.
func (c *Client) SyncProducts(ctx context.Context, db *storage.DB, query, locationID string) ([]storage.Product, error) {
	found, err := c.SearchProducts(ctx, query, locationID)
	if err != nil {
		return nil, err
	}

	products := make([]storage.Product, 0, len(found))
	var prices []storage.PriceRow
	for _, f := range found {
		products = append(products, f.Product)
		if locationID == "" || f.Price == nil {
			continue
		}
		prices = append(prices, storage.PriceRow{
			ProductID: f.Product.ID,
			StoreID:   IDPrefix + locationID,
			Price:     *f.Price,
			SalePrice: f.SalePrice,
			InStock:   true,
		})
	}

	if err := db.UpsertProducts(ctx, products); err != nil {
		return nil, err
	}
	if err := db.UpsertPrices(ctx, prices); err != nil {
		return nil, err
	}
	c.log.Infof("synced %d Kroger products (%d with prices)", len(products), len(prices))
	return products, nil
}
