// Package kroger talks to the Kroger public API: client-credentials
// OAuth against the certification environment, product search, and
// location search. It is the app's external catalog source.
package kroger

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"shoproute/pkg/storage"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// Certification environment endpoints; production access needs a
	// separate agreement with Kroger.
	tokenEndpoint     = "https://api-ce.kroger.com/v1/connect/oauth2/token"
	productsEndpoint  = "https://api-ce.kroger.com/v1/products"
	locationsEndpoint = "https://api-ce.kroger.com/v1/locations"

	tokenScope = "product.compact"

	// IDPrefix namespaces Kroger ids in the local stores/products
	// tables: "kroger-" + external id.
	IDPrefix = "kroger-"
)

// Client holds credentials and a cached bearer token.
type Client struct {
	clientID     string
	clientSecret string
	log          *logrus.Logger
	http         *retryablehttp.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(clientID, clientSecret string, log *logrus.Logger) *Client {
	c := retryablehttp.NewClient()
	c.Logger = stdlog.New(io.Discard, "", 0)
	c.RetryMax = 3
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log,
		http:         c,
	}
}

// accessToken returns a cached token, exchanging credentials for a new
// one when the cache is empty or within a minute of expiring.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.token, nil
	}
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("kroger: API credentials not configured")
	}

	form := "grant_type=client_credentials&scope=" + tokenScope
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		desc := gjson.GetBytes(body, "error_description").Str
		if desc == "" {
			desc = gjson.GetBytes(body, "error").Str
		}
		if desc == "" {
			desc = string(body)
		}
		return "", fmt.Errorf("kroger: authentication failed with status %d: %s", resp.StatusCode, desc)
	}

	c.token = gjson.GetBytes(body, "access_token").Str
	expiresIn := gjson.GetBytes(body, "expires_in").Int()
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	if c.token == "" {
		return "", fmt.Errorf("kroger: token response had no access_token")
	}
	return c.token, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kroger: API error %d for %s", resp.StatusCode, rawURL)
	}
	return body, nil
}

// FoundProduct is a product as returned by the Kroger search, already
// mapped to catalog shape plus the price fields valid for the queried
// location.
type FoundProduct struct {
	Product   storage.Product
	Price     *float64
	SalePrice *float64
}

// SearchProducts runs a term search, optionally scoped to a location so
// results carry prices. At most 20 results are returned.
func (c *Client) SearchProducts(ctx context.Context, query, locationID string) ([]FoundProduct, error) {
	q := url.Values{}
	q.Set("filter.term", query)
	q.Set("filter.limit", "20")
	if locationID != "" {
		q.Set("filter.locationId", locationID)
	}

	body, err := c.get(ctx, productsEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var out []FoundProduct
	gjson.GetBytes(body, "data").ForEach(func(_, p gjson.Result) bool {
		externalID := p.Get("productId").Str
		if externalID == "" {
			return true
		}
		upc := p.Get("upc").Str
		if upc == "" {
			upc = externalID
		}
		name := p.Get("description").Str
		if name == "" {
			name = p.Get("brand").Str
		}
		if name == "" {
			name = "Unknown Product"
		}

		fp := FoundProduct{
			Product: storage.Product{
				ID:       IDPrefix + externalID,
				UPC:      upc,
				Name:     name,
				Brand:    p.Get("brand").Str,
				Size:     p.Get("items.0.size").Str,
				Category: p.Get("categories.0").Str,
				ImageURL: productImageURL(p),
			},
		}
		if v := p.Get("items.0.price.regular"); v.Exists() && v.Float() > 0 {
			price := v.Float()
			fp.Price = &price
		}
		if v := p.Get("items.0.price.promo"); v.Exists() && v.Float() > 0 {
			promo := v.Float()
			fp.SalePrice = &promo
		}
		out = append(out, fp)
		return true
	})
	return out, nil
}

// productImageURL prefers a large or medium rendition of the first
// image, falling back to whatever size exists.
func productImageURL(p gjson.Result) string {
	sizes := p.Get("images.0.sizes")
	var fallback string
	for _, s := range sizes.Array() {
		if fallback == "" {
			fallback = s.Get("url").Str
		}
		name := s.Get("size").Str
		if name == "large" || name == "medium" {
			return s.Get("url").Str
		}
	}
	return fallback
}

// SearchLocations finds Kroger stores around a coordinate, mapped to
// local store shape.
func (c *Client) SearchLocations(ctx context.Context, lat, lng float64, radiusMiles int) ([]storage.Store, error) {
	if radiusMiles <= 0 {
		radiusMiles = 25
	}
	q := url.Values{}
	q.Set("filter.lat.near", formatCoord(lat))
	q.Set("filter.lon.near", formatCoord(lng))
	q.Set("filter.radiusInMiles", strconv.Itoa(radiusMiles))
	q.Set("filter.limit", "50")

	body, err := c.get(ctx, locationsEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var out []storage.Store
	gjson.GetBytes(body, "data").ForEach(func(_, loc gjson.Result) bool {
		id := loc.Get("locationId").Str
		if id == "" {
			return true
		}
		hours := ""
		if h := loc.Get("hours"); h.Exists() {
			hours = h.Raw
		}
		out = append(out, storage.Store{
			ID:            IDPrefix + id,
			Name:          CleanStoreName(loc.Get("name").Str),
			Address:       loc.Get("address.addressLine1").Str,
			City:          loc.Get("address.city").Str,
			State:         loc.Get("address.state").Str,
			ZipCode:       loc.Get("address.zipCode").Str,
			Latitude:      loc.Get("geolocation.latitude").Float(),
			Longitude:     loc.Get("geolocation.longitude").Float(),
			Phone:         loc.Get("phone").Str,
			Hours:         hours,
			SupportedAPIs: []string{"kroger_api"},
		})
		return true
	})
	return out, nil
}

// CleanStoreName strips a duplicated "Kroger " prefix ("Kroger Ralphs"
// becomes "Ralphs") while leaving "Kroger - Downtown" style names
// alone.
func CleanStoreName(name string) string {
	if !strings.HasPrefix(name, "Kroger ") || strings.HasPrefix(name, "Kroger -") {
		return name
	}
	rest := name[len("Kroger "):]
	if strings.HasPrefix(rest, "-") || strings.TrimSpace(rest) == "" {
		return name
	}
	return rest
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
