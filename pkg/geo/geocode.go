package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const nominatimEndpoint = "https://nominatim.openstreetmap.org/search"

// ErrNoMatch means the geocoding service returned zero results for the
// address, as opposed to the request itself failing.
var ErrNoMatch = errors.New("geocode: no match for address")

// Geocoder resolves free-text addresses to coordinates through the
// public Nominatim API. Results are limited to a single best match and
// can be restricted to a comma-separated country code list.
type Geocoder struct {
	CountryCodes string
	UserAgent    string

	client *retryablehttp.Client
}

func NewGeocoder(countryCodes string) *Geocoder {
	c := retryablehttp.NewClient()
	c.Logger = stdlog.New(io.Discard, "", 0)
	c.RetryMax = 3
	return &Geocoder{
		CountryCodes: countryCodes,
		UserAgent:    "shoproute (store locator)",
		client:       c,
	}
}

// Geocode returns the best-match coordinates for a free-text address.
func (g *Geocoder) Geocode(ctx context.Context, address string) (Point, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if g.CountryCodes != "" {
		q.Set("countrycodes", g.CountryCodes)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, nominatimEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Point{}, err
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Point{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Point{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return Point{}, ErrNoMatch
	}

	return Point{
		Lat: first.Get("lat").Float(),
		Lng: first.Get("lon").Float(),
	}, nil
}
