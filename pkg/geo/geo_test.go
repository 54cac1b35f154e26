package geo

import (
	"math"
	"testing"
)

func TestDistanceSymmetric(t *testing.T) {
	a := Point{Lat: 39.7817, Lng: -89.6501} // Springfield, IL
	b := Point{Lat: 38.6270, Lng: -90.1994} // St. Louis, MO

	ab := Distance(a.Lat, a.Lng, b.Lat, b.Lng)
	ba := Distance(b.Lat, b.Lng, a.Lat, a.Lng)
	if ab != ba {
		t.Fatalf("expected symmetric distance, got %f vs %f", ab, ba)
	}
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	if d := Distance(39.7817, -89.6501, 39.7817, -89.6501); d != 0 {
		t.Fatalf("expected 0 for identical points, got %f", d)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Springfield, IL to St. Louis, MO is roughly 85 miles as the crow flies.
	d := Distance(39.7817, -89.6501, 38.6270, -90.1994)
	if d < 75 || d > 95 {
		t.Fatalf("expected ~85 miles, got %f", d)
	}
}

func TestDistancePropagatesNaN(t *testing.T) {
	if d := Distance(math.NaN(), 0, 0, 0); !math.IsNaN(d) {
		t.Fatalf("expected NaN to propagate, got %f", d)
	}
}
