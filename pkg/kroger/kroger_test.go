package kroger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func parse(raw string) gjson.Result {
	return gjson.Parse(raw)
}

func TestCleanStoreName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Kroger Ralphs", "Ralphs"},
		{"Kroger Fred Meyer", "Fred Meyer"},
		{"Kroger - Downtown", "Kroger - Downtown"},
		{"Kroger", "Kroger"},
		{"Kroger ", "Kroger "},
		{"Ralphs", "Ralphs"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanStoreName(c.in); got != c.want {
			t.Errorf("CleanStoreName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestProductImageURLPrefersLarge(t *testing.T) {
	// Ensures the rendition pick order without hitting the API.
	cases := []struct {
		json string
		want string
	}{
		{`{"images":[{"sizes":[{"size":"thumbnail","url":"t"},{"size":"large","url":"l"}]}]}`, "l"},
		{`{"images":[{"sizes":[{"size":"thumbnail","url":"t"},{"size":"medium","url":"m"}]}]}`, "m"},
		{`{"images":[{"sizes":[{"size":"thumbnail","url":"t"}]}]}`, "t"},
		{`{"images":[]}`, ""},
		{`{}`, ""},
	}
	for _, c := range cases {
		if got := productImageURL(parse(c.json)); got != c.want {
			t.Errorf("productImageURL(%s) = %q, want %q", c.json, got, c.want)
		}
	}
}

func TestAccessTokenRequiresCredentials(t *testing.T) {
	log := testLogger()
	c := NewClient("", "", log)
	if _, err := c.accessToken(t.Context()); err == nil {
		t.Fatal("expected an error with empty credentials")
	}
}
