package scihub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/airbusgeo/s2search/common"
	"github.com/airbusgeo/s2search/service"
)

type fakePolygon struct {
	points int
}

func (p fakePolygon) NumPoints() int             { return p.points }
func (p fakePolygon) WKT() (string, error)       { return "EXACT", nil }
func (p fakePolygon) BoundsWKT() (string, error) { return "BOUNDS", nil }

// fakeCatalog records the last query and answers with status and body
type fakeCatalog struct {
	status int
	body   string
	query  string
	user   string
	pwd    string
}

func (c *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.query = r.URL.Query().Get(common.ParamQuery)
	c.user, c.pwd, _ = r.BasicAuth()
	w.WriteHeader(c.status)
	fmt.Fprint(w, c.body)
}

func newSearch(t *testing.T, url string) *ProductSearch {
	t.Helper()
	s, err := NewProductSearch(url)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewProductSearch(t *testing.T) {
	if _, err := NewProductSearch("not a url"); err == nil {
		t.Error("expected an error on an invalid url")
	}
	s := newSearch(t, DHUSQueryURL)
	if s.filter != "platformName:Sentinel-2" {
		t.Errorf("unexpected initial filter %s", s.filter)
	}
	if s.Status() != common.StatusNotExecuted {
		t.Errorf("unexpected status %s", s.Status())
	}
}

func TestFilter(t *testing.T) {
	s := newSearch(t, DHUSQueryURL)
	s.Filter("", "x").Filter("x", "")
	if s.filter != "platformName:Sentinel-2" {
		t.Errorf("empty key or value must not change the filter: %s", s.filter)
	}
	s.Filter("relativeOrbitNumber", "31")
	if s.filter != "platformName:Sentinel-2 AND relativeOrbitNumber:31" {
		t.Errorf("unexpected filter %s", s.filter)
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name     string
		build    func(s *ProductSearch)
		expected string
	}{
		{
			name:     "no parameter",
			build:    func(s *ProductSearch) {},
			expected: DHUSQueryURL + "?q=platformName%3ASentinel-2",
		},
		{
			name:     "limit and start",
			build:    func(s *ProductSearch) { s.Limit(100).Start(0) },
			expected: DHUSQueryURL + "?rows=100&start=0&q=platformName%3ASentinel-2",
		},
		{
			name:     "ignored limit and start",
			build:    func(s *ProductSearch) { s.Limit(0).Limit(-3).Start(-1) },
			expected: DHUSQueryURL + "?q=platformName%3ASentinel-2",
		},
		{
			name:     "filter with spaces and plus",
			build:    func(s *ProductSearch) { s.Filter("beginPosition", "[NOW-1DAY TO NOW]").Filter("filename", "a+b") },
			expected: DHUSQueryURL + "?q=platformName%3ASentinel-2%20AND%20beginPosition%3A%5BNOW-1DAY%20TO%20NOW%5D%20AND%20filename%3Aa%2Bb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSearch(t, DHUSQueryURL)
			tt.build(s)
			q := s.Query()
			if q != tt.expected {
				t.Errorf("expected %s\ngot      %s", tt.expected, q)
			}
			if strings.Contains(q, "+") {
				t.Errorf("query must not contain '+': %s", q)
			}
			if s.Query() != q {
				t.Error("Query must not change the search")
			}
		})
	}
}

func TestFootprint(t *testing.T) {
	tests := []struct {
		points   int
		expected string
	}{
		{0, "platformName:Sentinel-2"},
		{5, `platformName:Sentinel-2 AND footprint:"Intersects(EXACT)"`},
		{MaxExactPolygonPoints - 1, `platformName:Sentinel-2 AND footprint:"Intersects(EXACT)"`},
		{MaxExactPolygonPoints, `platformName:Sentinel-2 AND footprint:"Intersects(BOUNDS)"`},
		{1000, `platformName:Sentinel-2 AND footprint:"Intersects(BOUNDS)"`},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d points", tt.points), func(t *testing.T) {
			catalog := &fakeCatalog{status: http.StatusOK, body: feedHeader + "</feed>"}
			server := httptest.NewServer(catalog)
			defer server.Close()

			s := newSearch(t, server.URL)
			s.SetPolygon(fakePolygon{tt.points})
			before := s.Query()
			if _, err := s.Execute(context.Background()); err != nil {
				t.Fatal(err)
			}
			if catalog.query != tt.expected {
				t.Errorf("expected %s\ngot      %s", tt.expected, catalog.query)
			}
			if !strings.HasPrefix(before, server.URL+"?q=platformName%3ASentinel-2") || strings.Contains(before, "footprint") {
				t.Errorf("footprint must be added by Execute only: %s", before)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	catalog := &fakeCatalog{status: http.StatusOK, body: twoEntriesFeed()}
	server := httptest.NewServer(catalog)
	defer server.Close()

	s := newSearch(t, server.URL).Limit(10).Auth("user", "secret")
	s.SetClouds(50)
	products, err := s.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].ID != clearID || products[0].Name != clearName {
		t.Errorf("unexpected products %v", products)
	}
	if catalog.user != "user" || catalog.pwd != "secret" {
		t.Errorf("unexpected credentials %s:%s", catalog.user, catalog.pwd)
	}
	if s.Status() != common.StatusOK || s.Skipped() != 1 {
		t.Errorf("unexpected status %s (skipped: %d)", s.Status(), s.Skipped())
	}

	if _, err := s.Execute(context.Background()); !errors.Is(err, ErrConsumed) {
		t.Errorf("expected ErrConsumed, got %v", err)
	}
}

func TestExecuteNoCredentials(t *testing.T) {
	catalog := &fakeCatalog{status: http.StatusOK, body: twoEntriesFeed()}
	server := httptest.NewServer(catalog)
	defer server.Close()

	products, err := newSearch(t, server.URL).Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 products, got %d", len(products))
	}
	if catalog.user != "" {
		t.Errorf("unexpected credentials %s", catalog.user)
	}
}

func TestExecuteNotOK(t *testing.T) {
	tests := []struct {
		status       int
		searchStatus common.SearchStatus
		unauthorized bool
	}{
		{http.StatusUnauthorized, common.StatusUnauthorized, true},
		{http.StatusInternalServerError, common.StatusFailed, false},
		{http.StatusServiceUnavailable, common.StatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(&fakeCatalog{status: tt.status, body: twoEntriesFeed()})
			defer server.Close()

			// Masked
			s := newSearch(t, server.URL)
			products, err := s.Execute(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if products == nil || len(products) != 0 {
				t.Errorf("expected an empty list, got %v", products)
			}
			if s.Status() != tt.searchStatus {
				t.Errorf("expected %s, got %s", tt.searchStatus, s.Status())
			}

			// Strict
			s = newSearch(t, server.URL).Strict()
			products, err = s.Execute(context.Background())
			if err == nil || products != nil {
				t.Fatalf("expected an error, got %v", products)
			}
			var serr *service.StatusError
			if !errors.As(err, &serr) || serr.Code != tt.status {
				t.Errorf("expected a StatusError %d, got %v", tt.status, err)
			}
			if errors.Is(err, service.ErrUnauthorized) != tt.unauthorized {
				t.Errorf("unexpected ErrUnauthorized match for %v", err)
			}
			if s.Status() != tt.searchStatus {
				t.Errorf("expected %s, got %s", tt.searchStatus, s.Status())
			}
		})
	}
}

func TestExecuteUnreachable(t *testing.T) {
	server := httptest.NewServer(&fakeCatalog{status: http.StatusOK})
	url := server.URL
	server.Close()

	s := newSearch(t, url)
	if _, err := s.Execute(context.Background()); err == nil {
		t.Error("expected an error on an unreachable catalog")
	}
	if s.Status() != common.StatusFailed {
		t.Errorf("unexpected status %s", s.Status())
	}
}
