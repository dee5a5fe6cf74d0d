package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/airbusgeo/s2search/catalog/entities"
	"github.com/airbusgeo/s2search/common"
	icatalog "github.com/airbusgeo/s2search/interface/catalog"
	"github.com/airbusgeo/s2search/interface/catalog/scihub"
	"github.com/araddon/dateparse"
)

// SciHubSearch searches Sentinel-2 products on a SciHub (DHuS) catalog.
// Unlike scihub.ProductSearch, it can be executed several times: each call issues a new query.
type SciHubSearch struct {
	entities.SearchCriteria
	// Parameters are additional filters (e.g. producttype: S2MSI1C)
	Parameters map[string]string
	Rows       int
	Offset     int

	Username string
	Password string
	Client   *http.Client
	// Lenient masks the protocol errors (non-200 responses) as an empty result
	Lenient bool
	Metrics *Metrics
}

var _ icatalog.ProductSearcher = (*SciHubSearch)(nil)

// NewSciHubSearch returns a search with the given criteria
func NewSciHubSearch(criteria entities.SearchCriteria) *SciHubSearch {
	return &SciHubSearch{SearchCriteria: criteria}
}

// SensingWindow returns the value of the beginPosition filter, or an empty string if start and end are empty
func SensingWindow(start, end string) (string, error) {
	if start == "" && end == "" {
		return "", nil
	}
	from, to := "*", "NOW"
	if start != "" {
		t, err := dateparse.ParseAny(start)
		if err != nil {
			return "", fmt.Errorf("SensingWindow.ParseStart: %w", err)
		}
		from = t.Format("2006-01-02") + "T00:00:00.000Z"
	}
	if end != "" {
		t, err := dateparse.ParseAny(end)
		if err != nil {
			return "", fmt.Errorf("SensingWindow.ParseEnd: %w", err)
		}
		to = t.Format("2006-01-02") + "T23:59:59.999Z"
	}
	return "[" + from + " TO " + to + "]", nil
}

func (s *SciHubSearch) productSearch() (*scihub.ProductSearch, error) {
	if s.URL == nil {
		return nil, fmt.Errorf("productSearch: url is not defined")
	}
	search, err := scihub.NewProductSearch(s.URL.String())
	if err != nil {
		return nil, fmt.Errorf("productSearch.%w", err)
	}

	window, err := SensingWindow(s.SensingStart, s.SensingEnd)
	if err != nil {
		return nil, fmt.Errorf("productSearch.%w", err)
	}
	search.Filter(common.KeyBeginPosition, window)
	if s.RelativeOrbit > 0 {
		search.Filter(common.KeyRelativeOrbit, strconv.Itoa(s.RelativeOrbit))
	}
	keys := make([]string, 0, len(s.Parameters))
	for k := range s.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		search.Filter(k, s.Parameters[k])
	}

	if s.CloudFilter != entities.NoCloudFilter {
		search.SetClouds(s.CloudFilter)
	}
	if s.AOI != nil {
		search.SetPolygon(s.AOI)
	}
	search.Limit(s.Rows).Start(s.Offset)
	if s.Username != "" {
		search.Auth(s.Username, s.Password)
	}
	if !s.Lenient {
		search.Strict()
	}
	return search.WithClient(s.Client), nil
}

// Query returns the url that Execute requests, without the footprint filter
func (s *SciHubSearch) Query() (string, error) {
	search, err := s.productSearch()
	if err != nil {
		return "", fmt.Errorf("SciHubSearch.Query.%w", err)
	}
	return search.Query(), nil
}

// Execute implements ProductSearcher
func (s *SciHubSearch) Execute(ctx context.Context) ([]*entities.ProductDescriptor, error) {
	search, err := s.productSearch()
	if err != nil {
		return nil, fmt.Errorf("SciHubSearch.Execute.%w", err)
	}

	start := time.Now()
	products, err := search.Execute(ctx)
	s.Metrics.observeQuery(search.Status(), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("SciHubSearch.Execute.%w", err)
	}

	tiles := s.GetTiles()
	results := make([]*entities.ProductDescriptor, 0, len(products))
	for _, p := range products {
		if len(tiles) == 0 || tiles.Exists(p.Tile()) {
			results = append(results, p)
		}
	}
	s.Metrics.observeProducts(len(results), search.Skipped()+len(products)-len(results))
	return results, nil
}
