package scihub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"

	"github.com/airbusgeo/s2search/catalog/entities"
	"github.com/airbusgeo/s2search/common"
	"github.com/airbusgeo/s2search/interface/catalog"
	"github.com/airbusgeo/s2search/service"
	"github.com/airbusgeo/s2search/service/log"
)

// DHUSQueryURL is the search endpoint of the Copernicus Open Access Hub
const DHUSQueryURL = "https://scihub.copernicus.eu/dhus/search"

// MaxExactPolygonPoints is the number of points from which the footprint filter
// uses the bounding box of the area of interest instead of its outline
const MaxExactPolygonPoints = 200

// ErrConsumed is returned when a ProductSearch is executed twice
var ErrConsumed = errors.New("product search already executed")

// Polygon is the area of interest of a ProductSearch
type Polygon interface {
	NumPoints() int
	WKT() (string, error)
	BoundsWKT() (string, error)
}

type queryParam struct {
	key, value string
}

// ProductSearch issues a query to a SciHub (DHuS) catalog for retrieving Sentinel-2 products.
//
// A ProductSearch is configured with the chained setters and used once:
// a second call to Execute returns ErrConsumed.
//
// By default, a non-200 response is logged and returns an empty list of products (as "no match").
// Use Strict to get a *service.StatusError instead. In both cases, Status reports the outcome.
type ProductSearch struct {
	url         *neturl.URL
	params      []queryParam
	filter      string
	polygon     Polygon
	cloudFilter float64
	credentials *service.Credentials
	client      *http.Client
	strict      bool

	consumed bool
	status   common.SearchStatus
	skipped  int
}

var _ catalog.ProductSearcher = (*ProductSearch)(nil)

// NewProductSearch returns a search on the catalog at url, filtered on the Sentinel-2 platform
func NewProductSearch(url string) (*ProductSearch, error) {
	u, err := neturl.ParseRequestURI(url)
	if err != nil {
		return nil, fmt.Errorf("NewProductSearch: %w", err)
	}
	return &ProductSearch{
		url:    u,
		filter: common.KeyPlatformName + ":" + common.PlatformSentinel2,
	}, nil
}

// SetPolygon sets the area of interest. An empty polygon does not filter.
func (s *ProductSearch) SetPolygon(polygon Polygon) {
	s.polygon = polygon
}

// SetClouds sets the maximum cloud cover percentage. 0 means no filter.
func (s *ProductSearch) SetClouds(clouds float64) {
	s.cloudFilter = clouds
}

// Filter appends " AND key:value" to the query if key and value are not empty
func (s *ProductSearch) Filter(key, value string) *ProductSearch {
	if key != "" && value != "" {
		s.filter += " AND " + key + ":" + value
	}
	return s
}

// Limit sets the number of rows to return, if number > 0
func (s *ProductSearch) Limit(number int) *ProductSearch {
	if number > 0 {
		s.params = append(s.params, queryParam{common.ParamRows, strconv.Itoa(number)})
	}
	return s
}

// Start sets the index of the first row to return, if start >= 0
func (s *ProductSearch) Start(start int) *ProductSearch {
	if start >= 0 {
		s.params = append(s.params, queryParam{common.ParamStart, strconv.Itoa(start)})
	}
	return s
}

// Auth sets the credentials for the basic authentication
func (s *ProductSearch) Auth(user, pwd string) *ProductSearch {
	s.credentials = &service.Credentials{Username: user, Password: pwd}
	return s
}

// Strict makes Execute return an error when the catalog does not answer 200
func (s *ProductSearch) Strict() *ProductSearch {
	s.strict = true
	return s
}

// WithClient sets the http client used to execute the query
func (s *ProductSearch) WithClient(client *http.Client) *ProductSearch {
	s.client = client
	return s
}

// Query returns the url of the query: <endpoint>?<params>&q=<filter>
// The footprint filter is only added by Execute.
func (s *ProductSearch) Query() string {
	params := make([]string, 0, len(s.params)+1)
	for _, p := range s.params {
		params = append(params, neturl.QueryEscape(p.key)+"="+neturl.QueryEscape(p.value))
	}
	params = append(params, common.ParamQuery+"="+neturl.QueryEscape(s.filter))
	return s.url.String() + "?" + strings.ReplaceAll(strings.Join(params, "&"), "+", "%20")
}

// Status returns the outcome of Execute
func (s *ProductSearch) Status() common.SearchStatus {
	return s.status
}

// Skipped returns the number of products dropped by the cloud filter
func (s *ProductSearch) Skipped() int {
	return s.skipped
}

func (s *ProductSearch) footprint() (string, error) {
	if s.polygon == nil || s.polygon.NumPoints() == 0 {
		return "", nil
	}
	if s.polygon.NumPoints() < MaxExactPolygonPoints {
		return s.polygon.WKT()
	}
	return s.polygon.BoundsWKT()
}

// Execute queries the catalog and returns the products passing the cloud filter
func (s *ProductSearch) Execute(ctx context.Context) ([]*entities.ProductDescriptor, error) {
	if s.consumed {
		return nil, ErrConsumed
	}
	s.consumed = true

	wkt, err := s.footprint()
	if err != nil {
		return nil, fmt.Errorf("ProductSearch.Execute.%w", err)
	}
	if wkt != "" {
		s.Filter(common.KeyFootprint, `"Intersects(`+wkt+`)"`)
	}

	queryURL := s.Query()
	logger := log.Logger(ctx).Sugar()
	logger.Info(queryURL)

	resp, err := service.OpenConnection(ctx, s.client, queryURL, s.credentials)
	if err != nil {
		s.status = common.StatusFailed
		return nil, fmt.Errorf("ProductSearch.Execute.%w", err)
	}
	defer resp.Body.Close()

	results := []*entities.ProductDescriptor{}
	switch resp.StatusCode {
	case http.StatusOK:
		parser := feedParser{cloudFilter: s.cloudFilter}
		if results, err = parser.Parse(ctx, resp.Body); err != nil {
			s.status = common.StatusFailed
			return nil, fmt.Errorf("ProductSearch.Execute.%w", err)
		}
		s.skipped = parser.skipped
		s.status = common.StatusOK
	case http.StatusUnauthorized:
		s.status = common.StatusUnauthorized
		logger.Info("The supplied credentials are invalid!")
		if s.strict {
			return nil, fmt.Errorf("ProductSearch.Execute: %w", &service.StatusError{Code: resp.StatusCode, Reason: reasonPhrase(resp)})
		}
	default:
		s.status = common.StatusFailed
		logger.Infof("The request was not successful. Reason: %s", reasonPhrase(resp))
		if s.strict {
			return nil, fmt.Errorf("ProductSearch.Execute: %w", &service.StatusError{Code: resp.StatusCode, Reason: reasonPhrase(resp)})
		}
	}
	logger.Infof("Query returned %d products", len(results))
	return results, nil
}

func reasonPhrase(resp *http.Response) string {
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
