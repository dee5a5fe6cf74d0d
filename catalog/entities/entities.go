package entities

import (
	"fmt"
	"math"
	neturl "net/url"
	"strings"
	"time"

	"github.com/airbusgeo/s2search/common"
	"github.com/airbusgeo/s2search/service"
	"github.com/airbusgeo/s2search/service/geometry"
)

// NoCloudFilter is the cloud ceiling of a SearchCriteria that accepts all products
const NoCloudFilter = math.MaxFloat64

// ProductDescriptor is a product found in the catalog
type ProductDescriptor struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	CloudsPercentage float64 `json:"clouds"`
}

func (p ProductDescriptor) String() string {
	return p.Name
}

// Tile returns the MGRS tile of the product, or an empty string if the name does not carry one
func (p ProductDescriptor) Tile() string {
	tile, _ := common.GetTileFromProductId(p.Name)
	return tile
}

// Date returns the sensing date of the product (parsed from its name)
func (p ProductDescriptor) Date() (time.Time, error) {
	return common.GetDateFromProductId(p.Name)
}

// SearchCriteria holds the filters shared by all the catalog searches
// A SearchCriteria is not consumed by a search and can be reused.
type SearchCriteria struct {
	URL           *neturl.URL
	AOI           *geometry.Polygon
	CloudFilter   float64
	SensingStart  string
	SensingEnd    string
	RelativeOrbit int
	Tiles         service.StringSet
}

// NewSearchCriteria returns a SearchCriteria targeting url, without any filter
func NewSearchCriteria(url string) (SearchCriteria, error) {
	u, err := neturl.ParseRequestURI(url)
	if err != nil {
		return SearchCriteria{}, fmt.Errorf("NewSearchCriteria: %w", err)
	}
	return SearchCriteria{URL: u, CloudFilter: NoCloudFilter}, nil
}

func (s *SearchCriteria) SetAreaOfInterest(polygon *geometry.Polygon) {
	s.AOI = polygon
}

func (s *SearchCriteria) SetClouds(clouds float64) {
	s.CloudFilter = clouds
}

func (s *SearchCriteria) SetSensingStart(sensingStart string) {
	s.SensingStart = sensingStart
}

func (s *SearchCriteria) SetSensingEnd(sensingEnd string) {
	s.SensingEnd = sensingEnd
}

func (s *SearchCriteria) SetOrbit(orbit int) {
	s.RelativeOrbit = orbit
}

func (s *SearchCriteria) SetTiles(tiles service.StringSet) {
	s.Tiles = tiles
}

// ParseTiles parses a comma-separated list of MGRS tiles, with or without the leading T (T32TLQ or 32TLQ)
func ParseTiles(tiles string) service.StringSet {
	set := service.NewStringSet()
	for _, tile := range strings.Split(tiles, ",") {
		if tile = strings.TrimPrefix(strings.TrimSpace(tile), "T"); tile != "" {
			set.Push(tile)
		}
	}
	return set
}

func (s *SearchCriteria) GetTiles() service.StringSet {
	return s.Tiles
}
