package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/airbusgeo/s2search/catalog/entities"
	icatalog "github.com/airbusgeo/s2search/interface/catalog"
	"github.com/airbusgeo/s2search/service"
	"github.com/airbusgeo/s2search/service/log"
	"golang.org/x/sync/errgroup"
)

// DefaultRows is the maximum number of rows returned by a query to the DHuS catalog
const DefaultRows = 100

const (
	// MaxPages is the maximum number of pages of the catalog requested by a ProductsInventory
	MaxPages = 10
	// MaxParallelQueries is the maximum number of queries running at the same time
	MaxParallelQueries = 4
)

// ErrWrongPagination is returned when the requested page cannot be served
var ErrWrongPagination = errors.New("wrong pagination")

// Catalog is the main class of this package
type Catalog struct {
	URL      string
	Username string
	Password string
	// Rows is the size of the pages requested to the catalog (DefaultRows if 0)
	Rows int
	// Strict returns an error when the catalog does not answer 200, instead of an empty result
	Strict  bool
	Client  *http.Client
	Metrics *Metrics
}

// InventoryRequest is a search with a client pagination (Page starts at 0)
// If Limit is 0, the first page of the catalog is returned.
type InventoryRequest struct {
	entities.SearchCriteria
	Parameters map[string]string
	Page       int
	Limit      int
}

func (c *Catalog) rows() int {
	if c.Rows > 0 {
		return c.Rows
	}
	return DefaultRows
}

// MaxLimit returns the maximum number of products of a page of ProductsInventory
func (c *Catalog) MaxLimit() int {
	return MaxPages * c.rows()
}

// CheckPagination returns ErrWrongPagination if page and limit are negative, if limit exceeds MaxLimit
// or if the index of the last product of the page overflows
func (c *Catalog) CheckPagination(page, limit int) error {
	if page < 0 || limit < 0 || limit > c.MaxLimit() {
		return fmt.Errorf("%w (page: %d, limit: %d, max limit: %d)", ErrWrongPagination, page, limit, c.MaxLimit())
	}
	if limit > 0 && page > (math.MaxInt-limit)/limit {
		return fmt.Errorf("%w (page: %d, limit: %d): too many products", ErrWrongPagination, page, limit)
	}
	return nil
}

// NewCriteria returns a SearchCriteria on the catalog url
func (c *Catalog) NewCriteria() (entities.SearchCriteria, error) {
	criteria, err := entities.NewSearchCriteria(c.URL)
	if err != nil {
		return criteria, fmt.Errorf("NewCriteria.%w", err)
	}
	return criteria, nil
}

func (c *Catalog) search(req InventoryRequest, page service.PageQueryParam) icatalog.ProductSearcher {
	s := NewSciHubSearch(req.SearchCriteria)
	s.Parameters = req.Parameters
	s.Rows = page.Limit
	s.Offset = page.Page * page.Limit
	s.Username = c.Username
	s.Password = c.Password
	s.Client = c.Client
	s.Lenient = !c.Strict
	s.Metrics = c.Metrics
	return s
}

// ProductsInventory lists the products matching the request.
// The client page is mapped on the pages of the catalog, that are queried in parallel.
// Rows are selected among the products accepted in each page of the catalog.
// The products are returned in the order of the catalog, without duplicates.
func (c *Catalog) ProductsInventory(ctx context.Context, req InventoryRequest) ([]*entities.ProductDescriptor, error) {
	if err := c.CheckPagination(req.Page, req.Limit); err != nil {
		return nil, fmt.Errorf("ProductsInventory: %w", err)
	}
	limit := req.Limit
	if limit == 0 {
		limit = c.rows()
	}
	pages := service.ComputePagesToQuery(req.Page, limit, c.rows())
	if len(pages) == 0 {
		return nil, fmt.Errorf("ProductsInventory: %w (page: %d, limit: %d)", ErrWrongPagination, req.Page, req.Limit)
	}
	log.Logger(ctx).Sugar().Debugf("Search products (page %d, limit %d) in %d page(s) of the catalog", req.Page, limit, len(pages))

	results := make([][]*entities.ProductDescriptor, len(pages))
	wg, gctx := errgroup.WithContext(ctx)
	wg.SetLimit(MaxParallelQueries)
	for i := range pages {
		wg.Go(func() error {
			products, err := c.search(req, pages[i]).Execute(gctx)
			if err != nil {
				return err
			}
			results[i] = service.QueryGetResult(&pages[i], products)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, fmt.Errorf("ProductsInventory.%w", err)
	}

	ids := service.NewStringSet()
	products := []*entities.ProductDescriptor{}
	for _, page := range results {
		for _, p := range page {
			if p.ID != "" {
				if ids.Exists(p.ID) {
					continue
				}
				ids.Push(p.ID)
			}
			products = append(products, p)
		}
	}
	log.Logger(ctx).Sugar().Infof("%d products found", len(products))
	return products, nil
}
