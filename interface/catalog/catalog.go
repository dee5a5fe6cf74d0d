package catalog

import (
	"context"

	"github.com/airbusgeo/s2search/catalog/entities"
)

// ProductSearcher is implemented by all the catalog searches
type ProductSearcher interface {
	// Execute returns the products matching all the criteria supported by the implementation,
	// in the order of the catalog response.
	// It returns an error (and no product) on any unrecoverable transport or protocol error.
	Execute(ctx context.Context) ([]*entities.ProductDescriptor, error)
}
