package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/airbusgeo/s2search/catalog/entities"
	"github.com/airbusgeo/s2search/common"
	"github.com/airbusgeo/s2search/service"
	"github.com/airbusgeo/s2search/service/geometry"
	"github.com/airbusgeo/s2search/service/log"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-Id"

// ProductsResponse is the json returned by ProductsHandler
type ProductsResponse struct {
	Products []*entities.ProductDescriptor `json:"products"`
}

func (c *Catalog) AddHandler(r *mux.Router) {
	r.HandleFunc("/catalog/products", c.ProductsHandler).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}
}

// NewHandler returns the router of the catalog, recovering from panics and tagging the logs with a request id
func (c *Catalog) NewHandler() http.Handler {
	r := mux.NewRouter()
	c.AddHandler(r)
	r.Use(requestID)
	return handlers.RecoveryHandler()(r)
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, req.WithContext(log.With(req.Context(), "request_id", id)))
	})
}

func parseInt(values map[string][]string, key string) (int, error) {
	v, ok := values[key]
	if !ok || v[0] == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v[0])
	if err != nil {
		return 0, fmt.Errorf("wrong value for '%s': %w", key, err)
	}
	return i, nil
}

func (c *Catalog) loadRequest(req *http.Request) (InventoryRequest, error) {
	criteria, err := c.NewCriteria()
	if err != nil {
		return InventoryRequest{}, err
	}
	r := InventoryRequest{SearchCriteria: criteria}
	q := req.URL.Query()

	if aoi := q.Get("aoi"); aoi != "" {
		polygon, err := geometry.FromWKT(aoi)
		if err != nil {
			return r, fmt.Errorf("wrong value for 'aoi': %w", err)
		}
		r.SetAreaOfInterest(polygon)
	}
	if clouds := q.Get("clouds"); clouds != "" {
		v, err := strconv.ParseFloat(clouds, 64)
		if err != nil || v < 0 || math.IsNaN(v) {
			return r, fmt.Errorf("wrong value for 'clouds': %s", clouds)
		}
		r.SetClouds(v)
	}
	r.SetSensingStart(q.Get("start"))
	r.SetSensingEnd(q.Get("end"))
	if _, err := SensingWindow(r.SensingStart, r.SensingEnd); err != nil {
		return r, fmt.Errorf("wrong sensing window: %w", err)
	}
	if r.RelativeOrbit, err = parseInt(q, "orbit"); err != nil {
		return r, err
	}
	if tiles := q.Get("tiles"); tiles != "" {
		r.SetTiles(entities.ParseTiles(tiles))
	}
	if productType := q.Get("type"); productType != "" {
		r.Parameters = map[string]string{common.KeyProductType: productType}
	}
	if r.Page, err = parseInt(q, "page"); err != nil {
		return r, err
	}
	if r.Limit, err = parseInt(q, "limit"); err != nil {
		return r, err
	}
	if err := c.CheckPagination(r.Page, r.Limit); err != nil {
		return r, err
	}
	return r, nil
}

// ProductsHandler lists the products matching the query parameters and returns a json
func (c *Catalog) ProductsHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	r, err := c.loadRequest(req)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "%v", err)
		return
	}

	products, err := c.ProductsInventory(ctx, r)
	if err != nil {
		log.Logger(ctx).Sugar().Warnf("catalog.ProductsHandler.%v", err)
		switch {
		case errors.Is(err, ErrWrongPagination):
			w.WriteHeader(400)
		case errors.Is(err, service.ErrUnauthorized):
			w.WriteHeader(401)
		default:
			w.WriteHeader(502)
		}
		fmt.Fprintf(w, "%v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ProductsResponse{Products: products}); err != nil {
		log.Logger(ctx).Sugar().Warnf("catalog.ProductsHandler.%v", err)
	}
}
