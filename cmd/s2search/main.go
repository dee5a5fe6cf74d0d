package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/airbusgeo/s2search/catalog"
	"github.com/airbusgeo/s2search/catalog/entities"
	"github.com/airbusgeo/s2search/common"
	"github.com/airbusgeo/s2search/service/geometry"
	"github.com/airbusgeo/s2search/service/log"
	"github.com/caarlos0/env/v10"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

// envConfig holds the settings that can be given by environment variables
type envConfig struct {
	ScihubURL      string `env:"SCIHUB_URL" envDefault:"https://scihub.copernicus.eu/dhus/search"`
	ScihubUsername string `env:"SCIHUB_USERNAME"`
	ScihubPassword string `env:"SCIHUB_PASSWORD"`
}

type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ";")
}

func (s *stringsFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type config struct {
	ScihubURL      string
	ScihubUsername string
	ScihubPassword string
	Rows           int
	Strict         bool

	AOIs        stringsFlag
	GeoJSON     string
	Clouds      float64
	Start       string
	End         string
	Orbit       int
	Tiles       string
	ProductType string
	Page        int
	Limit       int
	Format      string

	Serve bool
	Addr  string
}

func newAppConfig() (*config, error) {
	envCfg := envConfig{}
	if err := env.Parse(&envCfg); err != nil {
		return nil, fmt.Errorf("newAppConfig.env: %w", err)
	}

	config := config{}
	flag.StringVar(&config.ScihubURL, "scihub-url", envCfg.ScihubURL, "search endpoint of the scihub catalog service (env: SCIHUB_URL)")
	flag.StringVar(&config.ScihubUsername, "scihub-username", envCfg.ScihubUsername, "username to connect to the scihub catalog service (env: SCIHUB_USERNAME)")
	flag.StringVar(&config.ScihubPassword, "scihub-password", envCfg.ScihubPassword, "password to connect to the scihub catalog service (env: SCIHUB_PASSWORD)")
	flag.IntVar(&config.Rows, "rows", catalog.DefaultRows, "size of the pages requested to the catalog")
	flag.BoolVar(&config.Strict, "strict", false, "fail if the catalog does not answer 200 (instead of returning no product)")

	flag.Var(&config.AOIs, "aoi", "WKT of the area of interest (can be repeated: the union is searched)")
	flag.StringVar(&config.GeoJSON, "geojson", "", "geojson file of the area of interest (merged with -aoi)")
	flag.Float64Var(&config.Clouds, "clouds", 0, "maximum cloud cover percentage (0: no filter)")
	flag.StringVar(&config.Start, "start", "", "first day of the sensing window")
	flag.StringVar(&config.End, "end", "", "last day of the sensing window")
	flag.IntVar(&config.Orbit, "orbit", 0, "relative orbit number (optional)")
	flag.StringVar(&config.Tiles, "tiles", "", "comma-separated list of MGRS tiles to keep (optional)")
	flag.StringVar(&config.ProductType, "type", "", "product type (e.g. S2MSI1C, S2MSI2A) (optional)")
	flag.IntVar(&config.Page, "page", 0, "page of results (starts at 0)")
	flag.IntVar(&config.Limit, "limit", 0, "number of results per page (default: rows)")
	flag.StringVar(&config.Format, "format", "", "print one line per product, replacing {SCENE}, {DATE}, {TILE}... (default: json)")

	flag.BoolVar(&config.Serve, "serve", false, "start the http server")
	flag.StringVar(&config.Addr, "addr", ":8080", "address of the http server")
	flag.Parse()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("newAppConfig: %w", err)
	}
	return &config, nil
}

func (c *config) validate() error {
	if c.ScihubURL == "" {
		return fmt.Errorf("missing scihub-url")
	}
	if !(c.Clouds >= 0 && c.Clouds <= 100) {
		return fmt.Errorf("clouds must be in [0, 100]: %v", c.Clouds)
	}
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := run(ctx)
	if err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	config, err := newAppConfig()
	if err != nil {
		return err
	}

	c := catalog.Catalog{
		URL:      config.ScihubURL,
		Username: config.ScihubUsername,
		Password: config.ScihubPassword,
		Rows:     config.Rows,
		Strict:   config.Strict,
	}

	if !config.Serve {
		return search(ctx, &c, config, os.Stdout)
	}

	// HTTP Server
	c.Metrics = catalog.NewMetrics()
	s := http.Server{
		Addr:    config.Addr,
		Handler: handlers.CombinedLoggingHandler(os.Stdout, c.NewHandler()),
	}

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger(ctx).Fatal("catalog.ListenAndServe", zap.Error(err))
		}
	}()
	log.Logger(ctx).Sugar().Infof("Listening on %s", config.Addr)

	<-ctx.Done()
	sctx, cncl := context.WithTimeout(context.Background(), 30*time.Second)
	defer cncl()
	return s.Shutdown(sctx)
}

func areaOfInterest(config *config) (*geometry.Polygon, error) {
	wkts := append([]string{}, config.AOIs...)
	if config.GeoJSON != "" {
		data, err := os.ReadFile(config.GeoJSON)
		if err != nil {
			return nil, fmt.Errorf("areaOfInterest.ReadFile: %w", err)
		}
		p, err := geometry.FromGeoJSON(data)
		if err != nil {
			return nil, fmt.Errorf("areaOfInterest.%w", err)
		}
		wkt, err := p.WKT()
		if err != nil {
			return nil, fmt.Errorf("areaOfInterest.%w", err)
		}
		wkts = append(wkts, wkt)
	}
	switch len(wkts) {
	case 0:
		return nil, nil
	case 1:
		return geometry.FromWKT(wkts[0])
	}
	return geometry.WKTUnion(wkts, geometry.TOLERANCE_GEOG)
}

func search(ctx context.Context, c *catalog.Catalog, config *config, w io.Writer) error {
	criteria, err := c.NewCriteria()
	if err != nil {
		return err
	}
	aoi, err := areaOfInterest(config)
	if err != nil {
		return err
	}
	criteria.SetAreaOfInterest(aoi)
	if config.Clouds > 0 {
		criteria.SetClouds(config.Clouds)
	}
	criteria.SetSensingStart(config.Start)
	criteria.SetSensingEnd(config.End)
	criteria.SetOrbit(config.Orbit)
	if config.Tiles != "" {
		criteria.SetTiles(entities.ParseTiles(config.Tiles))
	}
	req := catalog.InventoryRequest{SearchCriteria: criteria, Page: config.Page, Limit: config.Limit}
	if config.ProductType != "" {
		req.Parameters = map[string]string{common.KeyProductType: config.ProductType}
	}

	products, err := c.ProductsInventory(ctx, req)
	if err != nil {
		return err
	}

	if config.Format == "" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.ProductsResponse{Products: products})
	}
	for _, p := range products {
		info, err := common.Info(p.Name)
		if err != nil {
			log.Logger(ctx).Sugar().Debugf("%s: %v", p.Name, err)
			info = map[string]string{"SCENE": p.Name}
		}
		fmt.Fprintln(w, common.FormatBrackets(config.Format, info, map[string]string{"ID": p.ID}))
	}
	return nil
}
