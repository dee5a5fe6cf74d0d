package geometry

import (
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	geomwkt "github.com/go-spatial/geom/encoding/wkt"
	"github.com/paulsmith/gogeos/geos"
)

// Polygon is an area of interest (Polygon or MultiPolygon)
// The zero value is an empty polygon.
type Polygon struct {
	g geom.Geometry
}

// NewPolygon wraps a geom.Polygon or a geom.MultiPolygon
func NewPolygon(g geom.Geometry) (*Polygon, error) {
	switch g.(type) {
	case geom.Polygon, geom.MultiPolygon, nil:
		return &Polygon{g: g}, nil
	}
	return nil, fmt.Errorf("NewPolygon: unsupported geometry type %T", g)
}

// FromWKT decodes a POLYGON or a MULTIPOLYGON
func FromWKT(wkt string) (*Polygon, error) {
	g, err := geomwkt.DecodeString(wkt)
	if err != nil {
		return nil, fmt.Errorf("FromWKT.DecodeString: %w", err)
	}
	p, err := NewPolygon(g)
	if err != nil {
		return nil, fmt.Errorf("FromWKT.%w", err)
	}
	return p, nil
}

// FromGeoJSON decodes a geojson geometry, feature or featureCollection (merged into a multipolygon)
func FromGeoJSON(data []byte) (*Polygon, error) {
	g, err := UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("FromGeoJSON.%w", err)
	}
	p, err := NewPolygon(g)
	if err != nil {
		return nil, fmt.Errorf("FromGeoJSON.%w", err)
	}
	return p, nil
}

// Geometry returns the underlying geometry
func (p *Polygon) Geometry() geom.Geometry {
	return p.g
}

func (p *Polygon) rings() [][][2]float64 {
	if p == nil {
		return nil
	}
	switch g := p.g.(type) {
	case geom.Polygon:
		return g
	case geom.MultiPolygon:
		var rings [][][2]float64
		for _, poly := range g {
			rings = append(rings, poly...)
		}
		return rings
	}
	return nil
}

// NumPoints returns the number of vertices of all the rings
func (p *Polygon) NumPoints() int {
	n := 0
	for _, ring := range p.rings() {
		n += len(ring)
	}
	return n
}

// IsEmpty returns true if the polygon has no vertex
func (p *Polygon) IsEmpty() bool {
	return p.NumPoints() == 0
}

// WKT returns the exact outline
func (p *Polygon) WKT() (string, error) {
	if p.IsEmpty() {
		return "", fmt.Errorf("WKT: empty polygon")
	}
	wkt, err := geomwkt.EncodeString(p.g)
	if err != nil {
		return "", fmt.Errorf("WKT.EncodeString: %w", err)
	}
	return wkt, nil
}

// Bounds returns the bounding box [minx, miny, maxx, maxy]
func (p *Polygon) Bounds() [4]float64 {
	b := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, ring := range p.rings() {
		for _, pt := range ring {
			b[0] = math.Min(b[0], pt[0])
			b[1] = math.Min(b[1], pt[1])
			b[2] = math.Max(b[2], pt[0])
			b[3] = math.Max(b[3], pt[1])
		}
	}
	return b
}

// BoundsWKT returns the bounding box as a WKT polygon
func (p *Polygon) BoundsWKT() (string, error) {
	if p.IsEmpty() {
		return "", fmt.Errorf("BoundsWKT: empty polygon")
	}
	b := p.Bounds()
	bbox := geom.Polygon{{
		{b[0], b[1]}, {b[2], b[1]}, {b[2], b[3]}, {b[0], b[3]}, {b[0], b[1]},
	}}
	wkt, err := geomwkt.EncodeString(bbox)
	if err != nil {
		return "", fmt.Errorf("BoundsWKT.EncodeString: %w", err)
	}
	return wkt, nil
}

// UnmarshalGeometry, merging featureCollections and geometryCollections into a multipolygon
func UnmarshalGeometry(data []byte) (_ geom.Geometry, err error) {
	var g geojson.Geometry
	if err := g.UnmarshalJSON(data); err != nil {
		return g.Geometry, err
	}
	switch geo := g.Geometry.(type) {
	case geojson.FeatureCollection:
		var mp geom.MultiPolygon
		for _, f := range geo.Features {
			if err := mergeMultiPolygons(f.Geometry.Geometry, &mp); err != nil {
				return nil, err
			}
		}
		return mp, nil
	case geojson.Feature:
		return geo.Geometry.Geometry, nil
	case geom.Collection:
		var mp geom.MultiPolygon
		if err := mergeMultiPolygons(geo, &mp); err != nil {
			return nil, err
		}
		return mp, nil
	default:
		return g.Geometry, nil
	}
}

func mergeMultiPolygons(g geom.Geometry, mp *geom.MultiPolygon) error {
	switch g := g.(type) {
	case geom.MultiPolygon:
		*mp = append(*mp, g.Polygons()...)
	case geom.Polygon:
		*mp = append(*mp, g.LinearRings())
	case geom.Collection:
		for _, g := range g.Geometries() {
			if err := mergeMultiPolygons(g, mp); err != nil {
				return err
			}
		}
	}
	return nil
}

var TOLERANCE_GEOG = 0.000001

// WKTUnion merges several areas of interest into one polygon
func WKTUnion(wkts []string, tolerance float64) (*Polygon, error) {
	var geoms []*geos.Geometry
	for _, wkt := range wkts {
		geo, err := geos.FromWKT(wkt)
		if err != nil {
			return nil, fmt.Errorf("WKTUnion.FromWKT: %w", err)
		}
		geoms = append(geoms, geo)
	}
	aoi, err := Union(geoms, tolerance)
	if err != nil {
		return nil, fmt.Errorf("WKTUnion.%w", err)
	}
	wkt, err := aoi.ToWKT()
	if err != nil {
		return nil, fmt.Errorf("WKTUnion.ToWKT: %w", err)
	}
	p, err := FromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("WKTUnion.%w", err)
	}
	return p, nil
}

func Union(geoms []*geos.Geometry, tolerance float64) (*geos.Geometry, error) {
	aoi, err := UnaryUnion(geoms)
	if err == nil {
		if aoi, err = aoi.Simplify(tolerance); err != nil {
			return nil, fmt.Errorf("Union.Simplify: %w", err)
		}
		return aoi, nil
	}
	if len(geoms) == 0 {
		return nil, fmt.Errorf("Union: no geometry")
	}
	// Union all failed, retry one by one with simplify
	if aoi, err = geoms[0].Simplify(tolerance); err != nil {
		return nil, fmt.Errorf("Union.Simplify: %w", err)
	}
	for _, geom := range geoms[1:] {
		if geom, err = geom.Simplify(tolerance); err != nil {
			return nil, fmt.Errorf("Union.Simplify: %w", err)
		}
		if aoi, err = geom.Union(aoi); err != nil {
			return nil, fmt.Errorf("Union: %w", err)
		}
	}
	return aoi, nil
}

func UnaryUnion(geoms []*geos.Geometry) (*geos.Geometry, error) {
	aoi, err := geos.NewCollection(geos.MULTIPOLYGON, geoms...)
	if err != nil {
		return nil, fmt.Errorf("UnaryUnion.NewCollection: %w", err)
	}
	if aoi, err = aoi.UnaryUnion(); err != nil {
		return nil, fmt.Errorf("UnaryUnion.UnaryUnion: %w", err)
	}
	return aoi, nil
}
