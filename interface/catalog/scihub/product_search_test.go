package scihub_test

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/airbusgeo/s2search/common"
	"github.com/airbusgeo/s2search/interface/catalog/scihub"
	"github.com/airbusgeo/s2search/service"
	"github.com/airbusgeo/s2search/service/geometry"
	"github.com/go-spatial/geom"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func feedEntry(id, name string, clouds float64) string {
	return fmt.Sprintf(`<entry>
<title>%s</title>
<id>%s</id>
<date name="beginposition">2019-08-25T10:20:31.024Z</date>
<double name="cloudcoverpercentage">%v</double>
<str name="platformname">Sentinel-2</str>
</entry>
`, name, id, clouds)
}

func feed(entries ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?><feed xmlns="http://www.w3.org/2005/Atom">
<title>Sentinels Scientific Data Hub search results</title>
<id>https://scihub.copernicus.eu/dhus/search</id>
` + strings.Join(entries, "") + "</feed>\n"
}

func jaggedPolygon(n int) *geometry.Polygon {
	ring := make([][2]float64, n)
	for i := range ring {
		ring[i] = [2]float64{129 + float64(i%7)/10, -12 + float64(i%11)/10}
	}
	p, err := geometry.NewPolygon(geom.Polygon{ring})
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("ProductSearch", func() {
	var search *scihub.ProductSearch
	var err error

	lowID, lowName := "8d2a4b6c-1f3e-4a5b-9c7d-0e1f2a3b4c5d", "S2B_MSIL1C_20190825T102029_N0208_R065_T32TLR_20190825T123613"
	highID, highName := "2b3c4d5e-6f70-4819-8a2b-3c4d5e6f7081", "S2B_MSIL1C_20190825T102029_N0208_R065_T32TLQ_20190825T123613"

	BeforeEach(func() {
		mockCatalog.Status = http.StatusOK
		mockCatalog.Feed = feed(feedEntry(lowID, lowName, 10), feedEntry(highID, highName, 90))
		mockCatalog.Requests = nil
		search, err = scihub.NewProductSearch(server.URL)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with a cloud ceiling", func() {
		It("should only return the products under the ceiling", func() {
			search.SetClouds(50)
			products, err := search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(1))
			Expect(products[0].ID).To(Equal(lowID))
			Expect(products[0].Name).To(Equal(lowName))
			Expect(products[0].Tile()).To(Equal("32TLR"))
			Expect(search.Skipped()).To(Equal(1))
			Expect(search.Status()).To(Equal(common.StatusOK))
		})
	})

	Context("without cloud ceiling", func() {
		It("should return all the products", func() {
			products, err := search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(2))
			Expect(search.Skipped()).To(Equal(0))
		})
	})

	Context("with pagination", func() {
		It("should send rows and start before q", func() {
			_, err = search.Limit(100).Start(200).Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockCatalog.Requests).To(HaveLen(1))
			Expect(mockCatalog.Requests[0].RawQuery).To(HavePrefix("rows=100&start=200&q="))
			Expect(mockCatalog.Requests[0].RawQuery).NotTo(ContainSubstring("+"))
		})
	})

	Context("with an area of interest", func() {
		It("should filter on the exact outline of a small polygon", func() {
			aoi := jaggedPolygon(20)
			wkt, err := aoi.WKT()
			Expect(err).NotTo(HaveOccurred())
			search.SetPolygon(aoi)
			_, err = search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockCatalog.Requests[0].Query().Get("q")).To(HaveSuffix(` AND footprint:"Intersects(` + wkt + `)"`))
		})

		It("should filter on the bounding box of a large polygon", func() {
			aoi := jaggedPolygon(scihub.MaxExactPolygonPoints)
			wkt, err := aoi.BoundsWKT()
			Expect(err).NotTo(HaveOccurred())
			search.SetPolygon(aoi)
			_, err = search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockCatalog.Requests[0].Query().Get("q")).To(HaveSuffix(` AND footprint:"Intersects(` + wkt + `)"`))
		})

		It("should not filter on an empty polygon", func() {
			search.SetPolygon(&geometry.Polygon{})
			_, err = search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockCatalog.Requests[0].Query().Get("q")).To(Equal("platformName:Sentinel-2"))
		})
	})

	Context("when the credentials are rejected", func() {
		BeforeEach(func() {
			mockCatalog.Status = http.StatusUnauthorized
		})

		It("should return no product", func() {
			products, err := search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(products).NotTo(BeNil())
			Expect(products).To(BeEmpty())
			Expect(search.Status()).To(Equal(common.StatusUnauthorized))
		})

		It("should return ErrUnauthorized in strict mode", func() {
			_, err := search.Strict().Execute(ctx)
			Expect(err).To(MatchError(service.ErrUnauthorized))
		})
	})

	Context("when executed twice", func() {
		It("should return ErrConsumed", func() {
			_, err = search.Execute(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = search.Execute(ctx)
			Expect(err).To(MatchError(scihub.ErrConsumed))
			Expect(mockCatalog.Requests).To(HaveLen(1))
		})
	})
})
