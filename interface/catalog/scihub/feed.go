package scihub

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/airbusgeo/s2search/catalog/entities"
	"github.com/airbusgeo/s2search/service/log"
)

type lineKind int

const (
	lineOther lineKind = iota
	lineEntryStart
	lineEntryEnd
	lineTitle
	lineClouds
	lineID
)

// linePredicates are tested in this order, the first match classifies the line.
// The response is not guaranteed to be well-formed XML: only the markers are looked for.
var linePredicates = []struct {
	kind   lineKind
	marker string
}{
	{lineEntryStart, "<entry>"},
	{lineEntryEnd, "</entry>"},
	{lineTitle, "<title>"},
	{lineClouds, "cloudcoverpercentage"},
	{lineID, "<id>"},
}

func classify(line string) lineKind {
	for _, p := range linePredicates {
		if strings.Contains(line, p.marker) {
			return p.kind
		}
	}
	return lineOther
}

func stripTags(line string, tags ...string) string {
	for _, tag := range tags {
		line = strings.ReplaceAll(line, tag, "")
	}
	return strings.TrimSpace(line)
}

// feedParser extracts the products of an Atom feed returned by the catalog, line by line
type feedParser struct {
	cloudFilter float64 // 0: no filter

	current *entities.ProductDescriptor
	results []*entities.ProductDescriptor
	skipped int
}

// Parse reads r until EOF. Unexpected lines are ignored.
// An entry that is not closed is dropped.
func (p *feedParser) Parse(ctx context.Context, r io.Reader) ([]*entities.ProductDescriptor, error) {
	p.results = []*entities.ProductDescriptor{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			p.parseLine(ctx, line)
		}
		if errors.Is(err, io.EOF) {
			return p.results, nil
		}
		if err != nil {
			return nil, fmt.Errorf("feedParser.Parse: %w", err)
		}
	}
}

func (p *feedParser) parseLine(ctx context.Context, line string) {
	switch classify(line) {
	case lineEntryStart:
		p.current = &entities.ProductDescriptor{}
	case lineEntryEnd:
		if p.current == nil {
			return
		}
		if p.cloudFilter == 0 || p.current.CloudsPercentage <= p.cloudFilter {
			p.results = append(p.results, p.current)
		} else {
			p.skipped++
			log.Logger(ctx).Sugar().Infof("%s skipped [clouds: %v]", p.current, p.current.CloudsPercentage)
		}
		p.current = nil
	case lineTitle:
		if p.current != nil {
			p.current.Name = stripTags(line, "<title>", "</title>")
		}
	case lineClouds:
		value := stripTags(line, `<double name="cloudcoverpercentage">`, "</double>")
		clouds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Logger(ctx).Sugar().Debugf("cannot parse cloud cover %q: %v", value, err)
			return
		}
		if p.current != nil {
			p.current.CloudsPercentage = clouds
		}
	case lineID:
		if p.current != nil {
			p.current.ID = stripTags(line, "<id>", "</id>")
		}
	}
}
