package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/temoto/robotstxt"

	"aircheck/internal/catalog"
	"aircheck/internal/logging"
	"aircheck/internal/station"
)

const robotsRef = "robots.txt"

// lastmod appears in several upstream flavors; try the richest first.
var lastmodLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02",
}

// Discoverer walks a source's robots.txt and sitemap tree and produces the
// universe of show resources.
type Discoverer struct {
	source     station.Source
	pathFilter string
	logger     *slog.Logger
}

// New creates a discoverer. showsPath is the case-insensitive path
// fragment that keeps a sitemap or URL entry in the music-show domain.
func New(source station.Source, showsPath string, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		source:     source,
		pathFilter: strings.ToLower(strings.Trim(showsPath, "/")),
		logger:     logging.NewComponentLogger(logger, "discovery"),
	}
}

// Discover fetches robots.txt, expands every declared sitemap recursively,
// and returns the discovered resources keyed by URL. A missing robots.txt
// is fatal; a single unreadable sitemap is logged and skipped.
func (d *Discoverer) Discover(ctx context.Context) (map[string]*catalog.Resource, error) {
	body, ok, err := d.source.GetReference(ctx, robotsRef)
	if err != nil {
		return nil, station.Wrap(station.ErrDiscovery, "discovery", "fetch robots.txt", "", err)
	}
	if !ok {
		return nil, station.Wrap(station.ErrDiscovery, "discovery", "fetch robots.txt", "document absent", nil)
	}

	robots, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, station.Wrap(station.ErrDiscovery, "discovery", "parse robots.txt", "", err)
	}

	sitemaps := make([]string, 0, len(robots.Sitemaps))
	seen := make(map[string]struct{}, len(robots.Sitemaps))
	for _, declared := range robots.Sitemaps {
		resolved := d.source.Reference(strings.TrimSpace(declared))
		if resolved == "" {
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		sitemaps = append(sitemaps, resolved)
	}
	sort.Strings(sitemaps)
	if len(sitemaps) == 0 {
		return nil, station.Wrap(station.ErrDiscovery, "discovery", "parse robots.txt", "no sitemaps declared", nil)
	}

	resources := make(map[string]*catalog.Resource)
	visited := make(map[string]struct{})
	for _, sitemapURL := range sitemaps {
		d.expand(ctx, sitemapURL, visited, resources)
	}

	d.logger.Info("discovery complete",
		logging.Int("sitemaps", len(visited)),
		logging.Int("resources", len(resources)))
	return resources, nil
}

// expand walks one sitemap URL. The visited set bounds recursion to the
// number of distinct sitemap URLs: a child already visited is skipped, not
// re-expanded.
func (d *Discoverer) expand(ctx context.Context, sitemapURL string, visited map[string]struct{}, resources map[string]*catalog.Resource) {
	if _, ok := visited[sitemapURL]; ok {
		return
	}
	visited[sitemapURL] = struct{}{}

	doc, err := d.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		d.logger.Warn("sitemap skipped", logging.String("url", sitemapURL), logging.Error(err))
		return
	}

	if len(doc.Sitemaps) > 0 {
		for _, child := range doc.Sitemaps {
			resolved := d.source.Reference(strings.TrimSpace(child.Loc))
			if resolved == "" || !d.matchesFilter(resolved) {
				continue
			}
			d.expand(ctx, resolved, visited, resources)
		}
		return
	}

	for _, entry := range doc.URLs {
		resource, ok := d.entryResource(sitemapURL, entry)
		if !ok {
			continue
		}
		// Last writer wins on duplicate locs across sitemaps.
		resources[resource.URL] = resource
	}
}

func (d *Discoverer) fetchSitemap(ctx context.Context, sitemapURL string) (*sitemapDoc, error) {
	body, ok, err := d.source.GetReference(ctx, d.source.RelativePath(sitemapURL))
	if err != nil {
		return nil, station.Wrap(station.ErrSitemapRead, "discovery", "fetch sitemap", sitemapURL, err)
	}
	if !ok {
		return nil, station.Wrap(station.ErrSitemapRead, "discovery", "fetch sitemap", sitemapURL+": document absent", nil)
	}
	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, station.Wrap(station.ErrSitemapRead, "discovery", "parse sitemap", sitemapURL, err)
	}
	return &doc, nil
}

func (d *Discoverer) entryResource(sitemapURL string, entry urlEntry) (*catalog.Resource, bool) {
	metadata := make(map[string]string, len(entry.Fields))
	var loc string
	for _, field := range entry.Fields {
		name := field.XMLName.Local
		value := strings.TrimSpace(field.Value)
		if name == "loc" {
			loc = d.source.Reference(value)
			continue
		}
		metadata[name] = value
	}
	if loc == "" || !d.matchesFilter(loc) {
		return nil, false
	}

	resource := &catalog.Resource{
		URL:      loc,
		Source:   sitemapURL,
		Metadata: metadata,
	}
	if raw, ok := metadata["lastmod"]; ok {
		if parsed, err := parseLastmod(raw); err == nil {
			resource.LastUpdated = &parsed
		} else {
			d.logger.Debug("unparsable lastmod", logging.String("url", loc), logging.String("lastmod", raw))
		}
	}
	return resource, true
}

func (d *Discoverer) matchesFilter(url string) bool {
	if d.pathFilter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(url), d.pathFilter)
}

func parseLastmod(value string) (time.Time, error) {
	for _, layout := range lastmodLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported lastmod %q", value)
}

// sitemapDoc covers both document shapes: an index (child <sitemap>
// entries) and a leaf (child <url> entries).
type sitemapDoc struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
	URLs []urlEntry `xml:"url"`
}

// urlEntry captures every child element of a <url> block verbatim so
// non-standard sitemap fields survive into resource metadata.
type urlEntry struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}
