package discovery_test

import (
	"context"
	"errors"
	"testing"

	"aircheck/internal/discovery"
	"aircheck/internal/logging"
	"aircheck/internal/station"
	"aircheck/internal/testsupport"
)

const base = "https://example.org"

func newDiscoverer(src *testsupport.FakeSource) *discovery.Discoverer {
	return discovery.New(src, "music/shows", logging.NewNop())
}

func leafSitemap(entries string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + entries + `</urlset>`
}

func TestDiscoverMissingRobotsIsFatal(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	_, err := newDiscoverer(src).Discover(context.Background())
	if !errors.Is(err, station.ErrDiscovery) {
		t.Fatalf("expected discovery error, got %v", err)
	}
}

func TestDiscoverDomainFilter(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("robots.txt", "User-agent: *\nSitemap: "+base+"/sitemap.xml\n")
	src.Add("sitemap.xml", leafSitemap(`
<url><loc>`+base+`/music/shows/jazz-theater</loc><lastmod>2025-01-08</lastmod></url>
<url><loc>`+base+`/music/shows/night-drive</loc></url>
<url><loc>`+base+`/news/headlines</loc></url>
<url><loc>`+base+`/about</loc></url>`))

	resources, err := newDiscoverer(src).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 matching resources, got %d", len(resources))
	}
	jazz, ok := resources[base+"/music/shows/jazz-theater"]
	if !ok {
		t.Fatal("jazz-theater resource missing")
	}
	if jazz.LastUpdated == nil || jazz.LastUpdated.Format("2006-01-02") != "2025-01-08" {
		t.Fatalf("lastmod not parsed: %v", jazz.LastUpdated)
	}
	if jazz.Source != base+"/sitemap.xml" {
		t.Fatalf("unexpected resource source %q", jazz.Source)
	}
}

func TestDiscoverIndexCycleSafety(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("robots.txt", "Sitemap: "+base+"/music/shows/sitemap-index.xml\n")
	// Index A references B; B references A again plus a leaf. The walk
	// must terminate and not duplicate entries.
	src.Add("music/shows/sitemap-index.xml", `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>`+base+`/music/shows/sitemap-b.xml</loc></sitemap>
</sitemapindex>`)
	src.Add("music/shows/sitemap-b.xml", `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>`+base+`/music/shows/sitemap-index.xml</loc></sitemap>
<sitemap><loc>`+base+`/music/shows/sitemap-leaf.xml</loc></sitemap>
</sitemapindex>`)
	src.Add("music/shows/sitemap-leaf.xml", leafSitemap(`
<url><loc>`+base+`/music/shows/jazz-theater</loc></url>`))

	resources, err := newDiscoverer(src).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(resources))
	}
	if src.FetchCount("music/shows/sitemap-index.xml") != 1 {
		t.Fatalf("index fetched %d times, cycle not bounded", src.FetchCount("music/shows/sitemap-index.xml"))
	}
}

func TestDiscoverIndexChildrenFiltered(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("robots.txt", "Sitemap: "+base+"/sitemap-index.xml\n")
	src.Add("sitemap-index.xml", `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>`+base+`/music/shows/sitemap.xml</loc></sitemap>
<sitemap><loc>`+base+`/news/sitemap.xml</loc></sitemap>
</sitemapindex>`)
	src.Add("music/shows/sitemap.xml", leafSitemap(`
<url><loc>`+base+`/music/shows/jazz-theater</loc></url>`))
	src.Add("news/sitemap.xml", leafSitemap(`
<url><loc>`+base+`/news/story</loc></url>`))

	resources, err := newDiscoverer(src).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(resources))
	}
	if src.FetchCount("news/sitemap.xml") != 0 {
		t.Fatal("non-matching child sitemap was fetched")
	}
}

func TestDiscoverBrokenSitemapSkipped(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("robots.txt", "Sitemap: "+base+"/music/shows/good.xml\nSitemap: "+base+"/music/shows/bad.xml\n")
	src.Add("music/shows/good.xml", leafSitemap(`
<url><loc>`+base+`/music/shows/jazz-theater</loc></url>`))
	src.Add("music/shows/bad.xml", "not xml at all <<<")

	resources, err := newDiscoverer(src).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover must survive one broken sitemap: %v", err)
	}
	if len(resources) != 1 {
		t.Fatalf("expected contributions from the good sitemap only, got %d", len(resources))
	}
}

func TestDiscoverMetadataCarriedVerbatim(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("robots.txt", "Sitemap: "+base+"/sitemap.xml\n")
	src.Add("sitemap.xml", leafSitemap(`
<url>
  <loc>`+base+`/music/shows/jazz-theater</loc>
  <lastmod>2025-01-08T20:00:00Z</lastmod>
  <changefreq>weekly</changefreq>
  <priority>0.8</priority>
</url>`))

	resources, err := newDiscoverer(src).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	resource := resources[base+"/music/shows/jazz-theater"]
	if resource == nil {
		t.Fatal("resource missing")
	}
	if resource.Metadata["changefreq"] != "weekly" || resource.Metadata["priority"] != "0.8" {
		t.Fatalf("metadata not carried: %v", resource.Metadata)
	}
}
