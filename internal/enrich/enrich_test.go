package enrich_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"aircheck/internal/catalog"
	"aircheck/internal/enrich"
	"aircheck/internal/logging"
	"aircheck/internal/station"
	"aircheck/internal/testsupport"
)

const (
	base      = "https://example.org"
	showUUID  = "22222222-2222-4222-8222-222222222222"
	hostUUID  = "11111111-1111-4111-8111-111111111111"
	epUUID    = "33333333-3333-4333-8333-333333333333"
	epTwoUUID = "33333333-3333-4333-8333-333333333334"
)

func showPage(title string, inlineEpisodeURLs ...string) string {
	return showPageAt(base+"/music/shows/jazz-theater", title, inlineEpisodeURLs...)
}

func showPageAt(canonicalURL, title string, inlineEpisodeURLs ...string) string {
	episodes := ""
	for _, url := range inlineEpisodeURLs {
		episodes += fmt.Sprintf(`{"@type":"RadioEpisode","url":%q},`, url)
	}
	if episodes != "" {
		episodes = episodes[:len(episodes)-1]
	}
	return fmt.Sprintf(`<html><head><script type="application/ld+json">
{"@graph":[{"@type":"RadioSeries","@id":"#show-%s","name":%q,
"description":"Two hours of improvisation.",
"url":%q,"genre":"jazz",
"author":{"@type":"Person","@id":"#host-%s","name":"Robin"},
"episode":[%s]}]}
</script></head><body></body></html>`, showUUID, title, canonicalURL, hostUUID, episodes)
}

func playerDoc(id, airdate, url, mediaURL string) string {
	return fmt.Sprintf(`{
"title":"Episode","airdate":%q,"url":%q,
"media":[{"url":%q}],
"uuid":"episode-%s","show_uuid":"show-%s",
"hosts":["host-%s"],"duration":7200}`, airdate, url, mediaURL, id, showUUID, hostUUID)
}

func newEnricher(src *testsupport.FakeSource, cat *catalog.Catalog, resources map[string]*catalog.Resource) *enrich.Enricher {
	return enrich.New(src, cat, resources, "music/shows", "player", logging.NewNop())
}

func TestClassify(t *testing.T) {
	cases := []struct {
		url  string
		want enrich.Kind
		ok   bool
	}{
		{base + "/music/shows/jazz-theater", enrich.KindShow, true},
		{base + "/music/shows/jazz-theater/episode-one", enrich.KindEpisode, true},
		{base + "/music/shows/jazz-theater/2025/episode-one", enrich.KindEpisode, true},
		{base + "/Music/Shows/jazz-theater", enrich.KindShow, true},
		{base + "/news/story", enrich.KindShow, false},
	}
	for _, tc := range cases {
		kind, err := enrich.Classify(tc.url, "music/shows")
		if tc.ok && err != nil {
			t.Fatalf("Classify(%s) failed: %v", tc.url, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("Classify(%s) succeeded, want error", tc.url)
			}
			continue
		}
		if kind != tc.want {
			t.Fatalf("Classify(%s) = %s, want %s", tc.url, kind, tc.want)
		}
	}
}

func TestShowURLTruncation(t *testing.T) {
	got, err := enrich.ShowURL(base+"/music/shows/jazz-theater/episode-one?session=1", "music/shows")
	if err != nil {
		t.Fatalf("ShowURL failed: %v", err)
	}
	if got != base+"/music/shows/jazz-theater" {
		t.Fatalf("unexpected show url %q", got)
	}
}

func TestEnrichShow(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	result, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: base + "/music/shows/jazz-theater", Source: "sitemap"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	show := result.Show
	if show == nil || show.Title != "Jazz Theater" {
		t.Fatalf("unexpected show %+v", show)
	}
	if show.UUID.String() != showUUID {
		t.Fatalf("unexpected uuid %s", show.UUID)
	}
	if len(show.Hosts) != 1 || show.Hosts[0].Name != "Robin" {
		t.Fatalf("host not attached: %+v", show.Hosts)
	}
	if _, ok := cat.GetHost(show.Hosts[0].UUID); !ok {
		t.Fatal("host not registered in catalog")
	}
	if result.Touched != 1 {
		t.Fatalf("expected 1 touched entity, got %d", result.Touched)
	}
}

func TestEnrichShowWithoutSeriesRecordFails(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/empty", "<html><body>no structured data</body></html>")
	enricher := newEnricher(src, catalog.New(), nil)

	_, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: base + "/music/shows/empty", Source: "sitemap"})
	if !errors.Is(err, station.ErrEnrichment) {
		t.Fatalf("expected enrichment error, got %v", err)
	}
}

func TestEnrichIdempotentByURL(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)
	resource := &catalog.Resource{URL: base + "/music/shows/jazz-theater", Source: "sitemap"}

	first, err := enricher.Enrich(context.Background(), resource)
	if err != nil {
		t.Fatalf("first Enrich failed: %v", err)
	}
	fetchesAfterFirst := src.TotalFetches()

	second, err := enricher.Enrich(context.Background(), resource)
	if err != nil {
		t.Fatalf("second Enrich failed: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second enrichment missed the cache")
	}
	if first.Show.UUID != second.Show.UUID {
		t.Fatalf("uuid changed across enrichments: %s vs %s", first.Show.UUID, second.Show.UUID)
	}
	if src.TotalFetches() != fetchesAfterFirst {
		t.Fatalf("cache hit still fetched: %d -> %d", fetchesAfterFirst, src.TotalFetches())
	}
}

func TestEnrichIdempotentDespiteCanonicalSlash(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPageAt(base+"/music/shows/jazz-theater/", "Jazz Theater"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)
	resource := &catalog.Resource{URL: base + "/music/shows/jazz-theater", Source: "sitemap"}

	first, err := enricher.Enrich(context.Background(), resource)
	if err != nil {
		t.Fatalf("first Enrich failed: %v", err)
	}
	if first.Show.URL != base+"/music/shows/jazz-theater/" {
		t.Fatalf("canonical url not kept: %q", first.Show.URL)
	}
	fetchesAfterFirst := src.TotalFetches()

	second, err := enricher.Enrich(context.Background(), resource)
	if err != nil {
		t.Fatalf("second Enrich failed: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second enrichment missed the cache")
	}
	if src.TotalFetches() != fetchesAfterFirst {
		t.Fatalf("cache hit still fetched: %d -> %d", fetchesAfterFirst, src.TotalFetches())
	}
}

func TestEnrichEpisodesShareCanonicalSlashParent(t *testing.T) {
	epOne := base + "/music/shows/jazz-theater/episode-one"
	epTwo := base + "/music/shows/jazz-theater/episode-two"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPageAt(base+"/music/shows/jazz-theater/", "Jazz Theater"))
	src.Add("music/shows/jazz-theater/episode-one/player",
		playerDoc(epUUID, "2025-01-08T20:00:00Z", epOne, "https://media.example.org/one.mp3"))
	src.Add("music/shows/jazz-theater/episode-two/player",
		playerDoc(epTwoUUID, "2025-01-15T20:00:00Z", epTwo, "https://media.example.org/two.mp3"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	if _, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: epOne, Source: "sitemap"}); err != nil {
		t.Fatalf("first episode failed: %v", err)
	}
	if _, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: epTwo, Source: "sitemap"}); err != nil {
		t.Fatalf("second episode failed: %v", err)
	}
	if count := src.FetchCount("music/shows/jazz-theater"); count != 1 {
		t.Fatalf("parent show fetched %d times", count)
	}
}

func TestEnrichShowCollectsLeftoverMetadata(t *testing.T) {
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	result, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: base + "/music/shows/jazz-theater", Source: "sitemap"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if result.Show.Metadata["genre"] != "jazz" {
		t.Fatalf("leftover property not collected: %v", result.Show.Metadata)
	}
	if _, ok := result.Show.Metadata["name"]; ok {
		t.Fatalf("consumed property leaked into metadata: %v", result.Show.Metadata)
	}
}

func TestEnrichEpisodeCollectsLeftoverMetadata(t *testing.T) {
	episodeURL := base + "/music/shows/jazz-theater/episode-one"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	src.Add("music/shows/jazz-theater/episode-one/player", fmt.Sprintf(`{
"title":"Episode","airdate":"2025-01-08T20:00:00Z","url":%q,
"media":[{"url":"https://media.example.org/one.mp3"}],
"uuid":"episode-%s","show_uuid":"show-%s",
"producer":"Sam","studio":"B"}`, episodeURL, epUUID, showUUID))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	result, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: episodeURL, Source: "sitemap"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if result.Episode.Metadata["producer"] != "Sam" || result.Episode.Metadata["studio"] != "B" {
		t.Fatalf("leftover fields not collected: %v", result.Episode.Metadata)
	}
	if _, ok := result.Episode.Metadata["title"]; ok {
		t.Fatalf("decoded field leaked into metadata: %v", result.Episode.Metadata)
	}
}

func TestEnrichEpisodeFetchesParentFirst(t *testing.T) {
	episodeURL := base + "/music/shows/jazz-theater/episode-one"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	src.Add("music/shows/jazz-theater/episode-one/player",
		playerDoc(epUUID, "2025-01-08T20:00:00Z", episodeURL, "https://media.example.org/one.mp3?session=abc&token=xyz"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	result, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: episodeURL, Source: "sitemap"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if result.Touched != 2 {
		t.Fatalf("expected 2 touched entities (show + episode), got %d", result.Touched)
	}
	if result.Episode.MediaURL != "https://media.example.org/one.mp3" {
		t.Fatalf("query not stripped: %q", result.Episode.MediaURL)
	}
	if result.Episode.ShowUUID != result.Show.UUID {
		t.Fatalf("episode not linked to parent: %s vs %s", result.Episode.ShowUUID, result.Show.UUID)
	}
	if !result.Show.HasEpisode(result.Episode.UUID) {
		t.Fatal("episode not appended under parent show")
	}
}

func TestEnrichEpisodeWithCataloguedParent(t *testing.T) {
	episodeURL := base + "/music/shows/jazz-theater/episode-two"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	src.Add("music/shows/jazz-theater/episode-two/player",
		playerDoc(epTwoUUID, "2025-01-15T20:00:00Z", episodeURL, "https://media.example.org/two.mp3"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	if _, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: base + "/music/shows/jazz-theater", Source: "sitemap"}); err != nil {
		t.Fatalf("show enrichment failed: %v", err)
	}

	result, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: episodeURL, Source: "sitemap"})
	if err != nil {
		t.Fatalf("episode enrichment failed: %v", err)
	}
	if result.Touched != 1 {
		t.Fatalf("expected 1 touched entity, got %d", result.Touched)
	}
}

func TestEnrichEpisodeMissingPlayerDocument(t *testing.T) {
	episodeURL := base + "/music/shows/jazz-theater/episode-gone"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	enricher := newEnricher(src, catalog.New(), nil)

	_, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: episodeURL, Source: "sitemap"})
	if !errors.Is(err, station.ErrEnrichment) {
		t.Fatalf("expected enrichment error, got %v", err)
	}
}

func TestEnrichEpisodeMissingAirdateFatal(t *testing.T) {
	episodeURL := base + "/music/shows/jazz-theater/episode-bad"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater"))
	src.Add("music/shows/jazz-theater/episode-bad/player",
		playerDoc(epUUID, "", episodeURL, "https://media.example.org/bad.mp3"))
	enricher := newEnricher(src, catalog.New(), nil)

	_, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: episodeURL, Source: "sitemap"})
	if !errors.Is(err, station.ErrEnrichment) {
		t.Fatalf("expected enrichment error for missing airdate, got %v", err)
	}
}

func TestEnrichShowEagerInlineEpisodes(t *testing.T) {
	epURL := base + "/music/shows/jazz-theater/episode-one"
	src := testsupport.NewFakeSource(base)
	src.Add("music/shows/jazz-theater", showPage("Jazz Theater", epURL))
	src.Add("music/shows/jazz-theater/episode-one/player",
		playerDoc(epUUID, "2025-01-08T20:00:00Z", epURL, "https://media.example.org/one.mp3"))
	cat := catalog.New()
	enricher := newEnricher(src, cat, nil)

	result, err := enricher.Enrich(context.Background(), &catalog.Resource{URL: base + "/music/shows/jazz-theater", Source: "sitemap"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if len(result.Show.Episodes) != 1 {
		t.Fatalf("inline episode not attached: %d", len(result.Show.Episodes))
	}
	if _, ok := cat.EpisodeByURL(epURL); !ok {
		t.Fatal("inline episode not registered in catalog")
	}
	if result.Touched != 2 {
		t.Fatalf("expected show plus inline episode counted, got %d", result.Touched)
	}
}
