package updater_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"aircheck/internal/catalog"
	"aircheck/internal/logging"
	"aircheck/internal/persist"
	"aircheck/internal/station"
	"aircheck/internal/testsupport"
	"aircheck/internal/updater"
)

const (
	base       = "https://example.org"
	showURL    = base + "/music/shows/jazz-theater"
	episodeURL = base + "/music/shows/jazz-theater/episode-one"
	showUUID   = "22222222-2222-4222-8222-222222222222"
	hostUUID   = "11111111-1111-4111-8111-111111111111"
	epUUID     = "33333333-3333-4333-8333-333333333333"
)

func sitemap(urls ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset>`)
	for _, url := range urls {
		fmt.Fprintf(&b, "<url><loc>%s</loc><lastmod>2025-01-20</lastmod></url>", url)
	}
	b.WriteString("</urlset>")
	return b.String()
}

func showPage() string {
	return fmt.Sprintf(`<html><head><script type="application/ld+json">
{"@graph":[{"@type":"RadioSeries","@id":"#show-%s","name":"Jazz Theater",
"url":%q,
"author":{"@type":"Person","@id":"#host-%s","name":"Robin"}}]}
</script></head><body></body></html>`, showUUID, showURL, hostUUID)
}

func playerDoc() string {
	return fmt.Sprintf(`{
"title":"Episode One","airdate":"2025-01-08T20:00:00Z","url":%q,
"media":[{"url":"https://media.example.org/one.mp3"}],
"uuid":"episode-%s","show_uuid":"show-%s","hosts":["host-%s"]}`,
		episodeURL, epUUID, showUUID, hostUUID)
}

func stationSource(t *testing.T) *testsupport.FakeSource {
	t.Helper()
	src := testsupport.NewFakeSource(base)
	src.Add("robots.txt", "Sitemap: "+base+"/sitemap.xml\n")
	src.Add("sitemap.xml", sitemap(showURL, episodeURL))
	src.Add("music/shows/jazz-theater", showPage())
	src.Add("music/shows/jazz-theater/episode-one/player", playerDoc())
	return src
}

func TestUpdateEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	u := updater.New(cfg, stationSource(t), logging.NewNop())

	report, err := u.Update(context.Background(), updater.Options{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if report.Discovered != 2 {
		t.Fatalf("expected 2 discovered resources, got %d", report.Discovered)
	}
	if report.Updated != 2 || report.Failed != 0 {
		t.Fatalf("unexpected counts: updated=%d failed=%d", report.Updated, report.Failed)
	}
	if !strings.Contains(report.Diff, "shows: +1") {
		t.Fatalf("diff summary missing show addition: %q", report.Diff)
	}

	loaded, exists, err := persist.Load(cfg.StatePath())
	if err != nil || !exists {
		t.Fatalf("state not persisted: exists=%v err=%v", exists, err)
	}
	show, ok := loaded.ShowByURL(showURL)
	if !ok {
		t.Fatal("show missing from persisted state")
	}
	if !show.HasEpisode(uuid.MustParse(epUUID)) {
		t.Fatal("episode missing from persisted show")
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.FeedDir, "jazz-theater.xml")); err != nil {
		t.Fatalf("feed not rendered: %v", err)
	}
}

func TestUpdateDryRunWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	u := updater.New(cfg, stationSource(t), logging.NewNop())

	report, err := u.Update(context.Background(), updater.Options{DryRun: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !report.DryRun {
		t.Fatal("report lost the dry-run flag")
	}
	if _, err := os.Stat(cfg.StatePath()); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote state: %v", err)
	}
}

func TestUpdateSelectionMismatchFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	u := updater.New(cfg, stationSource(t), logging.NewNop())

	unknown := base + "/music/shows/no-such-show"
	_, err := u.Update(context.Background(), updater.Options{Select: []string{unknown}})
	if !errors.Is(err, station.ErrSelectionMismatch) {
		t.Fatalf("expected selection mismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), unknown) {
		t.Fatalf("error does not name the unmatched entry: %v", err)
	}
}

func TestUpdateAggregatesUnselectedFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := stationSource(t)
	// Discovered but with no player document behind it.
	broken := base + "/music/shows/jazz-theater/episode-broken"
	src.Add("sitemap.xml", sitemap(showURL, episodeURL, broken))
	u := updater.New(cfg, src, logging.NewNop())

	report, err := u.Update(context.Background(), updater.Options{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if report.Failed != 1 || len(report.Failures) != 1 {
		t.Fatalf("expected one aggregated failure, got %d", report.Failed)
	}
	if report.Failures[0].URL != broken {
		t.Fatalf("unexpected failure url %q", report.Failures[0].URL)
	}
}

func TestUpdateSelectedFailureFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	src := stationSource(t)
	broken := base + "/music/shows/jazz-theater/episode-broken"
	src.Add("sitemap.xml", sitemap(showURL, episodeURL, broken))
	u := updater.New(cfg, src, logging.NewNop())

	_, err := u.Update(context.Background(), updater.Options{Select: []string{broken}})
	if err == nil {
		t.Fatal("expected a fatal error for the selected resource")
	}
	if !errors.Is(err, station.ErrEnrichment) {
		t.Fatalf("expected enrichment error, got %v", err)
	}
}

func TestUpdateMergePreservesOutOfScopeEntities(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	// Pre-existing state with a show the filtered run will not touch.
	previous := catalog.New()
	keeperID := uuid.MustParse("22222222-2222-4222-8222-222222222223")
	if err := previous.AddShow(&catalog.Show{
		UUID:  keeperID,
		Title: "Night Drive",
		URL:   base + "/music/shows/night-drive",
	}); err != nil {
		t.Fatalf("AddShow failed: %v", err)
	}
	if err := persist.Save(cfg.StatePath(), previous); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	u := updater.New(cfg, stationSource(t), logging.NewNop())
	if _, err := u.Update(context.Background(), updater.Options{Match: "jazz-theater"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	loaded, _, err := persist.Load(cfg.StatePath())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := loaded.GetShow(keeperID); !ok {
		t.Fatal("out-of-scope show lost in merge")
	}
	if _, ok := loaded.ShowByURL(showURL); !ok {
		t.Fatal("in-scope show missing after merge")
	}
}

func TestUpdateRerunReportsNoChanges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	u := updater.New(cfg, stationSource(t), logging.NewNop())

	ctx := context.Background()
	if _, err := u.Update(ctx, updater.Options{}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	report, err := u.Update(ctx, updater.Options{})
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if report.Diff != "no changes" {
		t.Fatalf("expected a stable rerun, diff = %q", report.Diff)
	}
}
