package enrich

import (
	"context"

	"github.com/google/uuid"

	"aircheck/internal/catalog"
	"aircheck/internal/extract"
	"aircheck/internal/logging"
	"aircheck/internal/station"
)

func (e *Enricher) enrichShow(ctx context.Context, resource *catalog.Resource) (*Result, error) {
	if cached, ok := e.cachedShow(resource.URL); ok {
		return &Result{Show: cached, CacheHit: true}, nil
	}

	show, inline, err := e.fetchShow(ctx, resource)
	if err != nil {
		return nil, err
	}
	return &Result{Show: show, Touched: 1 + inline}, nil
}

// fetchShow resolves, extracts, and registers a show, returning it with
// the number of inline episodes registered alongside it. Inline episode
// stubs on the show page are enriched eagerly; they are the only episodes
// loaded here, so a show with thousands of archived episodes does not
// trigger a catalog-wide fetch.
func (e *Enricher) fetchShow(ctx context.Context, resource *catalog.Resource) (*catalog.Show, int, error) {
	body, err := e.fetchShowDocument(ctx, resource.URL)
	if err != nil {
		return nil, 0, err
	}

	records, err := extract.Extract(body, resource.URL)
	if err != nil {
		return nil, 0, station.Wrap(station.ErrEnrichment, "enrich", "extract show page", resource.URL, err)
	}
	series, ok := extract.FindSeries(records)
	if !ok {
		// Absence of the series record is surfaced, never papered over
		// with a guessed entity.
		return nil, 0, station.Wrap(station.ErrEnrichment, "enrich", "extract show page", resource.URL+": no series record", nil)
	}

	showID, err := station.ExtractUUID(series.ID)
	if err != nil {
		return nil, 0, station.Wrap(station.ErrEnrichment, "enrich", "extract show uuid", resource.URL, err)
	}

	show := &catalog.Show{
		UUID:        showID,
		Title:       series.String("name"),
		URL:         canonicalOr(series.String("url"), resource.URL),
		Image:       series.String("image"),
		Description: series.String("description"),
		Type:        series.Type,
		LastUpdated: resource.LastUpdated,
		Resource:    resource,
		Metadata:    series.Metadata("name", "url", "image", "description", "author", "episode"),
	}

	if author, ok := series.Nested("author"); ok {
		host, err := e.registerHost(author)
		if err != nil {
			e.logger.Warn("host record skipped", logging.String("show", show.Title), logging.Error(err))
		} else {
			show.Hosts = append(show.Hosts, host)
		}
	}

	if err := e.cat.AddShow(show); err != nil {
		return nil, 0, station.Wrap(station.ErrEnrichment, "enrich", "register show", resource.URL, err)
	}
	e.rememberShow(resource.URL, show)

	inline := e.attachInlineEpisodes(ctx, show, series)
	e.logger.Info("show enriched",
		logging.String("title", show.Title),
		logging.String("uuid", show.UUID.String()),
		logging.Int("episodes", len(show.Episodes)))
	return show, inline, nil
}

// fetchShowDocument tries the canonical path, then the index-document
// fallback at the same logical path.
func (e *Enricher) fetchShowDocument(ctx context.Context, url string) ([]byte, error) {
	ref := e.source.RelativePath(url)
	body, ok, err := e.source.GetReference(ctx, ref)
	if err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "fetch show page", url, err)
	}
	if ok {
		return body, nil
	}
	body, ok, err = e.source.GetReference(ctx, ref+"/index.html")
	if err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "fetch show page", url, err)
	}
	if !ok {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "fetch show page", url+": document absent", nil)
	}
	return body, nil
}

// registerHost deduplicates hosts by UUID: an already-known host is reused
// untouched, a new one is registered.
func (e *Enricher) registerHost(record extract.Record) (*catalog.Host, error) {
	hostID, err := station.ExtractUUID(record.ID)
	if err != nil {
		return nil, err
	}
	if existing, ok := e.cat.GetHost(hostID); ok {
		return existing, nil
	}
	host := &catalog.Host{
		UUID:        hostID,
		Name:        record.String("name"),
		Title:       record.String("jobTitle"),
		URL:         record.String("url"),
		Image:       record.String("image"),
		Socials:     record.StringList("sameAs"),
		Description: record.String("description"),
		Type:        record.Type,
		Metadata:    record.Metadata("name", "jobTitle", "url", "image", "sameAs", "description"),
	}
	if err := e.cat.AddHost(host); err != nil {
		return nil, err
	}
	return host, nil
}

// attachInlineEpisodes enriches the episode stubs advertised on the show
// page and returns how many were newly registered. Stub failures are
// per-episode warnings, never fatal to the show.
func (e *Enricher) attachInlineEpisodes(ctx context.Context, show *catalog.Show, series extract.Record) int {
	attached := 0
	for _, stub := range series.NestedList("episode") {
		stubURL := stub.String("url")
		if stubURL == "" {
			continue
		}
		stubURL = e.source.Reference(stubURL)
		if _, ok := e.cachedEpisode(stubURL); ok {
			continue
		}
		episode, err := e.fetchEpisode(ctx, e.resourceFor(stubURL, show.URL))
		if err != nil {
			e.logger.Warn("inline episode skipped",
				logging.String("show", show.Title),
				logging.String("url", stubURL),
				logging.Error(err))
			continue
		}
		e.linkEpisode(show, episode)
		attached++
	}
	return attached
}

func (e *Enricher) linkEpisode(show *catalog.Show, episode *catalog.Episode) {
	if episode.ShowUUID == uuid.Nil {
		episode.ShowUUID = show.UUID
	}
	show.AppendEpisode(episode)
}

func canonicalOr(canonical, fallback string) string {
	if canonical != "" {
		return canonical
	}
	return fallback
}
