package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"aircheck/internal/catalog"
	"aircheck/internal/logging"
	"aircheck/internal/station"
)

// playerDocument is the episode player/metadata JSON shape. Only the
// fields the catalog models are decoded; everything else is ignored.
type playerDocument struct {
	Title       string        `json:"title"`
	Airdate     string        `json:"airdate"`
	URL         string        `json:"url"`
	Media       []playerMedia `json:"media"`
	UUID        string        `json:"uuid"`
	ShowUUID    string        `json:"show_uuid"`
	Hosts       []string      `json:"hosts"`
	Description string        `json:"description"`
	Songlist    string        `json:"songlist"`
	Image       string        `json:"image"`
	Type        string        `json:"type"`
	Duration    float64       `json:"duration"`
	Ending      string        `json:"ending"`
	Modified    string        `json:"modified"`
}

type playerMedia struct {
	URL string `json:"url"`
}

// playerFields are the document keys the typed decode consumes; everything
// else string-valued lands in the episode's metadata mapping.
var playerFields = map[string]struct{}{
	"title": {}, "airdate": {}, "url": {}, "media": {}, "uuid": {},
	"show_uuid": {}, "hosts": {}, "description": {}, "songlist": {},
	"image": {}, "type": {}, "duration": {}, "ending": {}, "modified": {},
}

func playerMetadata(body []byte) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	var metadata map[string]string
	for key, value := range raw {
		if _, consumed := playerFields[key]; consumed {
			continue
		}
		text, ok := value.(string)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[key] = strings.TrimSpace(text)
	}
	return metadata
}

var airdateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (e *Enricher) enrichEpisode(ctx context.Context, resource *catalog.Resource) (*Result, error) {
	if cached, ok := e.cachedEpisode(resource.URL); ok {
		result := &Result{Episode: cached, CacheHit: true}
		if show, ok := e.cat.GetShow(cached.ShowUUID); ok {
			result.Show = show
		}
		return result, nil
	}

	// Parent first: every persisted episode must resolve to an
	// already-catalogued show.
	show, showFetched, err := e.resolveParent(ctx, resource)
	if err != nil {
		return nil, err
	}

	// Enriching the parent may have pulled this episode in as an inline
	// stub; the association set is still {show, episode}.
	episode, ok := e.cachedEpisode(resource.URL)
	if !ok {
		episode, err = e.fetchEpisode(ctx, resource)
		if err != nil {
			return nil, err
		}
	}

	touched, err := e.associate(show, episode, showFetched)
	if err != nil {
		return nil, err
	}
	return &Result{Show: show, Episode: episode, Touched: touched}, nil
}

// resolveParent derives the parent show URL by truncation and enriches the
// show when it is not already catalogued.
func (e *Enricher) resolveParent(ctx context.Context, resource *catalog.Resource) (*catalog.Show, bool, error) {
	showURL, err := ShowURL(resource.URL, e.showsPath)
	if err != nil {
		return nil, false, station.Wrap(station.ErrEnrichment, "enrich", "resolve parent", resource.URL, err)
	}
	if show, ok := e.cachedShow(showURL); ok {
		return show, false, nil
	}
	show, _, err := e.fetchShow(ctx, e.resourceFor(showURL, resource.Source))
	if err != nil {
		return nil, false, err
	}
	return show, true, nil
}

// associate links the episode under its parent exactly once and asserts
// the touched-set invariant: 1 (episode already linked to a known show) or
// 2 (episode plus newly-fetched show), never anything else.
func (e *Enricher) associate(show *catalog.Show, episode *catalog.Episode, showFetched bool) (int, error) {
	if show == nil || episode == nil {
		return 0, station.Wrap(station.ErrAssociationInvariant, "enrich", "associate", "touched 0 entities", nil)
	}
	if episode.ShowUUID == uuid.Nil {
		episode.ShowUUID = show.UUID
	}
	show.AppendEpisode(episode)

	touchedSet := map[uuid.UUID]struct{}{episode.UUID: {}}
	if showFetched {
		touchedSet[show.UUID] = struct{}{}
	}
	touched := len(touchedSet)
	if touched < 1 || touched > 2 || (showFetched && touched != 2) {
		return 0, station.Wrap(station.ErrAssociationInvariant, "enrich", "associate",
			fmt.Sprintf("touched %d entities", touched), nil)
	}
	return touched, nil
}

// fetchEpisode resolves the player document at the fixed sub-path relative
// to the episode URL and registers the episode. It does not link the
// episode to a show; callers own association.
func (e *Enricher) fetchEpisode(ctx context.Context, resource *catalog.Resource) (*catalog.Episode, error) {
	ref := e.source.RelativePath(resource.URL) + "/" + e.playerSuffix
	body, ok, err := e.source.GetReference(ctx, ref)
	if err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "fetch player document", resource.URL, err)
	}
	if !ok {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "fetch player document", resource.URL+": document absent", nil)
	}

	var doc playerDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "parse player document", resource.URL, err)
	}

	episodeID, err := station.ExtractUUID(doc.UUID)
	if err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "extract episode uuid", resource.URL, err)
	}
	showID, err := station.ExtractUUID(doc.ShowUUID)
	if err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "extract show uuid", resource.URL, err)
	}
	airdate, err := parseAirdate(doc.Airdate)
	if err != nil {
		// An episode without an airdate cannot be feed-ordered.
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "parse airdate", resource.URL, err)
	}
	if len(doc.Media) == 0 || doc.Media[0].URL == "" {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "parse player document", resource.URL+": no playable media", nil)
	}

	episode := &catalog.Episode{
		UUID:        episodeID,
		Title:       doc.Title,
		Airdate:     airdate,
		URL:         canonicalOr(doc.URL, resource.URL),
		MediaURL:    stripQuery(doc.Media[0].URL),
		ShowUUID:    showID,
		Description: doc.Description,
		Songlist:    doc.Songlist,
		Image:       doc.Image,
		Type:        doc.Type,
		Duration:    int(doc.Duration),
		Ending:      doc.Ending,
		Resource:    resource,
		Metadata:    playerMetadata(body),
	}
	for _, raw := range doc.Hosts {
		hostID, err := station.ExtractUUID(raw)
		if err != nil {
			e.logger.Debug("unparsable episode host", logging.String("url", resource.URL), logging.String("host", raw))
			continue
		}
		episode.Hosts = append(episode.Hosts, hostID)
	}
	if doc.Modified != "" {
		if modified, err := parseAirdate(doc.Modified); err == nil {
			episode.LastUpdated = &modified
		}
	}

	if err := e.cat.AddEpisode(episode); err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "register episode", resource.URL, err)
	}
	e.rememberEpisode(resource.URL, episode)
	e.logger.Info("episode enriched",
		logging.String("title", episode.Title),
		logging.String("uuid", episode.UUID.String()),
		logging.Time("airdate", episode.Airdate))
	return episode, nil
}

func parseAirdate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("airdate missing")
	}
	for _, layout := range airdateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported airdate %q", value)
}

// stripQuery removes query parameters and fragments: the query string
// carries session and tracking values that are not part of media identity.
func stripQuery(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}
