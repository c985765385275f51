package enrich

import (
	"context"
	"log/slog"
	"strings"

	"aircheck/internal/catalog"
	"aircheck/internal/logging"
	"aircheck/internal/station"
)

// Enricher turns discovered resources into fully-populated entities,
// registering everything it produces into one catalog. An explicit URL
// cache keeps idempotence observable: every enriched entity is recorded
// under both the resource URL it was requested as and the canonical URL
// the entity declares, so re-enriching either form is answered without a
// fetch even when the two disagree on trailing slashes or casing.
type Enricher struct {
	source       station.Source
	cat          *catalog.Catalog
	resources    map[string]*catalog.Resource
	showsPath    string
	playerSuffix string
	showCache    map[string]*catalog.Show
	episodeCache map[string]*catalog.Episode
	logger       *slog.Logger
}

// New creates an enricher bound to a run's source, target catalog, and the
// discovered resource universe (used for parent show lookups).
func New(source station.Source, cat *catalog.Catalog, resources map[string]*catalog.Resource, showsPath, playerSuffix string, logger *slog.Logger) *Enricher {
	return &Enricher{
		source:       source,
		cat:          cat,
		resources:    resources,
		showsPath:    showsPath,
		playerSuffix: playerSuffix,
		showCache:    make(map[string]*catalog.Show),
		episodeCache: make(map[string]*catalog.Episode),
		logger:       logging.NewComponentLogger(logger, "enrich"),
	}
}

// Result reports one enrichment call: the entity produced, the parent show
// for episodes, and the set of entities the association step touched.
type Result struct {
	Show    *catalog.Show
	Episode *catalog.Episode
	// Touched counts the entities newly registered by the call: for an
	// episode, the association set size (1, or 2 when resolving it also
	// fetched the show); for a show, the show plus every inline episode
	// attached from its page. Zero only on a cache hit.
	Touched  int
	CacheHit bool
}

// Entity returns the primary entity of the result.
func (r *Result) Entity() any {
	if r.Episode != nil {
		return r.Episode
	}
	return r.Show
}

// Enrich classifies a resource by URL shape and runs the matching
// enrichment path. Re-enriching a URL that already resolved to an entity
// is a no-op returning the cached entity.
func (e *Enricher) Enrich(ctx context.Context, resource *catalog.Resource) (*Result, error) {
	if resource == nil || resource.URL == "" {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "classify", "resource has no url", nil)
	}
	kind, err := Classify(resource.URL, e.showsPath)
	if err != nil {
		return nil, station.Wrap(station.ErrEnrichment, "enrich", "classify", resource.URL, err)
	}

	switch kind {
	case KindEpisode:
		return e.enrichEpisode(ctx, resource)
	default:
		return e.enrichShow(ctx, resource)
	}
}

// cacheKey normalizes a URL for enrichment-cache lookups: trailing
// slashes and letter case carry no identity on station URLs.
func cacheKey(url string) string {
	return strings.ToLower(strings.TrimRight(url, "/"))
}

// cachedShow answers a show for either its requested resource URL or its
// canonical URL, falling back to the catalog for entities registered
// outside this enricher (a reloaded state, a merge).
func (e *Enricher) cachedShow(url string) (*catalog.Show, bool) {
	if show, ok := e.showCache[cacheKey(url)]; ok {
		return show, true
	}
	if show, ok := e.cat.ShowByURL(url); ok {
		return show, true
	}
	return nil, false
}

func (e *Enricher) cachedEpisode(url string) (*catalog.Episode, bool) {
	if episode, ok := e.episodeCache[cacheKey(url)]; ok {
		return episode, true
	}
	if episode, ok := e.cat.EpisodeByURL(url); ok {
		return episode, true
	}
	return nil, false
}

func (e *Enricher) rememberShow(resourceURL string, show *catalog.Show) {
	e.showCache[cacheKey(resourceURL)] = show
	e.showCache[cacheKey(show.URL)] = show
}

func (e *Enricher) rememberEpisode(resourceURL string, episode *catalog.Episode) {
	e.episodeCache[cacheKey(resourceURL)] = episode
	e.episodeCache[cacheKey(episode.URL)] = episode
}

// resourceFor returns the discovered resource for a URL, or synthesizes a
// minimal one when the URL surfaced outside discovery (inline episode
// stubs, parent shows missing from the sitemap).
func (e *Enricher) resourceFor(url, origin string) *catalog.Resource {
	if resource, ok := e.resources[url]; ok {
		return resource
	}
	if resource, ok := e.cat.GetResource(url); ok {
		return resource
	}
	return &catalog.Resource{URL: url, Source: origin}
}
