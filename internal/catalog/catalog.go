package catalog

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Catalog is the reconciled, cross-referenced collection of all entities:
// four keyed mappings with cascade insertion. All methods are safe for
// concurrent use; mutation is serialized behind a single mutex so a
// concurrent enrichment pool only needs to funnel completed entities
// through Add*.
type Catalog struct {
	mu        sync.RWMutex
	shows     map[uuid.UUID]*Show
	episodes  map[uuid.UUID]*Episode
	hosts     map[uuid.UUID]*Host
	resources map[string]*Resource
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		shows:     make(map[uuid.UUID]*Show),
		episodes:  make(map[uuid.UUID]*Episode),
		hosts:     make(map[uuid.UUID]*Host),
		resources: make(map[string]*Resource),
	}
}

// GetShow looks up a show by identity.
func (c *Catalog) GetShow(id uuid.UUID) (*Show, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	show, ok := c.shows[id]
	return show, ok
}

// GetEpisode looks up an episode by identity.
func (c *Catalog) GetEpisode(id uuid.UUID) (*Episode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	episode, ok := c.episodes[id]
	return episode, ok
}

// GetHost looks up a host by identity.
func (c *Catalog) GetHost(id uuid.UUID) (*Host, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	host, ok := c.hosts[id]
	return host, ok
}

// GetResource looks up a discovered resource by URL.
func (c *Catalog) GetResource(url string) (*Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resource, ok := c.resources[url]
	return resource, ok
}

// ShowByURL finds a show by its canonical URL. Enrichment needs this
// because the UUID is not known before the page has been fetched.
func (c *Catalog) ShowByURL(url string) (*Show, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, show := range c.shows {
		if show.URL == url {
			return show, true
		}
	}
	return nil, false
}

// EpisodeByURL finds an episode by its canonical URL.
func (c *Catalog) EpisodeByURL(url string) (*Episode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, episode := range c.episodes {
		if episode.URL == url {
			return episode, true
		}
	}
	return nil, false
}

// AddShow upserts a show and cascades: the show's resource, hosts, and
// episodes (with their resources) are registered into their own mappings
// so the cross-entity invariants hold after every insertion. The whole
// show is validated up front; a rejected show leaves the catalog
// untouched rather than half-registered.
func (c *Catalog) AddShow(show *Show) error {
	if show == nil {
		return errors.New("show is nil")
	}
	if show.UUID == uuid.Nil {
		return errors.New("show has no uuid")
	}
	for _, episode := range show.Episodes {
		if err := validateEpisode(episode); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shows[show.UUID] = show
	if show.Resource != nil {
		c.resources[show.Resource.URL] = show.Resource
	}
	for _, host := range show.Hosts {
		if host != nil && host.UUID != uuid.Nil {
			c.hosts[host.UUID] = host
		}
	}
	for _, episode := range show.Episodes {
		if err := c.addEpisodeLocked(episode); err != nil {
			return err
		}
	}
	show.SortEpisodes()
	return nil
}

// AddEpisode upserts an episode and registers its resource.
func (c *Catalog) AddEpisode(episode *Episode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addEpisodeLocked(episode)
}

func validateEpisode(episode *Episode) error {
	if episode == nil {
		return errors.New("episode is nil")
	}
	if episode.UUID == uuid.Nil {
		return errors.New("episode has no uuid")
	}
	if episode.Airdate.IsZero() {
		return errors.New("episode " + episode.UUID.String() + " has no airdate")
	}
	return nil
}

func (c *Catalog) addEpisodeLocked(episode *Episode) error {
	if err := validateEpisode(episode); err != nil {
		return err
	}
	c.episodes[episode.UUID] = episode
	if episode.Resource != nil {
		c.resources[episode.Resource.URL] = episode.Resource
	}
	return nil
}

// AddHost upserts a host.
func (c *Catalog) AddHost(host *Host) error {
	if host == nil {
		return errors.New("host is nil")
	}
	if host.UUID == uuid.Nil {
		return errors.New("host has no uuid")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hosts[host.UUID] = host
	return nil
}

// AddResource upserts a discovered resource keyed by URL.
func (c *Catalog) AddResource(resource *Resource) error {
	if resource == nil {
		return errors.New("resource is nil")
	}
	if resource.URL == "" {
		return errors.New("resource has no url")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources[resource.URL] = resource
	return nil
}

// ListShows returns shows ordered by URL, optionally filtered.
func (c *Catalog) ListShows(filter *Filter) []*Show {
	c.mu.RLock()
	defer c.mu.RUnlock()
	shows := make([]*Show, 0, len(c.shows))
	for _, show := range c.shows {
		if filter.matchShow(show) {
			shows = append(shows, show)
		}
	}
	sort.Slice(shows, func(i, j int) bool { return shows[i].URL < shows[j].URL })
	return shows
}

// ListEpisodes returns episodes ordered by airdate then URL, optionally filtered.
func (c *Catalog) ListEpisodes(filter *Filter) []*Episode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	episodes := make([]*Episode, 0, len(c.episodes))
	for _, episode := range c.episodes {
		if filter.matchEpisode(episode) {
			episodes = append(episodes, episode)
		}
	}
	sort.Slice(episodes, func(i, j int) bool {
		a, b := episodes[i], episodes[j]
		if !a.Airdate.Equal(b.Airdate) {
			return a.Airdate.Before(b.Airdate)
		}
		return a.URL < b.URL
	})
	return episodes
}

// ListHosts returns hosts ordered by name, optionally filtered.
func (c *Catalog) ListHosts(filter *Filter) []*Host {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hosts := make([]*Host, 0, len(c.hosts))
	for _, host := range c.hosts {
		if filter.matchHost(host) {
			hosts = append(hosts, host)
		}
	}
	sort.Slice(hosts, func(i, j int) bool {
		if hosts[i].Name != hosts[j].Name {
			return hosts[i].Name < hosts[j].Name
		}
		return hosts[i].UUID.String() < hosts[j].UUID.String()
	})
	return hosts
}

// ListResources returns resources ordered by URL, optionally filtered.
func (c *Catalog) ListResources(filter *Filter) []*Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resources := make([]*Resource, 0, len(c.resources))
	for _, resource := range c.resources {
		if filter.MatchResource(resource) {
			resources = append(resources, resource)
		}
	}
	sort.Slice(resources, func(i, j int) bool { return resources[i].URL < resources[j].URL })
	return resources
}

// Counts reports the size of each mapping.
func (c *Catalog) Counts() (shows, episodes, hosts, resources int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shows), len(c.episodes), len(c.hosts), len(c.resources)
}
