package catalog

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Resource is a discovered-but-not-yet-enriched sitemap entry. Identity is
// the URL. Once discovery completes a Resource is read-only; enrichment
// attaches it to the entity it produced.
type Resource struct {
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	LastUpdated *time.Time        `json:"last_updated,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Host is a show or episode presenter. Hosts are shared by reference
// across shows and deduplicated by UUID; episodes carry host UUIDs only,
// never embedded records.
type Host struct {
	UUID        uuid.UUID         `json:"uuid"`
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	URL         string            `json:"url,omitempty"`
	Image       string            `json:"image,omitempty"`
	Socials     []string          `json:"socials,omitempty"`
	Description string            `json:"description,omitempty"`
	Type        string            `json:"type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Show is an enriched series record. It owns its episode list; the same
// episode pointers are indexed independently in the catalog's episode map.
type Show struct {
	UUID        uuid.UUID         `json:"uuid"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Image       string            `json:"image,omitempty"`
	Description string            `json:"description,omitempty"`
	Hosts       []*Host           `json:"hosts,omitempty"`
	Episodes    []*Episode        `json:"episodes,omitempty"`
	Type        string            `json:"type,omitempty"`
	LastUpdated *time.Time        `json:"last_updated,omitempty"`
	Resource    *Resource         `json:"resource,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Episode is an enriched broadcast record. Airdate is mandatory for any
// persisted episode; ShowUUID is a lookup-only back-reference, the show
// owns the episode.
type Episode struct {
	UUID        uuid.UUID         `json:"uuid"`
	Title       string            `json:"title"`
	Airdate     time.Time         `json:"airdate"`
	URL         string            `json:"url"`
	MediaURL    string            `json:"media_url"`
	ShowUUID    uuid.UUID         `json:"show_uuid"`
	Hosts       []uuid.UUID       `json:"hosts,omitempty"`
	Description string            `json:"description,omitempty"`
	Songlist    string            `json:"songlist,omitempty"`
	Image       string            `json:"image,omitempty"`
	Type        string            `json:"type,omitempty"`
	Duration    int               `json:"duration,omitempty"`
	Ending      string            `json:"ending,omitempty"`
	LastUpdated *time.Time        `json:"last_updated,omitempty"`
	Resource    *Resource         `json:"resource,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasEpisode reports whether the show already links the episode. Detection
// is by identity (UUID), not value equality on mutable fields.
func (s *Show) HasEpisode(id uuid.UUID) bool {
	for _, episode := range s.Episodes {
		if episode != nil && episode.UUID == id {
			return true
		}
	}
	return false
}

// AppendEpisode links an episode exactly once and restores airdate order.
// Returns true when the episode was newly linked.
func (s *Show) AppendEpisode(episode *Episode) bool {
	if episode == nil || s.HasEpisode(episode.UUID) {
		return false
	}
	s.Episodes = append(s.Episodes, episode)
	s.SortEpisodes()
	return true
}

// SortEpisodes restores the storage order: chronological by airdate,
// UUID as the tiebreak so the order is total regardless of insertion
// sequence. Feed emission walks the list backwards for newest-first.
func (s *Show) SortEpisodes() {
	sort.SliceStable(s.Episodes, func(i, j int) bool {
		a, b := s.Episodes[i], s.Episodes[j]
		if !a.Airdate.Equal(b.Airdate) {
			return a.Airdate.Before(b.Airdate)
		}
		return a.UUID.String() < b.UUID.String()
	})
}

// HostUUIDs returns the show's host identities in list order.
func (s *Show) HostUUIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Hosts))
	for _, host := range s.Hosts {
		if host != nil {
			ids = append(ids, host.UUID)
		}
	}
	return ids
}
