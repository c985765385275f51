package catalog

import (
	"fmt"
	"regexp"
	"time"
)

// Filter narrows catalog listings: a compiled substring-or-regex match
// against a per-kind key (show/episode: URL, host: name, resource: URL)
// ANDed with an inclusive date range against a per-kind date
// (show: last_updated, episode: airdate, resource: discovery lastmod).
// A nil Filter, or an absent half, is a pass-through.
type Filter struct {
	match *regexp.Regexp
	since *time.Time
	until *time.Time
}

// NewFilter compiles a filter. The match expression is tried as a regular
// expression first; an expression that does not compile is used as a
// literal substring.
func NewFilter(match string, since, until *time.Time) (*Filter, error) {
	if since != nil && until != nil && until.Before(*since) {
		return nil, fmt.Errorf("filter: until %s precedes since %s", until.Format(time.RFC3339), since.Format(time.RFC3339))
	}
	filter := &Filter{since: since, until: until}
	if match != "" {
		compiled, err := regexp.Compile(match)
		if err != nil {
			compiled = regexp.MustCompile(regexp.QuoteMeta(match))
		}
		filter.match = compiled
	}
	return filter, nil
}

func (f *Filter) matchKey(key string) bool {
	if f == nil || f.match == nil {
		return true
	}
	return f.match.MatchString(key)
}

// matchDate applies the inclusive range. Entities without a date fail a
// range that is present; they cannot be placed inside it.
func (f *Filter) matchDate(date *time.Time) bool {
	if f == nil || (f.since == nil && f.until == nil) {
		return true
	}
	if date == nil {
		return false
	}
	if f.since != nil && date.Before(*f.since) {
		return false
	}
	if f.until != nil && date.After(*f.until) {
		return false
	}
	return true
}

func (f *Filter) matchShow(show *Show) bool {
	if show == nil {
		return false
	}
	return f.matchKey(show.URL) && f.matchDate(show.LastUpdated)
}

func (f *Filter) matchEpisode(episode *Episode) bool {
	if episode == nil {
		return false
	}
	airdate := episode.Airdate
	return f.matchKey(episode.URL) && f.matchDate(&airdate)
}

// Hosts carry no date; the range half of the filter does not apply to them.
func (f *Filter) matchHost(host *Host) bool {
	if host == nil {
		return false
	}
	return f.matchKey(host.Name)
}

// MatchResource applies the filter to a resource that is not (yet) in a
// catalog; the updater narrows freshly discovered resources with it.
func (f *Filter) MatchResource(resource *Resource) bool {
	if resource == nil {
		return false
	}
	return f.matchKey(resource.URL) && f.matchDate(resource.LastUpdated)
}
