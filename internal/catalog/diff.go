package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldChange names one changed field with the old and new values in
// display form.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Modification pairs an entity key with its field-level changes.
type Modification struct {
	Key     string        `json:"key"`
	Changes []FieldChange `json:"changes"`
}

// Ref identifies one added or removed entity: the map key plus the
// entity's display title where it has one, so a change report reads
// without a catalog lookup.
type Ref struct {
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
}

func (r Ref) String() string {
	if r.Title == "" {
		return r.Key
	}
	return r.Key + " (" + r.Title + ")"
}

// KindDiff describes one entity kind's changes between two catalogs.
// Added and Removed hold entity references; Modified holds keys present
// in both whose structural equality failed.
type KindDiff struct {
	Added    []Ref          `json:"added,omitempty"`
	Removed  []Ref          `json:"removed,omitempty"`
	Modified []Modification `json:"modified,omitempty"`
}

// Empty reports whether the kind saw no changes.
func (k KindDiff) Empty() bool {
	return len(k.Added) == 0 && len(k.Removed) == 0 && len(k.Modified) == 0
}

// Diff is the structural difference between two catalog states, computed
// per entity kind.
type Diff struct {
	Shows     KindDiff `json:"shows"`
	Episodes  KindDiff `json:"episodes"`
	Hosts     KindDiff `json:"hosts"`
	Resources KindDiff `json:"resources"`
}

// Empty reports whether the two catalogs were structurally identical.
func (d *Diff) Empty() bool {
	return d.Shows.Empty() && d.Episodes.Empty() && d.Hosts.Empty() && d.Resources.Empty()
}

// Summary renders a one-line-per-kind human-readable change report.
func (d *Diff) Summary() string {
	var b strings.Builder
	for _, entry := range []struct {
		name string
		kind KindDiff
	}{
		{"shows", d.Shows},
		{"episodes", d.Episodes},
		{"hosts", d.Hosts},
		{"resources", d.Resources},
	} {
		if entry.kind.Empty() {
			continue
		}
		fmt.Fprintf(&b, "%s: +%d -%d ~%d\n", entry.name, len(entry.kind.Added), len(entry.kind.Removed), len(entry.kind.Modified))
		for _, ref := range entry.kind.Added {
			fmt.Fprintf(&b, "  + %s\n", ref)
		}
		for _, ref := range entry.kind.Removed {
			fmt.Fprintf(&b, "  - %s\n", ref)
		}
		for _, mod := range entry.kind.Modified {
			for _, change := range mod.Changes {
				fmt.Fprintf(&b, "  %s %s: %s -> %s\n", mod.Key, change.Field, change.Old, change.New)
			}
		}
	}
	if b.Len() == 0 {
		return "no changes"
	}
	return strings.TrimRight(b.String(), "\n")
}

// Diff computes the structural difference from c to other: added = keys in
// other missing from c, removed = keys in c missing from other, modified =
// keys in both whose full structural equality fails, with the changed
// fields named.
func (c *Catalog) Diff(other *Catalog) *Diff {
	c.mu.RLock()
	defer c.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	diff := &Diff{}
	diff.Shows = diffKind(c.shows, other.shows, showRef, diffShow)
	diff.Episodes = diffKind(c.episodes, other.episodes, episodeRef, diffEpisode)
	diff.Hosts = diffKind(c.hosts, other.hosts, hostRef, diffHost)
	diff.Resources = diffKind(c.resources, other.resources, resourceRef, diffResource)
	return diff
}

func showRef(id uuid.UUID, show *Show) Ref { return Ref{Key: id.String(), Title: show.Title} }

func episodeRef(id uuid.UUID, episode *Episode) Ref {
	return Ref{Key: id.String(), Title: episode.Title}
}

func hostRef(id uuid.UUID, host *Host) Ref { return Ref{Key: id.String(), Title: host.Name} }

func resourceRef(url string, _ *Resource) Ref { return Ref{Key: url} }

func diffKind[K comparable, V any](current, next map[K]V, describe func(K, V) Ref, compare func(V, V) []FieldChange) KindDiff {
	var kind KindDiff
	for key, nxt := range next {
		if _, ok := current[key]; !ok {
			kind.Added = append(kind.Added, describe(key, nxt))
		}
	}
	for key, cur := range current {
		nxt, ok := next[key]
		if !ok {
			kind.Removed = append(kind.Removed, describe(key, cur))
			continue
		}
		if changes := compare(cur, nxt); len(changes) > 0 {
			kind.Modified = append(kind.Modified, Modification{Key: describe(key, cur).Key, Changes: changes})
		}
	}
	sort.Slice(kind.Added, func(i, j int) bool { return kind.Added[i].Key < kind.Added[j].Key })
	sort.Slice(kind.Removed, func(i, j int) bool { return kind.Removed[i].Key < kind.Removed[j].Key })
	sort.Slice(kind.Modified, func(i, j int) bool { return kind.Modified[i].Key < kind.Modified[j].Key })
	return kind
}

func diffShow(a, b *Show) []FieldChange {
	var changes []FieldChange
	changes = appendChange(changes, "title", a.Title, b.Title)
	changes = appendChange(changes, "url", a.URL, b.URL)
	changes = appendChange(changes, "image", a.Image, b.Image)
	changes = appendChange(changes, "description", a.Description, b.Description)
	changes = appendChange(changes, "type", a.Type, b.Type)
	changes = appendChange(changes, "last_updated", timeString(a.LastUpdated), timeString(b.LastUpdated))
	changes = appendChange(changes, "hosts", uuidListString(a.HostUUIDs()), uuidListString(b.HostUUIDs()))
	changes = appendChange(changes, "episodes", episodeListString(a.Episodes), episodeListString(b.Episodes))
	changes = appendChange(changes, "metadata", metadataString(a.Metadata), metadataString(b.Metadata))
	changes = append(changes, prefixChanges("resource.", diffOptionalResource(a.Resource, b.Resource))...)
	return changes
}

func diffEpisode(a, b *Episode) []FieldChange {
	var changes []FieldChange
	changes = appendChange(changes, "title", a.Title, b.Title)
	changes = appendChange(changes, "airdate", a.Airdate.UTC().Format(time.RFC3339), b.Airdate.UTC().Format(time.RFC3339))
	changes = appendChange(changes, "url", a.URL, b.URL)
	changes = appendChange(changes, "media_url", a.MediaURL, b.MediaURL)
	changes = appendChange(changes, "show_uuid", a.ShowUUID.String(), b.ShowUUID.String())
	changes = appendChange(changes, "hosts", uuidListString(a.Hosts), uuidListString(b.Hosts))
	changes = appendChange(changes, "description", a.Description, b.Description)
	changes = appendChange(changes, "songlist", a.Songlist, b.Songlist)
	changes = appendChange(changes, "image", a.Image, b.Image)
	changes = appendChange(changes, "type", a.Type, b.Type)
	changes = appendChange(changes, "duration", fmt.Sprint(a.Duration), fmt.Sprint(b.Duration))
	changes = appendChange(changes, "ending", a.Ending, b.Ending)
	changes = appendChange(changes, "last_updated", timeString(a.LastUpdated), timeString(b.LastUpdated))
	changes = appendChange(changes, "metadata", metadataString(a.Metadata), metadataString(b.Metadata))
	changes = append(changes, prefixChanges("resource.", diffOptionalResource(a.Resource, b.Resource))...)
	return changes
}

func diffHost(a, b *Host) []FieldChange {
	var changes []FieldChange
	changes = appendChange(changes, "name", a.Name, b.Name)
	changes = appendChange(changes, "title", a.Title, b.Title)
	changes = appendChange(changes, "url", a.URL, b.URL)
	changes = appendChange(changes, "image", a.Image, b.Image)
	changes = appendChange(changes, "socials", strings.Join(a.Socials, ","), strings.Join(b.Socials, ","))
	changes = appendChange(changes, "description", a.Description, b.Description)
	changes = appendChange(changes, "type", a.Type, b.Type)
	changes = appendChange(changes, "metadata", metadataString(a.Metadata), metadataString(b.Metadata))
	return changes
}

func diffResource(a, b *Resource) []FieldChange {
	var changes []FieldChange
	changes = appendChange(changes, "url", a.URL, b.URL)
	changes = appendChange(changes, "source", a.Source, b.Source)
	changes = appendChange(changes, "last_updated", timeString(a.LastUpdated), timeString(b.LastUpdated))
	changes = appendChange(changes, "metadata", metadataString(a.Metadata), metadataString(b.Metadata))
	return changes
}

func diffOptionalResource(a, b *Resource) []FieldChange {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return []FieldChange{{Field: "url", Old: "", New: b.URL}}
	case b == nil:
		return []FieldChange{{Field: "url", Old: a.URL, New: ""}}
	default:
		return diffResource(a, b)
	}
}

func appendChange(changes []FieldChange, field, old, next string) []FieldChange {
	if old == next {
		return changes
	}
	return append(changes, FieldChange{Field: field, Old: old, New: next})
}

func prefixChanges(prefix string, changes []FieldChange) []FieldChange {
	for i := range changes {
		changes[i].Field = prefix + changes[i].Field
	}
	return changes
}

func timeString(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func uuidListString(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}

func episodeListString(episodes []*Episode) string {
	parts := make([]string, 0, len(episodes))
	for _, episode := range episodes {
		if episode != nil {
			parts = append(parts, episode.UUID.String())
		}
	}
	return strings.Join(parts, ",")
}

func metadataString(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+metadata[key])
	}
	return strings.Join(parts, ";")
}
