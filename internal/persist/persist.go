package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"aircheck/internal/catalog"
	"aircheck/internal/station"
)

// ShowDirectory is the serialized view of a catalog: the show list with
// hosts, episodes, and resources embedded. The UUID-keyed catalog maps are
// rebuilt from it on load.
type ShowDirectory struct {
	SavedAt time.Time       `json:"saved_at"`
	Shows   []*catalog.Show `json:"shows"`
}

// Directory flattens a catalog into its serialized view.
func Directory(cat *catalog.Catalog) *ShowDirectory {
	return &ShowDirectory{
		SavedAt: time.Now().UTC(),
		Shows:   cat.ListShows(nil),
	}
}

// Save writes the catalog state file atomically: marshal to a sibling temp
// file, then rename over the target.
func Save(path string, cat *catalog.Catalog) error {
	payload, err := json.MarshalIndent(Directory(cat), "", "  ")
	if err != nil {
		return station.Wrap(station.ErrSerialization, "persist", "marshal state", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Clone deep-copies a catalog through its serialized form. Used to keep a
// pre-merge snapshot for diffing.
func Clone(cat *catalog.Catalog) (*catalog.Catalog, error) {
	payload, err := json.Marshal(Directory(cat))
	if err != nil {
		return nil, station.Wrap(station.ErrSerialization, "persist", "clone catalog", "", err)
	}
	var directory ShowDirectory
	if err := json.Unmarshal(payload, &directory); err != nil {
		return nil, station.Wrap(station.ErrSerialization, "persist", "clone catalog", "", err)
	}
	return Rebuild(&directory)
}

// Load reads a state file and rebuilds the catalog. A missing file is not
// an error: it reports exists=false with an empty catalog.
func Load(path string) (*catalog.Catalog, bool, error) {
	payload, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return catalog.New(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read state file: %w", err)
	}

	var directory ShowDirectory
	if err := json.Unmarshal(payload, &directory); err != nil {
		return nil, false, station.Wrap(station.ErrSerialization, "persist", "unmarshal state", path, err)
	}

	cat, err := Rebuild(&directory)
	if err != nil {
		return nil, false, err
	}
	return cat, true, nil
}

// Rebuild reconstructs catalog maps from the serialized show list. This is
// the one place structural invariants are re-established on a cold start:
// UUIDs present, episode airdates set, host records shared by identity, and
// episode back-references matching their owning show.
func Rebuild(directory *ShowDirectory) (*catalog.Catalog, error) {
	cat := catalog.New()
	hostIndex := make(map[uuid.UUID]*catalog.Host)

	for _, show := range directory.Shows {
		if show == nil {
			continue
		}
		if show.UUID == uuid.Nil {
			return nil, station.Wrap(station.ErrSerialization, "persist", "rebuild catalog",
				fmt.Sprintf("show %q has no uuid", show.URL), nil)
		}

		// Re-share host records: the serialized form embeds a copy per
		// show, the catalog holds one record per UUID.
		for i, host := range show.Hosts {
			if host == nil || host.UUID == uuid.Nil {
				return nil, station.Wrap(station.ErrSerialization, "persist", "rebuild catalog",
					fmt.Sprintf("show %q carries a host without a uuid", show.URL), nil)
			}
			if canonical, ok := hostIndex[host.UUID]; ok {
				show.Hosts[i] = canonical
			} else {
				hostIndex[host.UUID] = host
			}
		}

		for _, episode := range show.Episodes {
			if episode == nil || episode.UUID == uuid.Nil {
				return nil, station.Wrap(station.ErrSerialization, "persist", "rebuild catalog",
					fmt.Sprintf("show %q carries an episode without a uuid", show.URL), nil)
			}
			if episode.Airdate.IsZero() {
				return nil, station.Wrap(station.ErrSerialization, "persist", "rebuild catalog",
					fmt.Sprintf("episode %s has no airdate", episode.UUID), nil)
			}
			switch episode.ShowUUID {
			case uuid.Nil:
				episode.ShowUUID = show.UUID
			case show.UUID:
			default:
				return nil, station.Wrap(station.ErrSerialization, "persist", "rebuild catalog",
					fmt.Sprintf("episode %s references show %s but is stored under %s",
						episode.UUID, episode.ShowUUID, show.UUID), nil)
			}
		}

		if err := cat.AddShow(show); err != nil {
			return nil, station.Wrap(station.ErrSerialization, "persist", "rebuild catalog", show.URL, err)
		}
	}
	return cat, nil
}
