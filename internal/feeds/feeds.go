package feeds

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	gorilla "github.com/gorilla/feeds"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/logging"
)

// Writer renders one RSS document per show into the feed directory.
type Writer struct {
	cat    *catalog.Catalog
	dir    string
	opts   config.Feeds
	logger *slog.Logger
}

// NewWriter creates a feed writer over a catalog.
func NewWriter(cat *catalog.Catalog, dir string, opts config.Feeds, logger *slog.Logger) *Writer {
	return &Writer{
		cat:    cat,
		dir:    dir,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "feeds"),
	}
}

// WriteAll renders every show's feed. Returns the number of feeds written.
func (w *Writer) WriteAll() (int, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create feed directory: %w", err)
	}

	written := 0
	for _, show := range w.cat.ListShows(nil) {
		name, err := w.writeShow(show)
		if err != nil {
			return written, err
		}
		w.logger.Debug("feed written",
			logging.String("show", show.Title),
			logging.String("file", name),
			logging.Int("episodes", min(len(show.Episodes), w.maxEpisodes())))
		written++
	}
	w.logger.Info("feeds rendered", logging.Int("count", written))
	return written, nil
}

// FileName returns the feed filename a show maps to.
func FileName(show *catalog.Show) string {
	slug := Slug(show.Title)
	if slug == "" {
		slug = show.UUID.String()
	}
	return slug + ".xml"
}

func (w *Writer) writeShow(show *catalog.Show) (string, error) {
	rss, err := w.Render(show)
	if err != nil {
		return "", err
	}
	name := FileName(show)
	if err := os.WriteFile(filepath.Join(w.dir, name), []byte(rss), 0o644); err != nil {
		return "", fmt.Errorf("write feed %q: %w", name, err)
	}
	return name, nil
}

// Render produces the RSS document for one show, newest episode first.
func (w *Writer) Render(show *catalog.Show) (string, error) {
	feed := &gorilla.Feed{
		Title:       show.Title,
		Link:        &gorilla.Link{Href: w.feedLink(show)},
		Description: show.Description,
	}
	if len(show.Hosts) > 0 {
		feed.Author = &gorilla.Author{Name: hostNames(show.Hosts)}
	}
	if show.LastUpdated != nil {
		feed.Updated = *show.LastUpdated
	}

	limit := w.maxEpisodes()
	// Episodes are stored oldest-first; walk backwards for newest-first.
	for i := len(show.Episodes) - 1; i >= 0 && len(feed.Items) < limit; i-- {
		feed.Items = append(feed.Items, w.item(show.Episodes[i]))
	}

	// Drop to the RSS-specific view so the channel language is set.
	rssFeed := (&gorilla.Rss{Feed: feed}).RssFeed()
	rssFeed.Language = w.opts.Language
	rss, err := gorilla.ToXML(rssFeed)
	if err != nil {
		return "", fmt.Errorf("render feed for %q: %w", show.Title, err)
	}
	return rss, nil
}

func (w *Writer) item(episode *catalog.Episode) *gorilla.Item {
	item := &gorilla.Item{
		Title:       episode.Title,
		Link:        &gorilla.Link{Href: episode.URL},
		Description: episode.Description,
		Id:          "urn:uuid:" + episode.UUID.String(),
		Created:     episode.Airdate,
	}
	if episode.MediaURL != "" {
		item.Enclosure = &gorilla.Enclosure{
			Url:    episode.MediaURL,
			Length: "0",
			Type:   mediaType(episode.MediaURL),
		}
	}
	if names := w.episodeHosts(episode); names != "" {
		item.Author = &gorilla.Author{Name: names}
	}
	return item
}

func (w *Writer) episodeHosts(episode *catalog.Episode) string {
	names := make([]string, 0, len(episode.Hosts))
	for _, id := range episode.Hosts {
		if host, ok := w.cat.GetHost(id); ok && host.Name != "" {
			names = append(names, host.Name)
		}
	}
	return strings.Join(names, ", ")
}

func (w *Writer) feedLink(show *catalog.Show) string {
	if w.opts.BaseURL != "" {
		return strings.TrimRight(w.opts.BaseURL, "/") + "/" + FileName(show)
	}
	return show.URL
}

func (w *Writer) maxEpisodes() int {
	if w.opts.MaxEpisodes > 0 {
		return w.opts.MaxEpisodes
	}
	return 50
}

func hostNames(hosts []*catalog.Host) string {
	names := make([]string, 0, len(hosts))
	for _, host := range hosts {
		if host != nil && host.Name != "" {
			names = append(names, host.Name)
		}
	}
	return strings.Join(names, ", ")
}

func mediaType(mediaURL string) string {
	switch strings.ToLower(path.Ext(mediaURL)) {
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".aac":
		return "audio/aac"
	default:
		return "audio/mpeg"
	}
}
