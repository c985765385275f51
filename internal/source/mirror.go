package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"aircheck/internal/catalog"
	"aircheck/internal/logging"
)

// Enumerator lists the resources a source can produce without sitemap
// discovery. Sources answering false to UsesSitemap implement it.
type Enumerator interface {
	Enumerate(ctx context.Context, showsPath, playerSuffix string) (map[string]*catalog.Resource, error)
}

// MirrorSource reads previously fetched documents from a local directory
// tree laid out like the site's URL space. It serves offline runs and
// fixtures; URLs are still reported against the configured base so the
// catalog stays comparable with live runs.
type MirrorSource struct {
	dir    string
	base   string
	logger *slog.Logger
}

var _ Enumerator = (*MirrorSource)(nil)

// NewMirror creates a file source rooted at dir.
func NewMirror(dir, baseURL string, logger *slog.Logger) (*MirrorSource, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("mirror directory required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat mirror directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mirror path %q is not a directory", dir)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MirrorSource{
		dir:    dir,
		base:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger: logging.NewComponentLogger(logger, "source"),
	}, nil
}

// GetReference reads the file behind ref. A reference naming a directory
// falls through to its index.html.
func (s *MirrorSource) GetReference(_ context.Context, ref string) ([]byte, bool, error) {
	ref = strings.Trim(strings.TrimSpace(ref), "/")
	target := filepath.Join(s.dir, filepath.FromSlash(ref))
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
	}
	body, err := os.ReadFile(target)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read mirror file %q: %w", target, err)
	}
	return body, true, nil
}

// RelativePath converts an absolute URL under the base into a reference.
func (s *MirrorSource) RelativePath(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if s.base != "" {
		if rest, ok := strings.CutPrefix(trimmed, s.base); ok {
			return strings.Trim(rest, "/")
		}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return strings.Trim(trimmed, "/")
	}
	return strings.Trim(parsed.Path, "/")
}

// Reference resolves a possibly relative URL against the base.
func (s *MirrorSource) Reference(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, "://") {
		return strings.TrimRight(trimmed, "/")
	}
	return s.base + "/" + strings.Trim(trimmed, "/")
}

// UsesSitemap reports that mirror sources enumerate files instead of
// walking sitemaps.
func (s *MirrorSource) UsesSitemap() bool { return false }

// Enumerate walks the mirror tree and synthesizes a resource per page
// document under the shows subtree. Player documents are reachable through
// their episode pages and are not resources themselves.
func (s *MirrorSource) Enumerate(_ context.Context, showsPath, playerSuffix string) (map[string]*catalog.Resource, error) {
	filter := strings.ToLower(strings.Trim(showsPath, "/"))
	suffix := strings.Trim(playerSuffix, "/")
	resources := make(map[string]*catalog.Resource)

	err := filepath.WalkDir(s.dir, func(walkPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.dir, walkPath)
		if err != nil {
			return err
		}
		slashed := filepath.ToSlash(rel)
		if filter != "" && !strings.Contains(strings.ToLower(slashed), filter) {
			return nil
		}

		pagePath, ok := pageFromFile(slashed, suffix)
		if !ok {
			return nil
		}
		resourceURL := s.base + "/" + pagePath
		resource := &catalog.Resource{URL: resourceURL, Source: "mirror"}
		if info, err := entry.Info(); err == nil {
			modified := info.ModTime().UTC()
			resource.LastUpdated = &modified
		}
		resources[resourceURL] = resource
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk mirror directory: %w", err)
	}

	s.logger.Info("mirror enumeration complete", logging.Int("resources", len(resources)))
	return resources, nil
}

// pageFromFile maps a mirror file path to its page URL path. index.html
// stands for its directory; player documents are skipped.
func pageFromFile(slashed, playerSuffix string) (string, bool) {
	name := path.Base(slashed)
	if playerSuffix != "" && name == playerSuffix {
		return "", false
	}
	switch {
	case name == "index.html":
		return path.Dir(slashed), true
	case strings.HasSuffix(name, ".html"):
		return strings.TrimSuffix(slashed, ".html"), true
	}
	return "", false
}
