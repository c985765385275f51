package enrich

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind partitions resource URLs into the two enrichable entity kinds.
type Kind int

const (
	KindShow Kind = iota
	KindEpisode
)

func (k Kind) String() string {
	if k == KindEpisode {
		return "episode"
	}
	return "show"
}

// Classify decides the entity kind purely from URL shape: a URL whose path
// carries at least two segments after the show-listing path is an episode,
// otherwise it is a show. No network access is involved.
func Classify(rawURL, showsPath string) (Kind, error) {
	segments, err := segmentsAfterShowsRoot(rawURL, showsPath)
	if err != nil {
		return KindShow, err
	}
	if len(segments) >= 2 {
		return KindEpisode, nil
	}
	return KindShow, nil
}

// ShowURL truncates an episode URL to its parent show URL: everything up
// through the first path segment after the shows root.
func ShowURL(rawURL, showsPath string) (string, error) {
	segments, err := segmentsAfterShowsRoot(rawURL, showsPath)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("no show segment in %q", rawURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	root := strings.Trim(showsPath, "/")
	parsed.Path = "/" + root + "/" + segments[0]
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

// segmentsAfterShowsRoot returns the path segments following the
// show-listing path. The shows root must be present in the URL path.
func segmentsAfterShowsRoot(rawURL, showsPath string) ([]string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	segments := splitPath(parsed.Path)
	root := splitPath(showsPath)
	if len(root) == 0 {
		return segments, nil
	}
	for i := 0; i+len(root) <= len(segments); i++ {
		if equalFoldSlice(segments[i:i+len(root)], root) {
			return segments[i+len(root):], nil
		}
	}
	return nil, fmt.Errorf("url %q outside shows path %q", rawURL, showsPath)
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func equalFoldSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
