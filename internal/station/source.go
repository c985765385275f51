package station

import "context"

// Source resolves logical references (robots.txt, sitemap paths, show
// pages, episode player documents) to raw bytes. Implementations cover a
// live network source and a cached local-file source; discovery and
// enrichment only ever speak to this interface.
type Source interface {
	// GetReference fetches the document behind ref. A missing document
	// returns (nil, false, nil); the error return is reserved for
	// transport failures.
	GetReference(ctx context.Context, ref string) ([]byte, bool, error)

	// RelativePath converts an absolute URL under the source's base into
	// the reference form GetReference accepts.
	RelativePath(url string) string

	// Reference resolves a possibly relative URL against the source's
	// base into a canonical absolute form.
	Reference(url string) string

	// UsesSitemap reports whether this source participates in sitemap
	// discovery. Local mirror sources answer false.
	UsesSitemap() bool
}
