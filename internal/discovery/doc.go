// Package discovery turns a station site's robots.txt and sitemap tree
// into the universe of show resources. Sitemap indexes are expanded
// recursively with cycle protection; leaf entries are filtered to the
// configured show path and carried verbatim into resource metadata.
package discovery
