// Package source provides the document fetchers behind the station.Source
// interface: a live HTTP source with an optional SQLite fetch cache, and a
// local mirror source for offline runs.
package source
