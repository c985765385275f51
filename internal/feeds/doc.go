// Package feeds renders one RSS document per catalogued show, newest
// episode first, with deterministic slugged filenames.
package feeds
