// Package enrich resolves discovered resources into fully-populated
// catalog entities. URL shape decides the kind; show pages go through the
// structured-data extractor, episodes through their player JSON document.
// Episodes always resolve their parent show first, and the association
// step asserts it touched exactly one or two entities.
package enrich
