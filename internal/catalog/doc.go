// Package catalog holds the reconciliation store at the center of
// aircheck: typed Show, Episode, Host, and Resource entities, the
// four-way keyed Catalog with cascading insertion, listing filters, and
// the structural diff between two catalog states.
//
// Identity rules: entities are keyed by UUID (assigned once at enrichment
// and never changed for the same source URL), resources by URL. Episodes
// reference their show and hosts by UUID only; the show owns the episode
// list and keeps it in airdate order. AddShow re-establishes the
// cross-entity invariants on every insertion, so the catalog stays
// internally consistent no matter which entity arrived first.
package catalog
