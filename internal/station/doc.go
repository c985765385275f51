// Package station holds the shared domain kernel for the catalog mirror:
// the Source abstraction that resolves logical references to raw bytes,
// the error taxonomy used across discovery, enrichment, and persistence,
// and UUID normalization helpers.
//
// Everything above this package (discovery, enrichment, the catalog, the
// updater) speaks in terms of these types; keeping them here avoids import
// cycles between the pipeline stages.
package station
