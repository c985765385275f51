// Package persist serializes the catalog to a JSON state file and rebuilds
// it on load, re-establishing the catalog's structural invariants.
package persist
