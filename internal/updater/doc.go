// Package updater drives a reconciliation pass end to end: discovery,
// enrichment into a fresh catalog, merge into the persisted state, and a
// single save plus feed render at the end of the pass.
package updater
