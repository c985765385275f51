// Package extract lifts JSON-LD structured-data records out of station
// page markup. It exposes only the record shape enrichment depends on: a
// type discriminator, an id string, and typed property accessors.
package extract
