// Package testsupport provides shared helpers for tests: temp-dir seeded
// configurations and an in-memory fixture Source with fetch counting.
package testsupport
