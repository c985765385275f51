package station

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Upstream id fields embed the UUID inside arbitrary prefixes
// ("#show-4f0c…", "urn:uuid:…"), sometimes dashed and sometimes as a bare
// 32-hex run. Both forms are accepted; the dashed form is tried first so a
// dashed UUID is never misread as five short hex runs.
var (
	dashedUUIDPattern = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	hexUUIDPattern    = regexp.MustCompile(`(?i)[0-9a-f]{32}`)
)

// ExtractUUID locates a UUID substring embedded in value and returns it in
// canonical form. Absence is an error; callers decide whether that is
// fatal for their record.
func ExtractUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, fmt.Errorf("extract uuid: empty value")
	}
	candidate := dashedUUIDPattern.FindString(trimmed)
	if candidate == "" {
		candidate = hexUUIDPattern.FindString(trimmed)
	}
	if candidate == "" {
		return uuid.Nil, fmt.Errorf("extract uuid: no uuid in %q", trimmed)
	}
	parsed, err := uuid.Parse(candidate)
	if err != nil {
		return uuid.Nil, fmt.Errorf("extract uuid: parse %q: %w", candidate, err)
	}
	return parsed, nil
}

// NormalizeUUID enforces canonical UUID form at the catalog boundary.
// Values that cannot be normalized are rejected as serialization errors
// rather than silently accepted as strings.
func NormalizeUUID(value string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, Wrap(ErrSerialization, "station", "normalize uuid", value, err)
	}
	return parsed, nil
}
