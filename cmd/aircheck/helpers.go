package main

import (
	"fmt"
	"strings"
	"time"
)

var dateFlagLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// parseDateFlag accepts either a bare date or a full RFC 3339 timestamp.
func parseDateFlag(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateFlagLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, fmt.Errorf("--%s: unparsable date %q (want YYYY-MM-DD or RFC 3339)", name, value)
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format("2006-01-02")
}
