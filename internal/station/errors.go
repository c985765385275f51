package station

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDiscovery marks failures that make resource discovery impossible
	// (robots.txt unreachable or unparsable). Fatal to the whole run.
	ErrDiscovery = errors.New("discovery error")

	// ErrSitemapRead marks a single sitemap that could not be fetched or
	// parsed. Its contributions are dropped; the run continues.
	ErrSitemapRead = errors.New("sitemap read error")

	// ErrEnrichment marks a resource whose canonical document is missing
	// or lacks a required structured record or field. The resource is
	// skipped unless it was explicitly selected.
	ErrEnrichment = errors.New("enrichment error")

	// ErrAssociationInvariant marks an association step that touched zero
	// or more than two entities. Always a logic bug, always fatal.
	ErrAssociationInvariant = errors.New("association invariant violated")

	// ErrSelectionMismatch marks a user selection that does not fully
	// resolve against discovered resources. Fatal.
	ErrSelectionMismatch = errors.New("selection mismatch")

	// ErrSerialization marks an unsupported or non-normalizable value
	// encountered while persisting. Fatal for that save operation.
	ErrSerialization = errors.New("serialization error")
)

// Wrap builds an error message carrying component and operation context
// while tagging it with the provided marker for later classification.
// The marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrEnrichment
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error belongs to a class that must abort the
// whole run rather than skip a single resource.
func IsFatal(err error) bool {
	switch {
	case errors.Is(err, ErrDiscovery),
		errors.Is(err, ErrAssociationInvariant),
		errors.Is(err, ErrSelectionMismatch),
		errors.Is(err, ErrSerialization):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "station failure"
	}
	return strings.Join(parts, ": ")
}
