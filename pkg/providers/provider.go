package providers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

// validateRequired checks each required key in declared order and reports
// the first one that is absent or empty. All implementations share this so
// validation behavior stays deterministic across providers.
func validateRequired(displayName string, required []string, params engine.Parameters) error {
	for _, key := range required {
		value, ok := params[key]
		if !ok || !plausible(value) {
			return engine.NewMissingParameter(displayName, key)
		}
	}
	return nil
}

// plausible rejects values that cannot describe a VM parameter: nil and
// blank strings. Numbers, booleans, arrays, and nested objects pass.
func plausible(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

// newInstanceID generates an identifier with the given provider prefix and
// a random 8-hex-character suffix.
func newInstanceID(prefix string) string {
	id := uuid.New()
	return fmt.Sprintf("%s%x", prefix, id[:4])
}
