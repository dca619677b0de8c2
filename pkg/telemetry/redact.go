package telemetry

import "strings"

// sensitiveKeyPatterns are the substrings that mark a parameter key as
// sensitive. Matching is case-insensitive.
var sensitiveKeyPatterns = []string{
	"password",
	"credential",
	"token",
	"secret",
	"api_key",
	"key",
}

// redactedValue replaces sensitive parameter values in log output.
const redactedValue = "***REDACTED***"

// IsSensitiveKey reports whether a parameter key matches a credential,
// token, or secret pattern. Adapters use this to know which fields must
// never be surfaced in plain text.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// RedactParameters returns a copy of the parameter bag with every sensitive
// value replaced. The input map is never modified; stored records keep the
// original values for audit.
func RedactParameters(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if IsSensitiveKey(k) {
			out[k] = redactedValue
			continue
		}
		out[k] = v
	}
	return out
}
