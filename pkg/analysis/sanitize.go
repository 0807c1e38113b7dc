package analysis

import "strings"

// sensitiveFragments are matched against lower-cased top-level keys.
var sensitiveFragments = []string{"email", "phone", "address", "id", "_id", "password"}

// Sanitize returns a shallow copy of data without keys that look like
// personal fields. Nested values are copied as-is. It is a best-effort
// scrub, not a PII guarantee.
func Sanitize(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	out := make(map[string]any, len(data))
	for key, value := range data {
		if isSensitiveKey(key) {
			continue
		}
		out[key] = value
	}
	return out
}

// SanitizeValue applies Sanitize when v is an object and returns any other
// value unchanged.
func SanitizeValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		return Sanitize(m)
	}
	return v
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(k, fragment) {
			return true
		}
	}
	return false
}
