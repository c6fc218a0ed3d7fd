package orgcsv

import (
	"encoding/json"
	"strings"

	"orgroles/internal/sanitize"
)

// ParseCapabilities decodes a JSON object of capability -> flag. Anything that
// is not a JSON object yields an empty set. Values are coerced to booleans.
func ParseCapabilities(raw string) map[string]bool {
	caps := map[string]bool{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return caps
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return caps
	}
	for k, v := range obj {
		key := sanitize.Key(k)
		if key == "" {
			continue
		}
		caps[key] = truthy(v)
	}
	return caps
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
