package staging

import (
	"fmt"
	"strconv"
)

// Normalize renders a value in the canonical string form used for
// change detection. Booleans become "true"/"false" and numbers drop
// trailing zeros, so 10, 10.0 and "10" all normalize identically.
func Normalize(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeMap applies Normalize to every value of an arbitrary
// attribute map, producing a baseline suitable for NewStore.
func NormalizeMap(values map[string]any) map[string]string {
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		normalized[key] = Normalize(value)
	}
	return normalized
}
