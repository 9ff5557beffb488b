package invoke

import (
	"errors"
	"fmt"

	"github.com/bedrockmgr/bsmctl/internal/api"
)

// FailureMessage flattens the shapes a failed action can arrive in.
// The transport gives us typed *api.APIError values, decoded response
// bodies with an "error" or "message" field, plain error values, or a
// bare string. Normalizing here keeps the call sites free of type
// switches.
func FailureMessage(failure any) string {
	switch f := failure.(type) {
	case nil:
		return "unknown error"
	case *api.APIError:
		return api.GetShortErrorMessage(f)
	case error:
		var apiErr *api.APIError
		if errors.As(f, &apiErr) {
			return api.GetShortErrorMessage(apiErr)
		}
		return f.Error()
	case map[string]any:
		if msg := fieldedMessage(f); msg != "" {
			return msg
		}
		return "unknown error"
	case string:
		if f == "" {
			return "unknown error"
		}
		return f
	default:
		return fmt.Sprintf("%v", f)
	}
}

// fieldedMessage pulls the message out of a decoded error body,
// preferring "error" over "message" since the manager puts the
// specific cause there.
func fieldedMessage(body map[string]any) string {
	for _, field := range []string{"error", "message"} {
		if value, ok := body[field]; ok {
			if str, ok := value.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}
