package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// genericFailureMessage is used when the backend returns no structured payload.
const genericFailureMessage = "request failed, please try again"

// Error is the normalized failure returned by every client call that reached
// the backend. Transport failures are wrapped separately by the caller.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// StatusOf extracts the HTTP status from an *Error, or 0.
func StatusOf(err error) int {
	if apiErr, ok := err.(*Error); ok {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the human-readable message for err, falling back to the
// generic message for non-API failures (network unreachable, timeouts).
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := err.(*Error); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericFailureMessage
}

// normalizeMessage flattens an arbitrary backend error payload into a single
// display string. The backend is not consistent: it may return a bare string,
// a flat {"message": ...} object, or a field→messages map from validation.
func normalizeMessage(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return genericFailureMessage
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// not JSON at all; surface the body as-is
		return trimmed
	}
	if msg := flatten(payload); msg != "" {
		return msg
	}
	return genericFailureMessage
}

func flatten(payload any) string {
	switch v := payload.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		var parts []string
		for _, item := range v {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		// prefer conventional message keys before flattening field maps
		for _, key := range []string{"message", "detail", "error"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			if s := flatten(v[k]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}
