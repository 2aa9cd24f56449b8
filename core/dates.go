package core

import (
	"regexp"
	"time"
)

// Timestamps from the API are RFC 3339 with up to nanosecond precision:
// 2024-01-15T10:30:00Z, 2024-01-15T10:30:00.123456789Z, 2024-01-15T10:30:00+02:00.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,9})?(Z|[+-]\d{2}:\d{2})$`)

// IsTimestampString checks if a string looks like an RFC 3339 timestamp.
func IsTimestampString(value string) bool {
	return timestampPattern.MatchString(value)
}

// ParseTimestamp parses an RFC 3339 timestamp.
func ParseTimestamp(value string) (time.Time, error) {
	if !IsTimestampString(value) {
		return time.Time{}, &time.ParseError{Value: value, Message: ": not an RFC 3339 timestamp"}
	}
	return time.Parse(time.RFC3339Nano, value)
}

// TransformDates recursively transforms timestamp strings to time.Time in a map.
// This modifies the map in place and returns it.
func TransformDates(data map[string]any, enabled bool) map[string]any {
	if !enabled || data == nil {
		return data
	}

	for key, value := range data {
		data[key] = transformValue(value)
	}

	return data
}

func transformValue(value any) any {
	switch v := value.(type) {
	case string:
		if IsTimestampString(v) {
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				return t
			}
		}
		return v

	case map[string]any:
		return TransformDates(v, true)

	case []any:
		for i, item := range v {
			v[i] = transformValue(item)
		}
		return v

	default:
		return v
	}
}
