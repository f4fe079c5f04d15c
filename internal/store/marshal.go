package store

import (
	"fmt"
	"time"

	"github.com/roach88/xmsync/internal/value"
)

// timeLayout stores timestamps as sortable UTC text.
const timeLayout = time.RFC3339Nano

// marshalObject converts an object to canonical JSON TEXT for storage.
func marshalObject(obj value.Object) (string, error) {
	data, err := value.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("marshal object: %w", err)
	}
	return string(data), nil
}

// unmarshalObject parses stored JSON TEXT. Integers keep full precision.
func unmarshalObject(data string) (value.Object, error) {
	if data == "" || data == "{}" {
		return value.Object{}, nil
	}
	var obj value.Object
	if err := obj.UnmarshalJSON([]byte(data)); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}
	return obj, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
