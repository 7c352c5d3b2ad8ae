package flatten

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Render produces the canonical cell text for a flattened value. Absent and
// null values render as the empty string, booleans as true/false, numbers
// in locale-independent form, times as RFC 3339 UTC, and any remaining
// composite as compact JSON. Empty composites render empty.
func Render(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		return renderJSON(v)
	case []any:
		if len(v) == 0 {
			return ""
		}
		return renderJSON(v)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return s
	}
}

func renderJSON(v any) string {
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(bs)
}
