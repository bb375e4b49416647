package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload is a decoded webhook body: field name to arbitrary JSON value.
type Payload map[string]any

// Coerce renders a payload value as a sheet cell.
// Booleans become "true"/"false", nil becomes "", numbers render in plain
// decimal. Nested objects and arrays are rendered as compact JSON.
func Coerce(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

// hasValue reports whether key is present with a non-nil, non-empty-string value.
func (p Payload) hasValue(key string) bool {
	value, ok := p[key]
	if !ok || value == nil {
		return false
	}
	if s, isString := value.(string); isString && s == "" {
		return false
	}
	return true
}
