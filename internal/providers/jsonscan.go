package providers

import "encoding/json"

// ExtractJSONObject scans free-form provider text for the first balanced JSON
// object and decodes it. Several backends wrap their structured result inside
// a prose text field; the upstream contract guarantees nothing stricter than
// "there is probably an object in here", so extraction is best-effort: a miss
// returns ok=false and the caller degrades to absent fields instead of
// failing the whole generation.
func ExtractJSONObject(text string) (map[string]any, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				var decoded map[string]any
				if err := json.Unmarshal([]byte(text[start:i+1]), &decoded); err == nil {
					return decoded, true
				}
				// Malformed candidate; keep scanning past it.
				start = -1
			}
		}
	}
	return nil, false
}

// StringField reads a string value from a scanned object, tolerating absence.
func StringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

// IntField reads a numeric value from a scanned object, tolerating absence
// and the float64 shape encoding/json produces for numbers.
func IntField(obj map[string]any, key string) int {
	if obj == nil {
		return 0
	}
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}
