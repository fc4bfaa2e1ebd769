package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// normalizeCollection funnels the backend's two list shapes — a bare JSON
// array and a paged envelope ({"content": [...]}, sometimes {"data": [...]})
// — into one slice, so everything past the client sees a uniform sequence.
// null and an absent body normalize to an empty slice.
func normalizeCollection[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		return out, nil
	}

	var wrap struct {
		Content json.RawMessage `json:"content"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrap); err != nil {
		return nil, fmt.Errorf("decode collection envelope: %w", err)
	}

	inner := wrap.Content
	if len(inner) == 0 {
		inner = wrap.Data
	}
	if len(inner) == 0 || bytes.Equal(bytes.TrimSpace(inner), []byte("null")) {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(inner, &out); err != nil {
		return nil, fmt.Errorf("decode collection content: %w", err)
	}
	return out, nil
}
