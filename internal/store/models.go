package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// checkKey rejects keys that would escape the store or collide with file names.
// Keys are slash separated segments such as "config" or "history/2025-05-06".
func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid key %q", key)
		}
		if strings.ContainsAny(seg, `\:*?"<>|`) {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}

func encode(key string, v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return b, nil
}

func decode(key string, b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
