package settings

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Decode merges a JSON snapshot over base. Keys missing from the document keep the
// value from base, which is how partial updates are applied.
func Decode(r io.Reader, base Settings) (Settings, error) {
	out := base
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return base, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

// LoadFile reads a JSON snapshot from path and merges it over base.
func LoadFile(path string, base Settings) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f, base)
}

// Resolve builds a startup snapshot: the defaults, then the JSON file at path, then the
// named preset, then key=value overrides using the query keys. Empty inputs are skipped.
// The result is validated.
func Resolve(path, preset string, overrides []string) (Settings, error) {
	s := Default()
	if path != "" {
		loaded, err := LoadFile(path, s)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	if preset != "" {
		if err := s.ApplyPreset(preset); err != nil {
			return s, err
		}
	}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return s, fmt.Errorf("override %q: want key=value", kv)
		}
		if err := s.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return s, err
		}
	}
	return s, s.Validate()
}
