package settings

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// field binds one query key (the form name, dotted for nested values) to a settings field.
type field struct {
	get func(s *Settings) string
	set func(s *Settings, raw string) error
}

func intField(ptr func(s *Settings) *int) field {
	return field{
		get: func(s *Settings) string { return strconv.Itoa(*ptr(s)) },
		set: func(s *Settings, raw string) error {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return err
			}
			*ptr(s) = v
			return nil
		},
	}
}

func floatField(ptr func(s *Settings) *float64) field {
	return field{
		get: func(s *Settings) string { return strconv.FormatFloat(*ptr(s), 'g', -1, 64) },
		set: func(s *Settings, raw string) error {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return err
			}
			*ptr(s) = v
			return nil
		},
	}
}

func boolField(ptr func(s *Settings) *bool) field {
	return field{
		get: func(s *Settings) string { return strconv.FormatBool(*ptr(s)) },
		set: func(s *Settings, raw string) error {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return err
			}
			*ptr(s) = v
			return nil
		},
	}
}

func colorField(ptr func(s *Settings) *Color) field {
	return field{
		get: func(s *Settings) string { return ptr(s).String() },
		set: func(s *Settings, raw string) error {
			c, err := ParseColor(raw)
			if err != nil {
				return err
			}
			*ptr(s) = c
			return nil
		},
	}
}

func stringField[T ~string](ptr func(s *Settings) *T) field {
	return field{
		get: func(s *Settings) string { return string(*ptr(s)) },
		set: func(s *Settings, raw string) error {
			*ptr(s) = T(raw)
			return nil
		},
	}
}

var fields = map[string]field{
	"width":          intField(func(s *Settings) *int { return &s.Width }),
	"height":         intField(func(s *Settings) *int { return &s.Height }),
	"color1":         colorField(func(s *Settings) *Color { return &s.Color1 }),
	"color2":         colorField(func(s *Settings) *Color { return &s.Color2 }),
	"inverted":       boolField(func(s *Settings) *bool { return &s.Inverted }),
	"pattern":        stringField(func(s *Settings) *Pattern { return &s.Pattern }),
	"gridSize":       intField(func(s *Settings) *int { return &s.GridSize }),
	"shapeType":      stringField(func(s *Settings) *ShapeType { return &s.ShapeType }),
	"shapeRotation":  floatField(func(s *Settings) *float64 { return &s.ShapeRotation }),
	"useOffset":      boolField(func(s *Settings) *bool { return &s.UseOffset }),
	"offsetAmount":   floatField(func(s *Settings) *float64 { return &s.OffsetAmount }),
	"lineType":       stringField(func(s *Settings) *LineType { return &s.LineType }),
	"lineWidth":      floatField(func(s *Settings) *float64 { return &s.LineWidth }),
	"lineFrequency":  floatField(func(s *Settings) *float64 { return &s.LineFrequency }),
	"lineAmplitude":  floatField(func(s *Settings) *float64 { return &s.LineAmplitude }),
	"noiseScale":     floatField(func(s *Settings) *float64 { return &s.NoiseScale }),
	"textureDensity": floatField(func(s *Settings) *float64 { return &s.TextureDensity }),
	"meshDensity":    intField(func(s *Settings) *int { return &s.MeshDensity }),
	"meshVariance":   floatField(func(s *Settings) *float64 { return &s.MeshVariance }),

	"postProcessing.pixelate":          boolField(func(s *Settings) *bool { return &s.PostProcessing.Pixelate }),
	"postProcessing.pixelSize":         intField(func(s *Settings) *int { return &s.PostProcessing.PixelSize }),
	"postProcessing.scanlines":         boolField(func(s *Settings) *bool { return &s.PostProcessing.Scanlines }),
	"postProcessing.scanlineIntensity": floatField(func(s *Settings) *float64 { return &s.PostProcessing.ScanlineIntensity }),
	"postProcessing.noise":             boolField(func(s *Settings) *bool { return &s.PostProcessing.Noise }),
	"postProcessing.noiseIntensity":    floatField(func(s *Settings) *float64 { return &s.PostProcessing.NoiseIntensity }),

	"seed": {
		get: func(s *Settings) string { return strconv.FormatInt(s.Seed, 10) },
		set: func(s *Settings, raw string) error {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return err
			}
			s.Seed = v
			return nil
		},
	},
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one field by its form name, e.g. "gridSize" or "postProcessing.pixelSize".
func (s *Settings) Set(key, raw string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := f.set(s, raw); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// EncodeQuery renders the full snapshot as URL query values.
func (s Settings) EncodeQuery() url.Values {
	values := url.Values{}
	for key, f := range fields {
		values.Set(key, f.get(&s))
	}
	return values
}

// DiffQuery encodes only the fields whose value differs from base. Applying the result
// over base reproduces s.
func (s Settings) DiffQuery(base Settings) url.Values {
	values := url.Values{}
	for key, f := range fields {
		if v := f.get(&s); v != f.get(&base) {
			values.Set(key, v)
		}
	}
	return values
}

// ApplyQuery overrides fields present in values. A "preset" key is applied before the
// explicit width/height so that both can be combined. Unknown keys are ignored so share
// links can carry unrelated parameters.
func (s *Settings) ApplyQuery(values url.Values) error {
	if name := values.Get("preset"); name != "" {
		if err := s.ApplyPreset(name); err != nil {
			return err
		}
	}
	for _, key := range Keys() {
		raw, ok := values[key]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := s.Set(key, raw[len(raw)-1]); err != nil {
			return err
		}
	}
	return nil
}
