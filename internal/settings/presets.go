package settings

import "fmt"

type Preset struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PresetCustom keeps whatever size is currently set.
const PresetCustom = "custom"

var Presets = []Preset{
	{Name: "1080p", Label: "1080p Full HD", Width: 1920, Height: 1080},
	{Name: "4k", Label: "4K Ultra HD", Width: 3840, Height: 2160},
	{Name: "mobile", Label: "Mobile Portrait", Width: 1080, Height: 1920},
	{Name: "ultrawide", Label: "Ultrawide", Width: 3440, Height: 1440},
}

func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// ApplyPreset sets the canvas size from a named preset.
func (s *Settings) ApplyPreset(name string) error {
	if name == PresetCustom {
		return nil
	}
	p, ok := LookupPreset(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	s.Width = p.Width
	s.Height = p.Height
	return nil
}

// ExportFilename is the download name of the rendered PNG.
func (s Settings) ExportFilename() string {
	return fmt.Sprintf("auragen-export-%dx%d.png", s.Width, s.Height)
}
