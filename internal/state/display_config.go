package state

import (
	"fmt"
	"sync"
)

type ScaleMode string

const (
	ScaleFit   ScaleMode = "fit"
	ScaleFill  ScaleMode = "fill"
	ScalePixel ScaleMode = "pixel"
)

// DisplayOptions controls how the attached screen presents the latest render. They do
// not affect exported images.
type DisplayOptions struct {
	ShowCaption bool      `json:"showCaption"`
	ShowShareQR bool      `json:"showShareQR"`
	Scale       ScaleMode `json:"scale"`
}

func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{ShowCaption: true, ShowShareQR: true, Scale: ScaleFit}
}

func (o DisplayOptions) Validate() error {
	switch o.Scale {
	case ScaleFit, ScaleFill, ScalePixel:
		return nil
	}
	return fmt.Errorf("unknown scale mode %q", o.Scale)
}

type DisplayConfig struct {
	mu      sync.RWMutex
	options DisplayOptions
	dirty   bool
}

func NewDisplayConfig(options DisplayOptions) *DisplayConfig {
	return &DisplayConfig{options: options, dirty: true}
}

func (config *DisplayConfig) Snapshot() DisplayOptions {
	config.mu.RLock()
	defer config.mu.RUnlock()
	return config.options
}

func (config *DisplayConfig) Set(options DisplayOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}
	config.mu.Lock()
	if config.options != options {
		config.dirty = true
	}
	config.options = options
	config.mu.Unlock()
	return nil
}

// NeedsRedraw reports whether the options changed since the last MarkDrawn.
func (config *DisplayConfig) NeedsRedraw() bool {
	config.mu.RLock()
	defer config.mu.RUnlock()
	return config.dirty
}

// MarkDrawn records that the screen shows the current options.
func (config *DisplayConfig) MarkDrawn() {
	config.mu.Lock()
	config.dirty = false
	config.mu.Unlock()
}
