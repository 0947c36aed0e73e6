package rig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-cave/pkg/projection"
)

// Config holds the rig's physical and optical parameters.
type Config struct {
	// Wall is the display geometry in rig-local space.
	Wall projection.Wall `yaml:"wall"`

	// EyeSeparation is the inter-ocular distance in meters. The human
	// average is about 63mm.
	EyeSeparation float64 `yaml:"eye_separation"`

	// SwapEyes exchanges the left and right eye outputs, for projector
	// stacks wired the other way around.
	SwapEyes bool `yaml:"swap_eyes"`

	// Near and Far are the clip distances handed through to the frustums.
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`

	// HeadHeight is the static viewer eye height used when no tracking is
	// configured or before first acquisition.
	HeadHeight float64 `yaml:"head_height"`

	// Resolution is the per-eye render target size. Pass-through for the
	// renderer; the projection math never reads it.
	Resolution [2]int `yaml:"resolution"`
}

// DefaultConfig returns the reference installation settings.
func DefaultConfig() Config {
	return Config{
		Wall:          projection.DefaultWall(),
		EyeSeparation: 0.063,
		Near:          0.1,
		Far:           1000,
		HeadHeight:    1.64,
		Resolution:    [2]int{1920, 1080},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Wall.Validate(); err != nil {
		return err
	}
	if c.EyeSeparation < 0 {
		return fmt.Errorf("eye separation must not be negative, got %v", c.EyeSeparation)
	}
	if c.Near <= 0 {
		return fmt.Errorf("near clip must be positive, got %v", c.Near)
	}
	if c.Far <= c.Near {
		return fmt.Errorf("far clip %v must exceed near clip %v", c.Far, c.Near)
	}
	if c.HeadHeight <= 0 {
		return fmt.Errorf("head height must be positive, got %v", c.HeadHeight)
	}
	return nil
}

// LoadConfig reads a yaml config file, filling unset fields from the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
