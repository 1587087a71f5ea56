package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Engine   EngineConfig   `yaml:"engine"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds dataset cache settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DatasetConfig points at the source dataset file
type DatasetConfig struct {
	Path  string `yaml:"path,omitempty"`  // JSON or YAML taxonomy file
	Watch bool   `yaml:"watch,omitempty"` // reimport on file change
}

// EngineConfig holds graph engine tuning. Zero values mean
// "use the engine default" so a partial config stays valid.
type EngineConfig struct {
	Width     float64 `yaml:"width,omitempty"`
	Height    float64 `yaml:"height,omitempty"`
	FrameRate int     `yaml:"frame_rate,omitempty"`

	Loader   LoaderConfig   `yaml:"loader,omitempty"`
	Physics  PhysicsConfig  `yaml:"physics,omitempty"`
	Viewport ViewportConfig `yaml:"viewport,omitempty"`
	Render   RenderConfig   `yaml:"render,omitempty"`
}

// LoaderConfig overrides progressive loading behavior
type LoaderConfig struct {
	CoreCap      *int     `yaml:"core_cap,omitempty"`
	ViewportCap  *int     `yaml:"viewport_cap,omitempty"`
	ConnectedCap *int     `yaml:"connected_cap,omitempty"`
	BatchSize    *int     `yaml:"batch_size,omitempty"`
	MinFPS       *float64 `yaml:"min_fps,omitempty"`
}

// PhysicsConfig overrides force simulation constants
type PhysicsConfig struct {
	Repulsion       *float64 `yaml:"repulsion,omitempty"`
	SpringStiffness *float64 `yaml:"spring_stiffness,omitempty"`
	SpringLength    *float64 `yaml:"spring_length,omitempty"`
	Gravity         *float64 `yaml:"gravity,omitempty"`
	Damping         *float64 `yaml:"damping,omitempty"`
	AlphaDecay      *float64 `yaml:"alpha_decay,omitempty"`
}

// RenderConfig overrides draw-pass tuning
type RenderConfig struct {
	LabelMinScale *float64 `yaml:"label_min_scale,omitempty"`
	RadiusMin     *float64 `yaml:"radius_min,omitempty"`
	RadiusMax     *float64 `yaml:"radius_max,omitempty"`
}

// ViewportConfig overrides pan/zoom limits
type ViewportConfig struct {
	MinScale          *float64  `yaml:"min_scale,omitempty"`
	MaxScale          *float64  `yaml:"max_scale,omitempty"`
	RecomputeInterval *Duration `yaml:"recompute_interval,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
