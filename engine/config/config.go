package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

type RendererConfig struct {
	// Debug re-issues redundant detach calls on unbind.
	Debug bool `toml:"debug"`
	// ValidationLayers enables the Vulkan validation layers.
	ValidationLayers bool `toml:"validation_layers"`
	// MaxBindSlots caps the number of uniform bind slots. Zero means
	// use the device limit as-is.
	MaxBindSlots uint32 `toml:"max_bind_slots"`
}

type Config struct {
	AppName  string         `toml:"app_name"`
	LogLevel string         `toml:"log_level"`
	Renderer RendererConfig `toml:"renderer"`
}

func Default() *Config {
	return &Config{
		AppName:  "Albedo",
		LogLevel: "info",
		Renderer: RendererConfig{
			Debug:            false,
			ValidationLayers: false,
			MaxBindSlots:     0,
		},
	}
}

// Load reads a TOML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
