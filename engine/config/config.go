package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration, read once at startup and then
// passed explicitly to whatever needs it. Nothing in the engine reads it
// from a global.
type Config struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting size.
	StartWidth  uint32 `toml:"start_width"`
	StartHeight uint32 `toml:"start_height"`
	// Root directory all asset paths are resolved against.
	AssetRoot string `toml:"asset_root"`
	// Minimum log level: debug, info, warn, error.
	LogLevel string `toml:"log_level"`
	// Enables anisotropic filtering on sampled textures when the device
	// supports it.
	Anisotropy bool `toml:"anisotropy"`
	// External executable used to convert PNG images to KTX before upload.
	TextureConverter string `toml:"texture_converter"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Name:             "lumen",
		StartPosX:        100,
		StartPosY:        100,
		StartWidth:       1280,
		StartHeight:      720,
		AssetRoot:        "assets",
		LogLevel:         "debug",
		Anisotropy:       true,
		TextureConverter: "toktx",
	}
}

// Load reads a TOML configuration file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
