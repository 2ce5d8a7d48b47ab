package engine

import (
	"errors"
	"io/fs"

	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
)

type ApplicationConfig struct {
	// Path of the TOML configuration file, if any.
	ConfigPath string
	Config     *config.Config
}

/**
 * @brief Loads the configuration at path and applies its log level. A
 * missing file yields the default configuration.
 */
func NewApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		core.LogWarn("configuration %s not found, using defaults", path)
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(level)
	return &ApplicationConfig{ConfigPath: path, Config: cfg}, nil
}
