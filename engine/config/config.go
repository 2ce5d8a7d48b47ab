package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief The engine configuration, read from a TOML file. Missing keys keep
 * their defaults; unknown keys are rejected.
 */
type Config struct {
	Application ApplicationConfig `toml:"application"`
	Display     DisplayConfig     `toml:"display"`
	Logging     LoggingConfig     `toml:"logging"`
	Assets      AssetsConfig      `toml:"assets"`
	Renderer    RendererConfig    `toml:"renderer"`
}

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y"`
	// Render without a window.
	Headless bool `toml:"headless"`
	// Stop after this many frames. Zero runs until quit.
	MaxFrames uint64 `toml:"max_frames"`
}

type DisplayConfig struct {
	Width        uint32 `toml:"width"`
	Height       uint32 `toml:"height"`
	AntiAliasing string `toml:"antialiasing"`
	VSync        bool   `toml:"vsync"`
	Windowed     bool   `toml:"windowed"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	Root string `toml:"root"`
	// Hot reload assets when their files change.
	Watch bool `toml:"watch"`
	// Directory of the compiled shader blobs, relative to Root.
	Shaders string `toml:"shaders"`
}

type RendererConfig struct {
	Gamma               float32            `toml:"gamma"`
	DepthConvention     string             `toml:"depth_convention"`
	ShadowMapResolution uint32             `toml:"shadow_map_resolution"`
	Voxelization        VoxelizationConfig `toml:"voxelization"`
}

type VoxelizationConfig struct {
	GridCenter [3]float32 `toml:"grid_center"`
	Resolution uint32     `toml:"resolution"`
	VoxelSize  float32    `toml:"voxel_size"`
}

func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:      "Lumen",
			StartPosX: 100,
			StartPosY: 100,
		},
		Display: DisplayConfig{
			Width:        1280,
			Height:       720,
			AntiAliasing: metadata.AntiAliasingNone.String(),
			VSync:        true,
			Windowed:     true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			Root:    "assets",
			Shaders: "shaders",
		},
		Renderer: RendererConfig{
			Gamma:               2.2,
			DepthConvention:     math.DefaultDepthConvention.String(),
			ShadowMapResolution: 512,
			Voxelization: VoxelizationConfig{
				Resolution: 128,
				VoxelSize:  0.1,
			},
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown configuration keys:\n%s", strict.String())
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := c.DisplayConfiguration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.DepthConvention(); err != nil {
		errs = append(errs, err)
	}
	if c.Renderer.Gamma <= 0 {
		errs = append(errs, fmt.Errorf("gamma %v must be positive", c.Renderer.Gamma))
	}
	if c.Renderer.ShadowMapResolution == 0 {
		errs = append(errs, errors.New("shadow map resolution must be positive"))
	}
	v := c.Renderer.Voxelization
	if v.Resolution == 0 || v.Resolution&(v.Resolution-1) != 0 {
		errs = append(errs, fmt.Errorf("voxel grid resolution %d must be a power of two", v.Resolution))
	}
	if v.VoxelSize <= 0 {
		errs = append(errs, fmt.Errorf("voxel size %v must be positive", v.VoxelSize))
	}
	return errors.Join(errs...)
}

func (c *Config) DisplayConfiguration() (metadata.DisplayConfiguration, error) {
	aa, err := metadata.ParseAntiAliasing(c.Display.AntiAliasing)
	if err != nil {
		return metadata.DisplayConfiguration{}, err
	}
	display := metadata.DisplayConfiguration{
		Width:        c.Display.Width,
		Height:       c.Display.Height,
		AntiAliasing: aa,
		VSync:        c.Display.VSync,
		Windowed:     c.Display.Windowed,
	}
	return display, display.Validate()
}

func (c *Config) LogLevel() (core.LogLevel, error) {
	return core.ParseLogLevel(c.Logging.Level)
}

func (c *Config) DepthConvention() (math.DepthConvention, error) {
	return math.ParseDepthConvention(c.Renderer.DepthConvention)
}

func (c *Config) VoxelGrid() metadata.VoxelGrid {
	v := c.Renderer.Voxelization
	return metadata.VoxelGrid{
		Center:     math.NewVec3(v.GridCenter[0], v.GridCenter[1], v.GridCenter[2]),
		Resolution: v.Resolution,
		VoxelSize:  v.VoxelSize,
	}
}
