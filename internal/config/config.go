// Package config loads the dss configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Session  SessionConfig  `yaml:"session"`
	Images   ImagesConfig   `yaml:"images"`
	Grid     GridConfig     `yaml:"grid"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Redis    RedisConfig    `yaml:"redis"`
	Export   ExportConfig   `yaml:"export"`
	OCR      OCRConfig      `yaml:"ocr"`
	Render   RenderConfig   `yaml:"render"`
}

// SessionConfig locates the session and defaults files.
type SessionConfig struct {
	Dir          string `yaml:"dir"`
	File         string `yaml:"file"`
	DefaultsFile string `yaml:"defaults_file"`
}

// ImagesConfig controls ingest.
type ImagesConfig struct {
	ResizeSize      int `yaml:"resize_size"`
	ThumbnailWidth  int `yaml:"thumbnail_width"`
	ThumbnailHeight int `yaml:"thumbnail_height"`
}

// GridConfig holds the initial grid spacing.
type GridConfig struct {
	Spacing int `yaml:"spacing"`
}

// RefreshConfig controls the metadata panel ticker.
type RefreshConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// PipelineConfig controls pipe generation and registration.
type PipelineConfig struct {
	// VerticalCorrection is subtracted from the scaled y coordinate of every
	// generated crop. It is a calibrated value, not a derived one.
	VerticalCorrection int               `yaml:"vertical_correction"`
	Expire             time.Duration     `yaml:"expire"`
	Env                map[string]string `yaml:"env"`
}

// RedisConfig locates the key-value store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ExportConfig controls export output.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	ImageFormat string `yaml:"image_format"`
}

// OCRConfig holds the tesseract language.
type OCRConfig struct {
	Language string `yaml:"language"`
}

// RenderConfig sizes the project previews.
type RenderConfig struct {
	OverviewWidth   int `yaml:"overview_width"`
	OverviewHeight  int `yaml:"overview_height"`
	ThumbnailHeight int `yaml:"thumbnail_height"`
	DimensionsScale int `yaml:"dimensions_scale"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Dir:          "~/.config/dss/",
			File:         "session.xml",
			DefaultsFile: "defaults.xml",
		},
		Images: ImagesConfig{
			ResizeSize:      1000,
			ThumbnailWidth:  250,
			ThumbnailHeight: 250,
		},
		Grid:    GridConfig{Spacing: 100},
		Refresh: RefreshConfig{Interval: 30 * time.Second},
		Pipeline: PipelineConfig{
			VerticalCorrection: 150,
			Expire:             1000 * time.Second,
			Env: map[string]string{
				"key":        "binary_key",
				"key_prefix": "binary:",
			},
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Export: ExportConfig{
			Dir:         "/tmp",
			ImageFormat: "jpg",
		},
		OCR: OCRConfig{Language: "eng"},
		Render: RenderConfig{
			OverviewWidth:   1000,
			OverviewHeight:  50,
			ThumbnailHeight: 25,
			DimensionsScale: 5,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if addr := os.Getenv("DSS_REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Session.File == "" {
		return fmt.Errorf("session.file cannot be empty")
	}
	if c.Images.ResizeSize < 1 {
		return fmt.Errorf("images.resize_size must be positive")
	}
	if c.Images.ThumbnailWidth < 1 || c.Images.ThumbnailHeight < 1 {
		return fmt.Errorf("images.thumbnail_width and thumbnail_height must be positive")
	}
	if c.Grid.Spacing < 1 {
		return fmt.Errorf("grid.spacing must be at least 1")
	}
	if c.Refresh.Interval < 0 {
		return fmt.Errorf("refresh.interval cannot be negative")
	}
	if c.Pipeline.Expire < 0 {
		return fmt.Errorf("pipeline.expire cannot be negative")
	}
	switch c.Export.ImageFormat {
	case "jpg", "png", "webp":
	default:
		return fmt.Errorf("export.image_format must be jpg, png or webp, got %q", c.Export.ImageFormat)
	}
	if c.Render.OverviewWidth < 1 || c.Render.OverviewHeight < 1 || c.Render.ThumbnailHeight < 1 {
		return fmt.Errorf("render sizes must be positive")
	}
	if c.Render.DimensionsScale < 1 {
		return fmt.Errorf("render.dimensions_scale must be positive")
	}
	return nil
}

// SessionPath returns the expanded session file path.
func (c *Config) SessionPath() string {
	return filepath.Join(ExpandHome(c.Session.Dir), c.Session.File)
}

// DefaultsPath returns the expanded defaults file path.
func (c *Config) DefaultsPath() string {
	return filepath.Join(ExpandHome(c.Session.Dir), c.Session.DefaultsFile)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return ExpandHome("~/.config/dss/config.yaml")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Debug reports whether debug logging was requested.
func Debug() bool {
	return strings.EqualFold(os.Getenv("DSS_LOG_LEVEL"), "debug")
}
