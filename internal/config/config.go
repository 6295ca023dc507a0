package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Quality   QualityConfig   `json:"quality"`
	Detection DetectionConfig `json:"detection"`
	Composer  ComposerConfig  `json:"composer"`
	Output    OutputConfig    `json:"output"`
}

// QualityConfig holds thresholds for the photo quality checks
type QualityConfig struct {
	MinDimension   int     `json:"min_dimension"`
	BlurSampleSize int     `json:"blur_sample_size"`
	BlurThreshold  float64 `json:"blur_threshold"`
}

// DetectionConfig holds configuration for the face-detection backend
type DetectionConfig struct {
	Backend string `json:"backend"` // "ollama", "llamacpp", or "none"
	URL     string `json:"url"`
	Model   string `json:"model"`
	SendFmt string `json:"send_format"`
	SendDim int    `json:"send_max_dim"`
	SendQ   int    `json:"send_quality"`
}

// FormatSpec describes one output format
type FormatSpec struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Label  string `json:"label"`
}

// ComposerConfig holds the composition geometry configuration
type ComposerConfig struct {
	Formats      []FormatSpec `json:"formats"`
	DividerWidth int          `json:"divider_width"`
	DividerColor string       `json:"divider_color"` // hex RRGGBB
}

// OutputConfig holds configuration for export generation
type OutputConfig struct {
	Format    string `json:"format"` // jpg|png|webp
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Prefix    string `json:"prefix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Quality: QualityConfig{
			MinDimension:   1500,
			BlurSampleSize: 150,
			BlurThreshold:  100,
		},
		Detection: DetectionConfig{
			Backend: "none",
			URL:     "",
			Model:   "openbmb/minicpm-v4.5",
			SendFmt: "jpg",
			SendDim: 1024,
			SendQ:   85,
		},
		Composer: ComposerConfig{
			Formats: []FormatSpec{
				{Width: 1600, Height: 800, Label: "2x1"},
				{Width: 1600, Height: 1200, Label: "4x3"},
			},
			DividerWidth: 8,
			DividerColor: "FFFFFF",
		},
		Output: OutputConfig{
			Format:    "jpg",
			Quality:   90,
			Lossless:  false,
			OutputDir: "./output",
			Prefix:    "strip",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Quality.MinDimension < 1 {
		return fmt.Errorf("quality.min_dimension must be positive")
	}

	if c.Quality.BlurSampleSize < 3 {
		return fmt.Errorf("quality.blur_sample_size must be at least 3")
	}

	if c.Quality.BlurThreshold < 0 {
		return fmt.Errorf("quality.blur_threshold must not be negative")
	}

	switch c.Detection.Backend {
	case "none", "ollama", "llamacpp":
	default:
		return fmt.Errorf("detection.backend must be one of none, ollama, llamacpp")
	}

	if len(c.Composer.Formats) != 2 {
		return fmt.Errorf("composer.formats must list exactly two output formats")
	}

	for _, f := range c.Composer.Formats {
		if f.Width < 1 || f.Height < 1 {
			return fmt.Errorf("composer format %q must have positive dimensions", f.Label)
		}
	}

	if c.Composer.DividerWidth < 0 {
		return fmt.Errorf("composer.divider_width must not be negative")
	}

	if _, err := c.ParseDividerColor(); err != nil {
		return err
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// ParseDividerColor decodes the hex divider color.
func (c *Config) ParseDividerColor() (color.NRGBA, error) {
	s := c.Composer.DividerColor
	if len(s) == 7 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("composer.divider_color must be a 6-digit hex value")
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("composer.divider_color is not valid hex: %v", err)
	}
	return color.NRGBA{r, g, b, 255}, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "strip-composer", "config.json")
}
