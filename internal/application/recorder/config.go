package recorder

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/penwyp/go-mouse-recorder/internal/core/constants"
	"gopkg.in/yaml.v3"
)

// Config contains the settings shared by recording and playback.
type Config struct {
	// Trace file
	TracePath string `yaml:"trace"`

	// Capture settings
	PollInterval time.Duration `yaml:"poll_interval"`
	QueueSize    int           `yaml:"queue_size"`

	// Playback device geometry
	ScreenWidth  int `yaml:"screen_width"`
	ScreenHeight int `yaml:"screen_height"`
}

// Validate fills defaults and rejects values no session can run with.
func (c *Config) Validate() error {
	if c.TracePath == "" {
		c.TracePath = constants.DefaultTraceFile
	}
	if c.PollInterval == 0 {
		c.PollInterval = constants.DefaultPollInterval
	}
	if c.QueueSize == 0 {
		c.QueueSize = constants.DefaultQueueSize
	}
	if c.ScreenWidth == 0 {
		c.ScreenWidth = constants.DefaultScreenWidth
	}
	if c.ScreenHeight == 0 {
		c.ScreenHeight = constants.DefaultScreenHeight
	}

	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.ScreenWidth < 0 || c.ScreenHeight < 0 {
		return fmt.Errorf("screen size must be positive, got %dx%d", c.ScreenWidth, c.ScreenHeight)
	}
	return nil
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
// Durations are written as Go duration strings, e.g. "5ms".
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
