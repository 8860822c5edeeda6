package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"bioimage-transform/internal/logger"
	"bioimage-transform/internal/persist"
	"bioimage-transform/provenance"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AutoName  AutoNameConfig  `yaml:"auto_name"`
	AutoWrite AutoWriteConfig `yaml:"auto_write"`
	// Journal is the SQLite file recording provenance; empty disables it.
	Journal  string `yaml:"journal"`
	LogLevel string `yaml:"log_level"`
}

type AutoNameConfig struct {
	Directory    string `yaml:"directory"`
	Namespace    string `yaml:"namespace"`
	PrefixFormat string `yaml:"prefix_format"`
	Suffix       string `yaml:"suffix"`
}

type AutoWriteConfig struct {
	Enabled   bool `yaml:"enabled"`
	SafeDType bool `yaml:"safe_dtype"`
}

func DefaultConfig() *Config {
	return &Config{
		AutoName: AutoNameConfig{
			PrefixFormat: DefaultPrefixFormat,
			Suffix:       DefaultSuffix,
		},
		LogLevel: "info",
	}
}

// LoadConfig reads a YAML config file. Keys absent from the file keep
// their DefaultConfig values.
func LoadConfig(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("while parsing %s: %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.AutoName.PrefixFormat == "" {
		return fmt.Errorf("auto_name.prefix_format must not be empty")
	}
	if strings.Count(c.AutoName.PrefixFormat, "%d") != 1 ||
		strings.Contains(fmt.Sprintf(c.AutoName.PrefixFormat, 1), "%!") {
		return fmt.Errorf("auto_name.prefix_format %q must contain exactly one %%d", c.AutoName.PrefixFormat)
	}
	if c.AutoWrite.Enabled {
		if _, err := persist.FormatFor("result" + c.AutoName.Suffix); err != nil {
			return fmt.Errorf("auto_name.suffix: %w", err)
		}
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// NewTracker builds a Tracker from the config, creating the output
// directory and opening the journal as needed.
func (c *Config) NewTracker(base zerolog.Logger) (*Tracker, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	level, _ := logger.ParseLevel(c.LogLevel)

	if c.AutoWrite.Enabled && c.AutoName.Directory != "" {
		if err := os.MkdirAll(c.AutoName.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("while creating output directory: %w", err)
		}
	}

	opts := []Option{
		WithZerolog(base.Level(level)),
		WithAutoName(NewAutoName(c.AutoName.Directory,
			WithNamespace(c.AutoName.Namespace),
			WithPrefixFormat(c.AutoName.PrefixFormat),
			WithSuffix(c.AutoName.Suffix),
		)),
		WithAutoWrite(c.AutoWrite.Enabled),
		WithSafeDType(c.AutoWrite.SafeDType),
	}

	if c.Journal != "" {
		j, err := provenance.Open(context.Background(), c.Journal)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithJournal(j))
	}

	return NewTracker(opts...), nil
}
