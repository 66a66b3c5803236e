// Package config loads and validates the docd configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docd.yaml"

// Config is the resolved docd configuration.
type Config struct {
	Source SourceConfig `yaml:"source"`
	Output OutputConfig `yaml:"output"`
	Site   SiteConfig   `yaml:"site"`
	Naming NamingConfig `yaml:"naming"`
	Render RenderConfig `yaml:"render"`
	Static StaticConfig `yaml:"static"`
	Notify NotifyConfig `yaml:"notify"`
	Check  CheckConfig  `yaml:"check"`

	// path is the file the configuration was read from; empty for in-memory configs.
	path string
}

// SourceConfig describes the documentation tree to publish.
type SourceConfig struct {
	Directory          string            `yaml:"directory"`
	MaxDepth           int               `yaml:"max_depth"`
	FileTypes          map[string]string `yaml:"file_types"`          // suffix -> language; "" means no highlighting
	SkipDirectories    []string          `yaml:"skip_directories"`    // names pruned anywhere in the tree
	UnsupportedEntries string            `yaml:"unsupported_entries"` // skip|fail
}

// OutputConfig holds the publish destination.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// SiteConfig carries presentation metadata exposed to page shells.
type SiteConfig struct {
	Title    string `yaml:"title"`
	Author   string `yaml:"author"`
	Name     string `yaml:"name"`
	Footer   string `yaml:"footer"`
	HomeAddr string `yaml:"home_addr,omitempty"`
}

// NamingConfig configures how file names become uris and display names.
type NamingConfig struct {
	SuffixMarker             string `yaml:"suffix_marker"`
	NameSeparator            string `yaml:"name_separator"`
	NameSeparatorReplacement string `yaml:"name_separator_replacement"`
}

// RenderConfig tunes page rendering.
type RenderConfig struct {
	Workers        int    `yaml:"workers"` // 0 means GOMAXPROCS
	HighlightStyle string `yaml:"highlight_style"`
	UnsafeHTML     bool   `yaml:"unsafe_html"`
}

// WorkerCount returns the effective render concurrency.
func (r RenderConfig) WorkerCount() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// StaticConfig points at an optional directory mirrored into the output.
type StaticConfig struct {
	Directory string `yaml:"directory"`
}

// NotifyConfig configures build notifications. An empty NATSURL disables them.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// CheckConfig lists phrases the check command searches for.
type CheckConfig struct {
	FilterPhrases []string `yaml:"filter_phrases"`
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// BaseDir returns the directory relative paths were resolved against.
func (c *Config) BaseDir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// MediaDirectory returns the source media directory.
func (c *Config) MediaDirectory() string {
	return filepath.Join(c.Source.Directory, MediaDirName)
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithCause(fmt.Errorf("%w: %s", ErrConfigNotFound, path)).
				WithContext("path", path).
				WithHint("run 'docd init' or pass -c with the configuration path").
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration").
			WithContext("path", path).
			Fatal().
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.path = abs
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration YAML with ${VAR} expansion and defaults applied. Paths are
// left as written and the result is not validated.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	// Maps merge into existing values when decoding; start empty so a configured file_types
	// replaces the defaults.
	cfg.Source.FileTypes = nil
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, ferrors.ConfigError("failed to parse configuration").
			WithCause(fmt.Errorf("%w: %w", ErrInvalidConfig, err)).
			Build()
	}
	if cfg.Source.FileTypes == nil {
		cfg.Source.FileTypes = DefaultFileTypes()
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) resolvePaths() {
	base := c.BaseDir()
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Source.Directory = abs(c.Source.Directory)
	c.Output.Directory = abs(c.Output.Directory)
	c.Static.Directory = abs(c.Static.Directory)
}
