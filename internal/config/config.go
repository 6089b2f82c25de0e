// Package config loads dirwalk settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/elliotnunn/dirwalk/internal/walk"
)

// FileName is looked for in the directory being walked.
const FileName = ".dirwalk.yaml"

// EnvMaxOpen overrides max_open, like a ulimit the caller cannot edit into a file.
const EnvMaxOpen = "DIRWALK_MAXOPEN"

// Config represents dirwalk configuration options
type Config struct {
	// FollowLinks descends into symbolic links to directories
	FollowLinks bool `yaml:"follow_links"`

	// YieldLoopLinks reports a link back to an ancestor as an entry instead of an error
	YieldLoopLinks bool `yaml:"yield_loop_links"`

	// SameFileSystem stays on the device the root lives on
	SameFileSystem bool `yaml:"same_file_system"`

	// MaxOpen is the most directory handles held open at once
	MaxOpen int `yaml:"max_open"`

	// MinDepth hides entries shallower than this
	MinDepth int `yaml:"min_depth"`

	// MaxDepth stops descending below this depth (-1 = unlimited)
	MaxDepth int `yaml:"max_depth"`

	// ContentsFirst yields a directory after everything inside it
	ContentsFirst bool `yaml:"contents_first"`

	// ContentFilter is one of none, files, dirs, skip
	ContentFilter string `yaml:"content_filter"`

	// ContentOrder is one of none, files-first, dirs-first
	ContentOrder string `yaml:"content_order"`

	// Sort is one of none, name, disk
	Sort string `yaml:"sort"`

	// Exclude lists doublestar patterns matched against paths relative to the root
	Exclude []string `yaml:"exclude"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// IndexDir is where the index command keeps its database
	IndexDir string `yaml:"index_dir"`
}

func Default() *Config {
	return &Config{
		MaxOpen:       10,
		MaxDepth:      -1,
		ContentFilter: "none",
		ContentOrder:  "none",
		Sort:          "none",
		LogLevel:      "warn",
		IndexDir:      ".dirwalk-index",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.applyEnv()
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	slog.Debug("configLoaded", "path", path)
	return cfg, cfg.applyEnv()
}

func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

func (c *Config) applyEnv() error {
	e := os.Getenv(EnvMaxOpen)
	if e == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(e))
	if err != nil || n < 1 {
		return fmt.Errorf("malformed %s environment variable, should be a positive number of handles: %q", EnvMaxOpen, e)
	}
	c.MaxOpen = n
	return nil
}

// Validate checks every field that the walker would otherwise reject or clamp.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxOpen < 1 {
		errs = append(errs, fmt.Errorf("max_open must be at least 1, got %d", c.MaxOpen))
	}
	if c.MinDepth < 0 {
		errs = append(errs, fmt.Errorf("min_depth must not be negative, got %d", c.MinDepth))
	}
	if c.MaxDepth >= 0 && c.MinDepth > c.MaxDepth {
		errs = append(errs, fmt.Errorf("min_depth %d is greater than max_depth %d", c.MinDepth, c.MaxDepth))
	}
	if _, err := walk.ParseContentFilter(c.ContentFilter); err != nil {
		errs = append(errs, err)
	}
	if _, err := walk.ParseContentOrder(c.ContentOrder); err != nil {
		errs = append(errs, err)
	}
	if _, ok := walk.SortByName(c.Sort); !ok {
		errs = append(errs, fmt.Errorf("unknown sort %q, want none, name or disk", c.Sort))
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("bad exclude pattern %q", p))
		}
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WalkOptions converts a validated Config.
func (c *Config) WalkOptions() (walk.Options, error) {
	if err := c.Validate(); err != nil {
		return walk.Options{}, err
	}
	o := walk.DefaultOptions()
	o.FollowLinks = c.FollowLinks
	o.YieldLoopLinks = c.YieldLoopLinks
	o.SameFileSystem = c.SameFileSystem
	o.MaxOpen = c.MaxOpen
	o.MinDepth = c.MinDepth
	if c.MaxDepth >= 0 {
		o.MaxDepth = c.MaxDepth
	}
	o.ContentsFirst = c.ContentsFirst
	o.Filter, _ = walk.ParseContentFilter(c.ContentFilter)
	o.Order, _ = walk.ParseContentOrder(c.ContentOrder)
	o.Sort, _ = walk.SortByName(c.Sort)
	return o, nil
}

func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("bad log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
