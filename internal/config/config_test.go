package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elliotnunn/dirwalk/internal/walk"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))
}

func TestDefaults(t *testing.T) {
	t.Setenv(EnvMaxOpen, "")
	cfg, err := LoadFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	o, err := cfg.WalkOptions()
	require.NoError(t, err)
	assert.Equal(t, 10, o.MaxOpen)
	assert.Equal(t, walk.Unlimited, o.MaxDepth)
	assert.Nil(t, o.Sort)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Setenv(EnvMaxOpen, "")
	dir := t.TempDir()
	writeConfig(t, dir, `
follow_links: true
max_depth: 3
content_order: dirs-first
sort: name
exclude:
  - "**/.git"
log_level: debug
`)
	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.True(t, cfg.FollowLinks)
	assert.Equal(t, 10, cfg.MaxOpen, "unset keys keep their defaults")
	assert.Equal(t, []string{"**/.git"}, cfg.Exclude)

	o, err := cfg.WalkOptions()
	require.NoError(t, err)
	assert.Equal(t, 3, o.MaxDepth)
	assert.Equal(t, walk.DirsFirst, o.Order)
	assert.NotNil(t, o.Sort)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "max_open: 4\n")

	t.Setenv(EnvMaxOpen, "2")
	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxOpen)

	t.Setenv(EnvMaxOpen, "lots")
	_, err = LoadFromDir(dir)
	assert.ErrorContains(t, err, EnvMaxOpen)
}

func TestParseError(t *testing.T) {
	t.Setenv(EnvMaxOpen, "")
	dir := t.TempDir()
	writeConfig(t, dir, "max_open: [\n")
	_, err := LoadFromDir(dir)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"max_open":       func(c *Config) { c.MaxOpen = 0 },
		"min_depth":      func(c *Config) { c.MinDepth = -1 },
		"min_over_max":   func(c *Config) { c.MinDepth, c.MaxDepth = 4, 2 },
		"content_filter": func(c *Config) { c.ContentFilter = "odd" },
		"content_order":  func(c *Config) { c.ContentOrder = "random" },
		"sort":           func(c *Config) { c.Sort = "size" },
		"exclude":        func(c *Config) { c.Exclude = []string{"[unclosed"} },
		"log_level":      func(c *Config) { c.LogLevel = "loud" },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
			_, err := c.WalkOptions()
			assert.Error(t, err)
		})
	}
	assert.NoError(t, Default().Validate())
}
