// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Command dirwalk walks a directory tree and prints what it finds,
// or stores it in an index for later listing.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/elliotnunn/dirwalk/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirwalk [flags] <root>",
		Short: "Walk a directory tree",
		Long: `Walk a directory tree depth first, printing one line per entry.

Settings are read from .dirwalk.yaml in the root (or --config),
then DIRWALK_MAXOPEN, then the flags below.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runWalk,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.PersistentFlags()
	f.String("config", "", "config file (default <root>/"+config.FileName+")")
	f.BoolP("follow-links", "L", false, "descend into symbolic links to directories")
	f.Bool("yield-loop-links", false, "report links back to an ancestor as entries, not errors")
	f.BoolP("same-file-system", "x", false, "do not cross onto other devices")
	f.Int("max-open", 10, "directory handles to keep open at once")
	f.Int("min-depth", 0, "hide entries shallower than this")
	f.Int("max-depth", -1, "do not descend below this depth (-1 for no limit)")
	f.Bool("contents-first", false, "print a directory after its contents")
	f.String("filter", "none", "hide entries: none, files, dirs or skip")
	f.String("order", "none", "within a directory: none, files-first or dirs-first")
	f.String("sort", "none", "sort siblings: none, name or disk")
	f.StringArray("exclude", nil, "skip paths matching this glob, relative to the root (repeatable)")
	f.String("log-level", "warn", "debug, info, warn or error")

	cmd.Flags().Bool("positions", false, "also print > and < around each directory's contents")
	cmd.Flags().BoolP("long", "l", false, "print mode, size and time")
	cmd.Flags().Bool("no-color", false, "never colour the output")

	cmd.AddCommand(newIndexCommand(), newListIndexCommand())
	return cmd
}

// loadConfig layers the flags the user actually set over the config file.
func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	f := cmd.Flags()
	var (
		cfg *config.Config
		err error
	)
	if p, _ := f.GetString("config"); p != "" {
		cfg, err = config.Load(p)
	} else {
		cfg, err = config.LoadFromDir(root)
	}
	if err != nil {
		return nil, err
	}

	boolFlags := map[string]*bool{
		"follow-links":     &cfg.FollowLinks,
		"yield-loop-links": &cfg.YieldLoopLinks,
		"same-file-system": &cfg.SameFileSystem,
		"contents-first":   &cfg.ContentsFirst,
	}
	for name, dst := range boolFlags {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}
	intFlags := map[string]*int{
		"max-open":  &cfg.MaxOpen,
		"min-depth": &cfg.MinDepth,
		"max-depth": &cfg.MaxDepth,
	}
	for name, dst := range intFlags {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	stringFlags := map[string]*string{
		"filter":    &cfg.ContentFilter,
		"order":     &cfg.ContentOrder,
		"sort":      &cfg.Sort,
		"log-level": &cfg.LogLevel,
	}
	for name, dst := range stringFlags {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("exclude") {
		more, _ := f.GetStringArray("exclude")
		cfg.Exclude = append(cfg.Exclude, more...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogging(cmd.ErrOrStderr(), cfg)
	return cfg, nil
}

func setupLogging(w io.Writer, cfg *config.Config) {
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
