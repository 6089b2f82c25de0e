package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/elliotnunn/dirwalk/internal/index"
	"github.com/elliotnunn/dirwalk/internal/walk"
)

func newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <root>",
		Short: "Store every entry under root in an index",
		Long: `Walk root and replace the contents of the index database with
one record per entry. Errors are printed and the walk carries on.`,
		Args: cobra.ExactArgs(1),
		RunE: runIndex,
	}
	cmd.Flags().String("db", "", "index database directory (default index_dir from config)")
	return cmd
}

func newListIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-index [prefix]",
		Short: "List indexed entries in path order",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runListIndex,
	}
	cmd.Flags().String("db", "", "index database directory (default index_dir from config)")
	cmd.Flags().BoolP("long", "l", false, "print mode, size and time")
	return cmd
}

func dbDir(cmd *cobra.Command, fallback string) string {
	if d, _ := cmd.Flags().GetString("db"); d != "" {
		return d
	}
	return fallback
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := args[0]
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	opts, err := cfg.WalkOptions()
	if err != nil {
		return err
	}

	dir := dbDir(cmd, cfg.IndexDir)
	x, err := index.Open(dir)
	if err != nil {
		return err
	}
	if err := x.Clear(); err != nil {
		x.Close()
		return err
	}
	abs, err := filepath.Abs(root)
	if err == nil {
		err = x.SetRoot(abs)
	}
	if err != nil {
		x.Close()
		return err
	}

	w := walk.New(root, opts)
	defer w.Close()

	slog.Info("indexStart", "root", root, "db", dir)
	t := time.Now()
	var n, nerr int
	for e, err := range walk.Entries(excluding(w, root, cfg.Exclude)) {
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			nerr++
			continue
		}
		if err := x.Put(index.FromEntry(e)); err != nil {
			x.Close()
			return err
		}
		n++
	}
	if err := x.Close(); err != nil {
		return err
	}
	slog.Info("indexStop", "entries", n, "errors", nerr, "duration", time.Since(t).String())

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d entries from %s\n", n, root)
	if nerr > 0 {
		return fmt.Errorf("%d errors walking %s", nerr, root)
	}
	return nil
}

func runListIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}
	var prefix string
	if len(args) > 0 {
		prefix = args[0]
	}
	long, _ := cmd.Flags().GetBool("long")

	x, err := index.Open(dbDir(cmd, cfg.IndexDir))
	if err != nil {
		return err
	}
	defer x.Close()

	root, err := x.Root()
	if err != nil {
		return err
	}
	if root != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "index of %s\n", root)
	}

	out := cmd.OutOrStdout()
	for r, err := range x.Scan(prefix) {
		if err != nil {
			return err
		}
		if long {
			fmt.Fprintf(out, "%v %10d %s %s\n", r.Mode, r.Size, r.ModTime.Format(tfmt), r.Path)
		} else {
			fmt.Fprintln(out, r.Path)
		}
	}
	return nil
}
