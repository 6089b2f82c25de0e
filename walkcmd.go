package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/elliotnunn/dirwalk/internal/source"
	"github.com/elliotnunn/dirwalk/internal/walk"
)

func runWalk(cmd *cobra.Command, args []string) error {
	root := args[0]
	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}
	opts, err := cfg.WalkOptions()
	if err != nil {
		return err
	}

	long, _ := cmd.Flags().GetBool("long")
	positions, _ := cmd.Flags().GetBool("positions")
	noColor, _ := cmd.Flags().GetBool("no-color")
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), long, positions, noColor)

	b := source.NewOS()
	w := walk.NewWith[*walk.Entry](root, b, walk.EntryProcessor{Backend: b}, opts)
	defer w.Close()

	slog.Info("walkStart", "root", root, "maxOpen", w.Options().MaxOpen, "maxDepth", w.Options().MaxDepth)
	t := time.Now()
	var nerr, n int
	for pos := range walk.Positions(excluding(w, root, cfg.Exclude)) {
		if p.position(pos) {
			nerr++
		}
		n++
	}
	hits, misses := b.IDStats()
	slog.Info("walkStop", "positions", n, "errors", nerr, "idHits", hits, "idMisses", misses, "duration", time.Since(t).String())

	if nerr > 0 {
		return fmt.Errorf("%d errors walking %s", nerr, root)
	}
	return nil
}
