package main

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/elliotnunn/dirwalk/internal/walk"
)

// excluding hides entries matching any of patterns, which are matched
// against slash-separated paths relative to root. Excluded directories are
// not descended into.
func excluding(it walk.Iterator[*walk.Entry], root string, patterns []string) walk.Iterator[*walk.Entry] {
	if len(patterns) == 0 {
		return it
	}
	return walk.Filter(it, func(e *walk.Entry) bool {
		if e.Depth() == 0 {
			return true
		}
		rel, err := filepath.Rel(root, e.Path())
		if err != nil {
			return true
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				return false
			}
		}
		return true
	})
}
