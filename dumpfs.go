package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/elliotnunn/dirwalk/internal/walk"
)

const tfmt = "2006-01-02T15:04:05"

type printer struct {
	out, errOut io.Writer
	long        bool
	positions   bool
	open        []string // directories whose contents are being printed

	dir, link, bad, marker *color.Color
}

func newPrinter(out, errOut io.Writer, long, positions, noColor bool) *printer {
	p := &printer{
		out:       out,
		errOut:    errOut,
		long:      long,
		positions: positions,
		dir:       color.New(color.FgBlue, color.Bold),
		link:      color.New(color.FgCyan),
		bad:       color.New(color.FgRed),
		marker:    color.New(color.FgHiBlack),
	}
	useColor := !noColor
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		useColor = false
	}
	for _, c := range []*color.Color{p.dir, p.link, p.bad, p.marker} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// position prints one step of the walk and reports whether it was an error.
func (p *printer) position(pos walk.Position[*walk.Entry]) bool {
	switch pos.Kind {
	case walk.PosBeforeContent:
		p.open = append(p.open, pos.Item.Path())
		if p.positions {
			fmt.Fprintln(p.out, p.marker.Sprintf("%s> %s", indent(pos.Depth), pos.Item.Path()))
		}
	case walk.PosAfterContent:
		var name string
		if n := len(p.open); n > 0 {
			name = p.open[n-1]
			p.open = p.open[:n-1]
		}
		if p.positions {
			fmt.Fprintln(p.out, p.marker.Sprintf("%s< %s", indent(pos.Depth), name))
		}
	case walk.PosError:
		p.bad.Fprintf(p.errOut, "%v\n", pos.Err)
		return true
	case walk.PosEntry:
		p.entry(pos.Item)
	}
	return false
}

func (p *printer) entry(e *walk.Entry) {
	name := e.Path()
	switch {
	case e.IsDir():
		name = p.dir.Sprint(name)
	case e.PathIsSymlink():
		name = p.link.Sprint(name)
	}
	if p.positions {
		name = indent(e.Depth()) + name
	}
	if !p.long {
		fmt.Fprintln(p.out, name)
		return
	}

	i, _ := e.Info()
	fmt.Fprintf(p.out, "%v %10d %s %s", i.Mode(), i.Size(), i.ModTime().Format(tfmt), name)
	if idx, ok := e.LoopLink(); ok {
		fmt.Fprintf(p.out, " (loop to ancestor %d)", idx)
	}
	fmt.Fprintln(p.out)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
