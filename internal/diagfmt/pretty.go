package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tsmerge/internal/diag"
	"tsmerge/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, mark *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		mark:   color.New(color.FgRed),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.mark} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		header := location(fs, d.Primary, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			header,
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message,
		)
		printContext(w, fs, d.Primary, opts, p)
		if opts.ShowNotes || d.Code == diag.PrjUnitCycle {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", p.info.Sprint("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
			}
		}
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if fs.Get(sp.File) == nil {
		return "tsmerge"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, sp.File, mode), start.Line, start.Col)
}

func printContext(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts, p palette) {
	f := fs.Get(sp.File)
	if f == nil || opts.Context < 0 {
		return
	}
	start, end := fs.Resolve(sp)
	line := strings.TrimRight(f.GetLine(start.Line), "\r")
	if line == "" {
		return
	}

	// колонки в байтах, для подчёркивания нужна ширина в ячейках
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	endCol := len(line)
	if end.Line == start.Line && int(end.Col)-1 <= len(line) {
		endCol = int(end.Col) - 1
	}
	if endCol < col {
		endCol = col
	}
	pad := runewidth.StringWidth(expandTabs(line[:col]))
	markWidth := runewidth.StringWidth(expandTabs(line[col:endCol]))
	if markWidth == 0 {
		markWidth = 1
	}

	shown := expandTabs(line)
	if opts.Width > 0 {
		shown = runewidth.Truncate(shown, int(opts.Width), "…")
	}
	gutter := fmt.Sprintf("%5d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", p.gutter.Sprint(gutter), shown)
	marker := "^" + strings.Repeat("~", markWidth-1)
	fmt.Fprintf(w, "%s%s%s\n", p.gutter.Sprint("      | "), strings.Repeat(" ", pad), p.mark.Sprint(marker))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
