package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"condflow/internal/diag"
	"condflow/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	note, gutter    *color.Color
	fix, bold       *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		gutter: color.New(color.FgBlue),
		fix:    color.New(color.FgGreen),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.fix, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty renders the diagnostics of bag in source order, expected to be
// sorted with bag.Sort beforehand. Each entry prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with the primary span underlined ^~~~, and
// the notes and fixes when opts ask for them.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sev := p.severity(d.Severity)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.bold.Sprint(formatPos(fs, d.Primary, opts.PathMode)),
			sev.Sprint(d.Severity.String()),
			sev.Sprint(d.Code.ID()),
			d.Message)
		writeExcerpt(w, fs, d.Primary, opts.Context, sev, p)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), formatPos(fs, n.Span, opts.PathMode), n.Msg)
			}
		}
		if opts.ShowFixes {
			writeFixes(w, fs, d.Fixes, opts, p)
		}
	}
}

func writeExcerpt(w io.Writer, fs *source.FileSet, span source.Span, context int8, sev *color.Color, p palette) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	lineCount := uint32(len(f.LineIdx)) + 1 // #nosec G115 -- bounded by file size
	from := start.Line - min(start.Line-1, uint32(max(context, 0)))
	to := min(start.Line+uint32(max(context, 0)), lineCount)
	width := len(fmt.Sprint(to))

	for ln := from; ln <= to; ln++ {
		text := f.GetLine(ln)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, ln), text)
		if ln != start.Line {
			continue
		}
		endCol := uint32(len(text)) + 1 // #nosec G115 -- line length
		if end.Line == start.Line {
			endCol = min(end.Col, endCol)
		}
		pad, mark := caret(text, int(start.Col)-1, int(endCol)-1)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad, sev.Sprint(mark))
	}
}

// caret returns the padding that lines a marker up under the bytes
// [from, to) of line and the marker itself, measured in display cells.
// Tabs are kept in the padding so the marker lines up on any tab width.
func caret(line string, from, to int) (string, string) {
	from = min(max(from, 0), len(line))
	to = min(max(to, from), len(line))
	var pad strings.Builder
	for _, r := range line[:from] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	n := max(runewidth.StringWidth(line[from:to]), 1)
	return pad.String(), "^" + strings.Repeat("~", n-1)
}

func writeFixes(w io.Writer, fs *source.FileSet, fixes []diag.Fix, opts PrettyOpts, p palette) {
	for i, fix := range fixes {
		fmt.Fprintf(w, "  %s %s\n", p.fix.Sprintf("fix #%d:", i+1), fix.Title)
		for _, edit := range fix.Edits {
			fmt.Fprintf(w, "    edit %s %s apply=%q\n",
				formatPath(fs.Get(edit.Span.File), opts.PathMode, fs.BaseDir()),
				formatRange(fs, edit.Span), edit.NewText)
			if !opts.ShowPreview {
				continue
			}
			preview, err := buildFixEditPreview(fs, edit)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, line := range preview.before {
				fmt.Fprintf(w, "      %s\n", p.err.Sprint("- "+line))
			}
			for _, line := range preview.after {
				fmt.Fprintf(w, "      %s\n", p.fix.Sprint("+ "+line))
			}
		}
	}
}
