package diagfmt

import (
	"fmt"
	"path/filepath"

	"condflow/internal/source"
)

const autoPathLimit = 40

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return abs
		}
		return f.Path
	case PathModeRelative:
		return f.RelPath(baseDir)
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	if filepath.IsAbs(f.Path) && len(f.Path) > autoPathLimit {
		return filepath.Base(f.Path)
	}
	return f.Path
}

// formatPos renders the start of span as path:line:col.
func formatPos(fs *source.FileSet, span source.Span, mode PathMode) string {
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(span.File), mode, fs.BaseDir()), start.Line, start.Col)
}

// formatRange renders span as startLine:startCol-endLine:endCol.
func formatRange(fs *source.FileSet, span source.Span) string {
	start, end := fs.Resolve(span)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}
