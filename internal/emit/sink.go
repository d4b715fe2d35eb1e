package emit

import (
	"fmt"
	"os"
	"path/filepath"

	"tsmerge/internal/ast"
	"tsmerge/internal/diag"
	"tsmerge/internal/printer"
	"tsmerge/internal/source"
)

// Sink serializes writes and turns failures into diagnostics.
type Sink struct {
	write  WriteFileFunc
	r      diag.Reporter
	failed int
}

// NewSink wraps write; r may be nil.
func NewSink(write WriteFileFunc, r diag.Reporter) *Sink {
	return &Sink{write: write, r: r}
}

// Write hands one file to the hook and reports whether it succeeded.
func (s *Sink) Write(path, text string, bom bool) bool {
	if s.write == nil {
		return false
	}
	if err := s.write(path, text, bom); err != nil {
		s.failed++
		diag.ReportError(s.r, diag.IOWriteFailed, source.Span{File: source.NoFile},
			fmt.Sprintf("cannot write %s: %v", path, err)).Emit()
		return false
	}
	return true
}

// Failed reports how many writes failed.
func (s *Sink) Failed() int { return s.failed }

func (s *Sink) emit(p *printer.Printer, path string, units []*ast.Unit, bom bool) Output {
	text := Concat(p, units)
	return Output{
		Path:    path,
		Units:   units,
		Bytes:   len(text),
		Written: s.Write(path, text, bom),
	}
}

// DiskWriter writes files to disk, creating parent directories.
func DiskWriter(path, text string, bom bool) error {
	data := []byte(text)
	if bom {
		data = source.WithBOM(data)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var _ WriteFileFunc = DiskWriter
