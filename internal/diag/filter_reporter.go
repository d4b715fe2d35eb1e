package diag

import "tsmerge/internal/source"

// FilterReporter forwards everything except the listed codes.
type FilterReporter struct {
	next    Reporter
	dropped map[Code]struct{}
}

// NewFilterReporter wraps next and drops diagnostics carrying any of codes.
func NewFilterReporter(next Reporter, codes ...Code) *FilterReporter {
	dropped := make(map[Code]struct{}, len(codes))
	for _, c := range codes {
		dropped[c] = struct{}{}
	}
	return &FilterReporter{next: next, dropped: dropped}
}

// Drops reports whether code is filtered out.
func (r *FilterReporter) Drops(code Code) bool {
	if r == nil {
		return false
	}
	_, ok := r.dropped[code]
	return ok
}

func (r *FilterReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil || r.Drops(code) || r.next == nil {
		return
	}
	r.next.Report(code, sev, primary, msg, notes)
}
