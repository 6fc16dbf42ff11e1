// Package srcspan tracks source positions and ranges for the lifetime
// analysis core. It is a trimmed adaptation of the compiler's general
// position-tracking package, kept to the pieces the metadata-event stream
// and the node graph actually need: a point in source and a range between
// two points.
package srcspan

import (
	"fmt"
	"path/filepath"
)

// Position is a single point in source code.
type Position struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based
	Offset   int // 0-based byte offset
}

// IsValid reports whether p carries a usable location.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0 && p.Offset >= 0
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", filepath.Base(p.Filename), p.Line, p.Column)
	}

	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Before reports whether p comes strictly before other in the same file.
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}

	return p.Offset < other.Offset
}

// Span is a half-open range [Start, End) of source.
type Span struct {
	Start Position
	End   Position
}

// IsValid reports whether the span has two valid, ordered endpoints in the
// same file.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() &&
		s.Start.Filename == s.End.Filename &&
		s.Start.Offset <= s.End.Offset
}

func (s Span) String() string {
	filename := ""
	if s.Start.Filename != "" {
		filename = filepath.Base(s.Start.Filename) + ":"
	}

	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s%d:%d-%d", filename, s.Start.Line, s.Start.Column, s.End.Column)
	}

	return fmt.Sprintf("%s%d:%d-%d:%d", filename, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Union returns the smallest span covering both s and other. A span with
// no valid endpoints is treated as empty and does not affect the result.
func (s Span) Union(other Span) Span {
	if !s.IsValid() {
		return other
	}

	if !other.IsValid() {
		return s
	}

	if s.Start.Filename != other.Start.Filename {
		return s
	}

	start := s.Start
	if other.Start.Before(start) {
		start = other.Start
	}

	end := s.End
	if end.Before(other.End) {
		end = other.End
	}

	return Span{Start: start, End: end}
}
