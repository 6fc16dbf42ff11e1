package lifetime

import (
	"fmt"

	"github.com/vela-lang/vela/internal/srcspan"
)

// BuildError is a ranged error produced while constructing the node graph
// from a metadata event stream: an unknown node kind or an invalid grab
// level (spec.md §7). It is the only error kind the event walk returns;
// Build's schema-version check ahead of the walk returns plain errors, and
// malformed type subtrees are recovered from silently (spec.md §4.1 step
// 1b) rather than surfaced here.
type BuildError struct {
	Span    srcspan.Span
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Span.String())
}

func newBuildError(span srcspan.Span, format string, args ...any) *BuildError {
	return &BuildError{Span: span, Message: fmt.Sprintf(format, args...)}
}
