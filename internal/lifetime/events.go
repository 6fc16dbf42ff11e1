package lifetime

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/vela-lang/vela/internal/srcspan"
)

// PayloadKind distinguishes the five metadata event shapes the parser
// emits (spec.md §6.1).
type PayloadKind int

const (
	PayloadStartNode PayloadKind = iota
	PayloadEndNode
	PayloadString
	PayloadBool
	PayloadNumber
)

// Event is one entry in the metadata stream: a source range plus one of
// the five payload shapes. Exactly one of the payload fields is
// meaningful, selected by Payload.
type Event struct {
	Range     srcspan.Span
	Payload   PayloadKind
	KindName  string  // StartNode / EndNode
	Key       string  // String / Bool / Number
	StrValue  string  // String
	BoolValue bool    // Bool
	NumValue  float64 // Number
}

// StartNode builds a StartNode event.
func StartNode(rng srcspan.Span, kindName string) Event {
	return Event{Range: rng, Payload: PayloadStartNode, KindName: kindName}
}

// EndNode builds an EndNode event.
func EndNode(rng srcspan.Span, kindName string) Event {
	return Event{Range: rng, Payload: PayloadEndNode, KindName: kindName}
}

// StringField builds a String event.
func StringField(rng srcspan.Span, key, value string) Event {
	return Event{Range: rng, Payload: PayloadString, Key: key, StrValue: value}
}

// BoolField builds a Bool event.
func BoolField(rng srcspan.Span, key string, value bool) Event {
	return Event{Range: rng, Payload: PayloadBool, Key: key, BoolValue: value}
}

// NumberField builds a Number event.
func NumberField(rng srcspan.Span, key string, value float64) Event {
	return Event{Range: rng, Payload: PayloadNumber, Key: key, NumValue: value}
}

// CurrentStreamVersion is the schema version this builder was written
// against; incoming streams are validated against streamConstraint. Bumping the major component is a breaking
// change to the event vocabulary.
const CurrentStreamVersion = "1.0.0"

// streamConstraint accepts any stream whose schema version is
// backward-compatible with the version this builder was written against.
var streamConstraint = mustConstraint(">=1.0.0, <2.0.0")

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(fmt.Sprintf("lifetime: invalid built-in version constraint %q: %v", expr, err))
	}

	return c
}

// StreamEnvelope wraps the metadata event stream with the schema version
// the emitting parser targeted. The builder refuses to process a stream
// whose version it cannot safely interpret (spec.md §6.1's "extension-safe"
// framing made concrete: unknown keys are ignored, but an incompatible
// major version is rejected outright).
type StreamEnvelope struct {
	SchemaVersion string
	Events        []Event
}

// checkVersion validates the envelope's schema version against the
// versions this builder understands.
func (e StreamEnvelope) checkVersion() error {
	v, err := semver.NewVersion(e.SchemaVersion)
	if err != nil {
		return fmt.Errorf("lifetime: invalid stream schema version %q: %w", e.SchemaVersion, err)
	}

	if !streamConstraint.Check(v) {
		return fmt.Errorf("lifetime: stream schema version %s is incompatible with builder version %s (accepts %s)",
			e.SchemaVersion, CurrentStreamVersion, streamConstraint.String())
	}

	return nil
}
