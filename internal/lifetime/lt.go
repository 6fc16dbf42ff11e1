package lifetime

import (
	"fmt"
	"strings"
)

// LtKind is the shape of a single argument-lifetime constraint attached to
// one declared argument of a function (spec.md §3).
type LtKind int

const (
	// LtDefault: no constraint; the argument's lifetime does not flow to
	// the function's return value.
	LtDefault LtKind = iota
	// LtReturn: the return value may borrow from this argument.
	LtReturn
	// LtArg: this argument's lifetime is chained to another argument's,
	// identified by ArgIndex.
	LtArg
)

// Lt is one argument-lifetime constraint. ArgIndex is only meaningful when
// Kind == LtArg.
type Lt struct {
	Kind     LtKind
	ArgIndex int
}

// DefaultLt is the zero-value, no-constraint Lt.
func DefaultLt() Lt { return Lt{Kind: LtDefault} }

// ReturnLt marks an argument as return-bound.
func ReturnLt() Lt { return Lt{Kind: LtReturn} }

// ArgLt chains an argument's lifetime to argument k.
func ArgLt(k int) Lt { return Lt{Kind: LtArg, ArgIndex: k} }

// LifetimeKind is the variant tag of a resolved Lifetime (spec.md §3).
type LifetimeKind int

const (
	LifetimeLocal LifetimeKind = iota
	LifetimeCurrent
	LifetimeArgument
	LifetimeReturn
)

func (k LifetimeKind) String() string {
	switch k {
	case LifetimeLocal:
		return "Local"
	case LifetimeCurrent:
		return "Current"
	case LifetimeArgument:
		return "Argument"
	case LifetimeReturn:
		return "Return"
	default:
		return "Unknown"
	}
}

// Lifetime is a computed lifetime: which storage region an expression's
// result may legally borrow from.
//
//   - Local(Index)            — borrows from declaration node Index.
//   - Current(Index)          — borrows from current-object binding Index.
//   - Argument(Index, Path)   — borrows from argument Index of the
//     enclosing function; Path records the chain of Lt::Arg indirections
//     that led here.
//   - Return(Path)            — promised to outlive the function's return.
type Lifetime struct {
	Kind  LifetimeKind
	Index int
	Path  []int
}

func Local(index int) Lifetime   { return Lifetime{Kind: LifetimeLocal, Index: index} }
func Current(index int) Lifetime { return Lifetime{Kind: LifetimeCurrent, Index: index} }

func Argument(index int, path []int) Lifetime {
	return Lifetime{Kind: LifetimeArgument, Index: index, Path: path}
}

func Return(path []int) Lifetime {
	return Lifetime{Kind: LifetimeReturn, Path: path}
}

// String renders a Lifetime the way its variants are written in spec.md's
// worked scenarios, e.g. "Argument(0, [2])" or "Return([])".
func (l Lifetime) String() string {
	switch l.Kind {
	case LifetimeLocal:
		return fmt.Sprintf("Local(%d)", l.Index)
	case LifetimeCurrent:
		return fmt.Sprintf("Current(%d)", l.Index)
	case LifetimeArgument:
		return fmt.Sprintf("Argument(%d, %s)", l.Index, formatPath(l.Path))
	default: // LifetimeReturn
		return fmt.Sprintf("Return(%s)", formatPath(l.Path))
	}
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("%d", p)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// tier ranks a lifetime's variant so that Local/Current < Argument <
// Return along any shared chain, matching spec.md §9's lattice intuition:
// the most restrictive (most local) constraint dominates the fold.
func (l Lifetime) tier() int {
	switch l.Kind {
	case LifetimeLocal, LifetimeCurrent:
		return 0
	case LifetimeArgument:
		return 1
	default: // LifetimeReturn
		return 2
	}
}

func pathEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// compare reports whether a is strictly less (more restrictive) than b,
// and whether the two are comparable at all. Lifetimes in the same tier
// but referring to structurally unrelated bindings (different declaration
// indices, different argument identities) are incomparable: the solver's
// min-fold keeps whichever it encountered first rather than picking one
// arbitrarily (spec.md §4.2.5). The downstream checker is responsible for
// rejecting programs where that ambiguity matters.
func compare(a, b Lifetime) (less bool, comparable bool) {
	ta, tb := a.tier(), b.tier()
	if ta != tb {
		return ta < tb, true
	}

	switch a.Kind {
	case LifetimeLocal, LifetimeCurrent:
		if a.Kind != b.Kind {
			return false, false
		}

		if a.Index == b.Index {
			return false, true
		}

		return false, false
	case LifetimeArgument:
		if a.Index == b.Index && pathEqual(a.Path, b.Path) {
			return false, true
		}

		return false, false
	default: // LifetimeReturn
		if pathEqual(a.Path, b.Path) {
			return false, true
		}

		return false, false
	}
}

// minFold folds candidate into the running minimum. A nil current means
// "no lifetime seen yet". The result is the smaller of the two when they
// are comparable, or the unchanged current when they are not — keeping
// the first contributor encountered, per spec.md §4.2.5.
func minFold(current *Lifetime, candidate Lifetime) *Lifetime {
	if current == nil {
		c := candidate

		return &c
	}

	if less, comparable := compare(candidate, *current); comparable && less {
		c := candidate

		return &c
	}

	return current
}
