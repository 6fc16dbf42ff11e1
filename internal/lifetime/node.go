package lifetime

import (
	"fmt"
	"io"
	"strings"

	"github.com/vela-lang/vela/internal/srcspan"
)

// AssignOp tags the operator used by an Assign node.
type AssignOp int

const (
	AssignOpNone AssignOp = iota
	AssignOpDeclare           // :=
	AssignOpSet               // =
	AssignOpAdd               // +=
	AssignOpSub               // -=
	AssignOpMul               // *=
	AssignOpDiv               // /=
	AssignOpRem               // %=
	AssignOpPow               // ^=
)

// BinOp tags a binary operator recorded on a node's Binops list.
type BinOp int

const (
	BinOpDot BinOp = iota
	BinOpCross
	BinOpMul
	BinOpDiv
	BinOpRem
	BinOpAndAlso
)

// Node is one entry in the arena-indexed syntax graph. Parent/child links
// are indices into the same Node slice a Node was built into, never
// pointers — the slice is never reordered or shrunk after Build returns
// (spec.md §3 invariants).
type Node struct {
	Kind Kind

	Alias string
	Names []string

	Ty *Type

	Mutable bool
	Try     bool

	GrabLevel uint16

	Source srcspan.Span

	Parent   int // -1 when absent
	Children []int

	Start int
	End   int

	LifetimeAnnotation string // user-written annotation, e.g. "return"

	Declaration int // -1 when absent

	Op     AssignOp
	Binops []BinOp

	// Lts holds one argument-lifetime constraint per declared argument
	// position of the called function. The solver reads it on Call nodes
	// (intrinsic calls). Build never sets it; it is empty unless the
	// caller fills it in.
	Lts []Lt
}

// NoIndex marks an absent Parent/Declaration reference.
const NoIndex = -1

// NewNode returns a zero Node ready to be appended to an arena, with the
// optional-index fields set to NoIndex rather than Go's zero value (which
// would alias index 0).
func NewNode(kind Kind, parent int) Node {
	return Node{
		Kind:        kind,
		Parent:      parent,
		Declaration: NoIndex,
	}
}

// Name returns the node's first name, if any.
func (n *Node) Name() (string, bool) {
	if len(n.Names) == 0 {
		return "", false
	}

	return n.Names[0], true
}

// FindChildByKind returns the index of the first child with the given
// kind, or (-1, false) if none matches.
func (n *Node) FindChildByKind(nodes []Node, kind Kind) (int, bool) {
	for _, c := range n.Children {
		if nodes[c].Kind == kind {
			return c, true
		}
	}

	return -1, false
}

// ItemIDs reports whether this node is an Item with at least one child
// (an identifier with accessor/call sub-structure, as opposed to a bare
// name reference).
func (n *Node) ItemIDs() bool {
	return n.Kind == KindItem && len(n.Children) > 0
}

// InnerType unwraps ty through an Option/Result wrapper when the node has
// the `?` operator applied (n.Try); otherwise it returns ty unchanged.
func (n *Node) InnerType(ty Type) Type {
	if !n.Try {
		return ty
	}

	switch ty.Tag {
	case TypeOption, TypeResult:
		if ty.Inner != nil {
			return *ty.Inner
		}

		return ty
	default:
		return ty
	}
}

// Dump writes an indented tree of n and its descendants to w, in the
// style of a debugger's node printer: kind, first name, type and
// declaration per line.
func (n *Node) Dump(nodes []Node, w io.Writer, indent int) {
	pad := strings.Repeat(" ", indent)

	name, hasName := n.Name()
	nameStr := "<none>"
	if hasName {
		nameStr = name
	}

	tyStr := "<none>"
	if n.Ty != nil {
		tyStr = n.Ty.String()
	}

	declStr := "<none>"
	if n.Declaration != NoIndex {
		declStr = fmt.Sprintf("%d", n.Declaration)
	}

	fmt.Fprintf(w, "%skind: %s, name: %s, type: %s, decl: %s {\n", pad, n.Kind, nameStr, tyStr, declStr)

	for _, c := range n.Children {
		nodes[c].Dump(nodes, w, indent+1)
	}

	fmt.Fprintf(w, "%s}\n", pad)
}
