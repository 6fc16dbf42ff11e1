package lifetime

// Build walks a metadata event stream (spec.md §4.1) and produces the
// arena-indexed node graph it describes. It is the only way to construct
// a []Node for this package: node indices are stable for the lifetime of
// the returned slice and must never be reordered afterwards.
//
// Build validates the envelope's schema version before touching a single
// event, rejecting streams emitted by an incompatible parser version
// rather than silently misinterpreting an unrecognized vocabulary.
func Build(envelope StreamEnvelope) ([]Node, error) {
	if err := envelope.checkVersion(); err != nil {
		return nil, err
	}

	b := &builder{}

	if err := b.run(envelope.Events); err != nil {
		return nil, err
	}

	return b.nodes, nil
}

type builder struct {
	nodes   []Node
	parents []int // stack of open parent indices
}

func (b *builder) top() (int, bool) {
	if len(b.parents) == 0 {
		return -1, false
	}

	return b.parents[len(b.parents)-1], true
}

func (b *builder) run(events []Event) error {
	skipUntil := -1

	for i, ev := range events {
		if skipUntil >= 0 {
			if i <= skipUntil {
				continue
			}

			skipUntil = -1
		}

		switch ev.Payload {
		case PayloadStartNode:
			consumed, err := b.startNode(events, i, ev)
			if err != nil {
				return err
			}

			if consumed > i {
				skipUntil = consumed
			}
		case PayloadEndNode:
			b.endNode(i, ev)
		case PayloadString:
			b.stringField(ev)
		case PayloadBool:
			b.boolField(ev)
		case PayloadNumber:
			if err := b.numberField(ev); err != nil {
				return err
			}
		}
	}

	return nil
}

// startNode handles a StartNode event. It returns the index of the last
// event consumed by a skipped type subtree (equal to i when nothing was
// skipped), and an error for an unrecognized kind name.
func (b *builder) startNode(events []Event, i int, ev Event) (int, error) {
	kind, ok := ParseKind(ev.KindName)
	if !ok {
		return i, newBuildError(ev.Range, "Unknown kind `%s`", ev.KindName)
	}

	if IsTypeSubtree(kind) {
		end := findTypeSubtreeEnd(events, i)

		if parent, ok := b.top(); ok {
			if ty, ok := tryParseTypeSubtree(events, i, end); ok {
				b.nodes[parent].Ty = &ty
			}
			// A malformed type subtree is recovered from silently: the
			// parent keeps whatever defensive default it already has,
			// and downstream inference gets another chance.
		}

		return end, nil
	}

	parent, hasParent := b.top()
	parentIdx := -1

	if hasParent {
		parentIdx = parent
	}

	n := NewNode(kind, parentIdx)
	n.Ty = defensiveDefaultType(kind)
	n.Start = i

	b.nodes = append(b.nodes, n)
	b.parents = append(b.parents, len(b.nodes)-1)

	return i, nil
}

func (b *builder) endNode(i int, ev Event) {
	if len(b.parents) == 0 {
		return
	}

	ind := b.parents[len(b.parents)-1]
	b.parents = b.parents[:len(b.parents)-1]

	b.nodes[ind].Source = ev.Range
	b.nodes[ind].End = i + 1

	if parent, ok := b.top(); ok {
		b.nodes[parent].Children = append(b.nodes[parent].Children, ind)
	}
}

func (b *builder) stringField(ev Event) {
	i, ok := b.top()
	if !ok {
		return
	}

	node := &b.nodes[i]

	switch ev.Key {
	case "alias":
		node.Alias = ev.StrValue
	case "name":
		node.Names = append(node.Names, ev.StrValue)
	case "word":
		appendWordFragment(node, ev.StrValue)
	case "lifetime":
		node.LifetimeAnnotation = ev.StrValue
	case "text":
		t := TextType()
		node.Ty = &t
	case "color":
		t := Vec4Type()
		node.Ty = &t
	}
}

// appendWordFragment assembles an identifier out of word-split tokens,
// snake-joining fragments into the node's first name (spec.md §4.1 step
// 3, "word"). CallClosure names never get the trailing-underscore
// priming the first fragment otherwise receives.
func appendWordFragment(node *Node, word string) {
	if len(node.Names) == 0 {
		name := word
		if node.Kind != KindCallClosure {
			name += "_"
		}

		node.Names = append(node.Names, name)

		return
	}

	node.Names[0] = node.Names[0] + "_" + word
}

func (b *builder) boolField(ev Event) {
	i, ok := b.top()
	if !ok {
		return
	}

	node := &b.nodes[i]

	switch ev.Key {
	case ":=":
		node.Op = AssignOpDeclare
	case "=":
		node.Op = AssignOpSet
	case "+=":
		node.Op = AssignOpAdd
	case "-=":
		node.Op = AssignOpSub
	case "*=":
		node.Op = AssignOpMul
	case "/=":
		node.Op = AssignOpDiv
	case "%=":
		node.Op = AssignOpRem
	case "^=":
		node.Op = AssignOpPow
	case "mut":
		node.Mutable = ev.BoolValue
	case "try", "try_item":
		node.Try = ev.BoolValue
	case "bool":
		t := BoolType()
		node.Ty = &t
	case "returns":
		t := AnyType()
		if !ev.BoolValue {
			t = VoidType()
		}

		node.Ty = &t
	case "return_void":
		// There is no sub-node for a void return; rewrite the node's own
		// kind instead (spec.md §4.1 step 4, "return_void").
		node.Kind = KindReturnVoid
	case "*.":
		node.Binops = append(node.Binops, BinOpDot)
	case "x":
		node.Binops = append(node.Binops, BinOpCross)
	case "*":
		node.Binops = append(node.Binops, BinOpMul)
	case "/":
		node.Binops = append(node.Binops, BinOpDiv)
	case "%":
		node.Binops = append(node.Binops, BinOpRem)
	case "&&":
		node.Binops = append(node.Binops, BinOpAndAlso)
	}
}

func (b *builder) numberField(ev Event) error {
	i, ok := b.top()
	if !ok {
		return nil
	}

	node := &b.nodes[i]

	switch ev.Key {
	case "num":
		t := F64Type()
		node.Ty = &t
	case "grab_level":
		if ev.NumValue < 1 {
			return newBuildError(ev.Range, "Grab level must be at least `'1`")
		}

		node.GrabLevel = uint16(ev.NumValue)
	}

	return nil
}

// defensiveDefaultType returns the type the builder assigns on sight for
// kinds whose result type is known structurally, ahead of real inference
// (spec.md §4.1's defensive-default table).
func defensiveDefaultType(kind Kind) *Type {
	var t Type

	switch kind {
	case KindArray, KindArrayFill, KindSift:
		t = ArrayType()
	case KindVec4, KindVec4UnLoop, KindSwizzle:
		t = Vec4Type()
	case KindObject:
		t = ObjectType()
	case KindSum, KindProd, KindNorm:
		t = F64Type()
	case KindLink, KindLinkFor:
		t = LinkType()
	case KindAny, KindAll:
		t = SecretBoolType()
	case KindMin, KindMax:
		t = SecretF64Type()
	case KindFor, KindForN:
		t = VoidType()
	default:
		return nil
	}

	return &t
}

// findTypeSubtreeEnd scans forward from a type-subtree StartNode at index
// i to the index of its matching EndNode, tracking nesting depth by kind
// name so that a type containing further Type/RetType markers (e.g. a
// generic parameter) is skipped as one unit.
func findTypeSubtreeEnd(events []Event, i int) int {
	depth := 0

	for j := i; j < len(events); j++ {
		ev := events[j]

		switch ev.Payload {
		case PayloadStartNode:
			if ev.KindName == events[i].KindName {
				depth++
			}
		case PayloadEndNode:
			if ev.KindName == events[i].KindName {
				depth--
				if depth == 0 {
					return j
				}
			}
		}
	}

	return len(events) - 1
}

// tryParseTypeSubtree is the defensive stand-in for the external type
// parser spec.md §1 excludes from this core's scope. It recognizes the
// same scalar hints the builder itself understands (bool/text/color/num)
// when they appear directly inside the subtree, and otherwise reports
// failure — which the caller treats as a silently recovered malformed
// subtree (spec.md §4.1, a deliberate choice so later inference can
// attempt recovery).
func tryParseTypeSubtree(events []Event, start, end int) (Type, bool) {
	for j := start; j <= end && j < len(events); j++ {
		ev := events[j]
		if ev.Payload != PayloadBool && ev.Payload != PayloadString && ev.Payload != PayloadNumber {
			continue
		}

		switch ev.Key {
		case "bool":
			return BoolType(), true
		case "text":
			return TextType(), true
		case "color":
			return Vec4Type(), true
		case "num":
			return F64Type(), true
		}
	}

	return Type{}, false
}
