package lifetime

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ArgNames maps a declaration node's index to its ordinal position among
// its function's arguments. It is produced by an external name-resolution
// pass (spec.md §6.3). The solver passes it through to ArgLifetime, which
// does not read it: an annotation naming a sibling argument is resolved
// structurally, by matching the name against the Arg children of the
// declaring function.
type ArgNames map[int]int

// noLifetimeKinds are the kinds whose results never carry a borrow
// (spec.md §4.2.1).
var noLifetimeKinds = map[Kind]bool{
	KindPow: true, KindSum: true, KindProd: true, KindSumVec4: true,
	KindMin: true, KindMax: true, KindAny: true, KindAll: true,
	KindVec4: true, KindVec4UnLoop: true, KindSwizzle: true,
	KindAssign: true, KindFor: true, KindForN: true,
	KindLink: true, KindLinkFor: true,
	KindClosure: true, KindCallClosure: true, KindGrab: true,
	KindTryExpr: true, KindNorm: true,
}

// HasLifetime reports whether n's result can carry a borrow at all
// (spec.md §4.2.1). Add, Mul and Compare are pass-through only when they
// wrap exactly one child; with zero or several children they have no
// lifetime of their own.
func HasLifetime(n *Node) bool {
	if noLifetimeKinds[n.Kind] {
		return false
	}

	switch n.Kind {
	case KindAdd, KindMul, KindCompare:
		return len(n.Children) == 1
	default:
		return true
	}
}

// chainResolvesToReturn follows the Lt::Arg indirection chain from start
// and reports whether it ends at LtReturn. The walk is bounded by the
// number of constraints in lts: a well-formed program never needs more
// hops than that, so exceeding it means the annotations form a cycle,
// which panics instead of looping (spec.md §9's design note on
// indirection chains).
func chainResolvesToReturn(lts []Lt, start Lt) bool {
	lt := start

	for hop := 0; hop <= len(lts); hop++ {
		switch lt.Kind {
		case LtDefault:
			return false
		case LtReturn:
			return true
		case LtArg:
			if lt.ArgIndex < 0 || lt.ArgIndex >= len(lts) {
				// Malformed reference; treat defensively as unconstrained
				// rather than indexing out of range.
				return false
			}

			lt = lts[lt.ArgIndex]
		}
	}

	panic("lifetime: cyclic Lt::Arg chain detected")
}

// ArgLifetime resolves the lifetime contributed by referencing the
// argument declared at node index argIndex (spec.md §4.2.3).
func ArgLifetime(argIndex int, nodes []Node, argNames ArgNames) Lifetime {
	arg := &nodes[argIndex]

	if arg.LifetimeAnnotation == "return" {
		return Return([]int{argIndex})
	}

	if arg.LifetimeAnnotation != "" {
		if target, ok := resolveSiblingArgByName(nodes, argIndex, arg.LifetimeAnnotation); ok {
			_ = argNames // external resolver input; target is found structurally via the graph itself

			return Argument(target, []int{argIndex})
		}
	}

	return Argument(argIndex, nil)
}

// resolveSiblingArgByName finds the Arg child of argIndex's declaring
// function whose first name equals name.
func resolveSiblingArgByName(nodes []Node, argIndex int, name string) (int, bool) {
	arg := &nodes[argIndex]
	if arg.Parent == NoIndex {
		return -1, false
	}

	fn := &nodes[arg.Parent]

	for _, c := range fn.Children {
		if nodes[c].Kind != KindArg {
			continue
		}

		if n, ok := nodes[c].Name(); ok && n == name {
			return c, true
		}
	}

	return -1, false
}

// Lifetime computes the lifetime of node, or nil if it has none
// (spec.md §4.2.2).
func Lifetime(node *Node, nodes []Node, argNames ArgNames) *Lifetime {
	if !HasLifetime(node) {
		return nil
	}

	if node.Declaration != NoIndex {
		if node.Kind == KindItem {
			decl := &nodes[node.Declaration]

			switch decl.Kind {
			case KindArg:
				lt := ArgLifetime(node.Declaration, nodes, argNames)

				return &lt
			case KindCurrent:
				lt := Current(node.Declaration)

				return &lt
			default:
				lt := Local(node.Declaration)

				return &lt
			}
		}
	} else {
		if node.Kind == KindCall && len(node.Lts) > 0 {
			returnsStatic := true

			for _, lt := range node.Lts {
				if chainResolvesToReturn(node.Lts, lt) {
					returnsStatic = false

					break
				}
			}

			if returnsStatic {
				return nil
			}
		} else if node.Kind == KindItem {
			if name, ok := node.Name(); ok && name == "return" {
				lt := Return(nil)

				return &lt
			}
		}
	}

	return minLifetimeOverChildren(node, nodes, argNames)
}

// alwaysSkipChildKinds are child kinds the parent's result never borrows
// from, regardless of the parent: delimiters, counters, control
// predicates, and unary-operator operands (spec.md §4.2.4).
var alwaysSkipChildKinds = map[Kind]bool{
	KindStart: true, KindEnd: true, KindArg: true, KindCurrent: true,
	KindUnOp: true, KindCompare: true, KindCond: true, KindElseIfCond: true,
	KindN: true,
}

func minLifetimeOverChildren(node *Node, nodes []Node, argNames ArgNames) *Lifetime {
	var min *Lifetime

	callArgInd := 0

	for _, c := range node.Children {
		child := &nodes[c]

		if !isKnownKind(child.Kind) {
			panic(fmt.Sprintf("lifetime: unimplemented `(%s, %s)`. "+
				"Perhaps you need to add something to HasLifetime?", node.Kind, child.Kind))
		}

		contribute := true

		switch {
		case alwaysSkipChildKinds[child.Kind]:
			contribute = false
		case child.Kind == KindItem && node.Kind == KindCallClosure:
			// The item names the callee, not a borrowed input.
			contribute = false
		case child.Kind == KindCallArg && (node.Kind == KindCall || node.Kind == KindCallClosure):
			contribute = callArgContributes(node, nodes, argNames, callArgInd)
			callArgInd++
		}

		if !contribute {
			continue
		}

		lt := Lifetime(child, nodes, argNames)
		if lt == nil {
			continue
		}

		min = minFold(min, *lt)
	}

	return min
}

// callArgContributes decides whether the call-argument child at ordinal
// position callArgInd feeds the call's own lifetime: it does only when
// the corresponding declared parameter is itself return-bound (spec.md
// §4.2.4). Intrinsic calls carry their argument-lifetime constraints
// directly on the call node's own Lts (spec.md §4.2.2 point 3); calls to
// user-defined functions instead look the constraint up on the callee's
// declared Arg list via node.Declaration. When neither is available, the
// argument is conservatively treated as contributing.
func callArgContributes(node *Node, nodes []Node, argNames ArgNames, callArgInd int) bool {
	if len(node.Lts) > 0 {
		if callArgInd >= len(node.Lts) {
			return true
		}

		return chainResolvesToReturn(node.Lts, node.Lts[callArgInd])
	}

	if node.Declaration == NoIndex {
		return true
	}

	decl := &nodes[node.Declaration]

	argIdx := -1
	count := 0

	for _, c := range decl.Children {
		if nodes[c].Kind != KindArg {
			continue
		}

		if count == callArgInd {
			argIdx = c

			break
		}

		count++
	}

	if argIdx == -1 {
		return true
	}

	lt := ArgLifetime(argIdx, nodes, argNames)

	return lt.Kind == LifetimeReturn
}

// isKnownKind reports whether k is one of the kinds this analyzer's
// tables are written against. A Kind value outside this set means the
// language grew a node kind that HasLifetime and the contribution table
// above were never updated for.
func isKnownKind(k Kind) bool {
	return int(k) > int(KindInvalid) && int(k) < len(kindNames) && kindNames[k] != ""
}

// SolveAll computes the lifetime of every node index in targets
// concurrently, bounded by concurrency, in the shape of the teacher's own
// bounded fan-out (semaphore channel + errgroup.WithContext + a
// mutex-guarded result map): the solver is read-only after Build returns,
// so disjoint or overlapping subtree queries may run in parallel
// (spec.md §5).
func SolveAll(ctx context.Context, nodes []Node, targets []int, argNames ArgNames, concurrency int) (map[int]*Lifetime, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make(map[int]*Lifetime, len(targets))

	var mu sync.Mutex

	semaphore := make(chan struct{}, concurrency)

	g, gctx := errgroup.WithContext(ctx)

	for _, idx := range targets {
		idx := idx

		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			if idx < 0 || idx >= len(nodes) {
				return fmt.Errorf("lifetime: target index %d out of range", idx)
			}

			lt := Lifetime(&nodes[idx], nodes, argNames)

			mu.Lock()
			results[idx] = lt
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
