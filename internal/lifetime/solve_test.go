package lifetime

import (
	"context"
	"testing"
)

// TestLocalBinding covers spec.md §8 scenario 1: a trailing reference to a
// locally-bound identifier resolves to Local(declaration index).
func TestLocalBinding(t *testing.T) {
	nodes := []Node{
		{Kind: KindBlock, Parent: NoIndex, Declaration: NoIndex, Children: []int{1, 6}},
		{Kind: KindAssign, Parent: 0, Declaration: NoIndex, Children: []int{2, 4}},
		{Kind: KindLeft, Parent: 1, Declaration: NoIndex, Children: []int{3}},
		{Kind: KindItem, Parent: 2, Declaration: NoIndex, Names: []string{"x"}},
		{Kind: KindRight, Parent: 1, Declaration: NoIndex, Children: []int{5}},
		{Kind: KindItem, Parent: 4, Declaration: NoIndex, Names: []string{"1"}},
		{Kind: KindItem, Parent: 0, Declaration: 3, Names: []string{"x"}},
	}

	lt := Lifetime(&nodes[6], nodes, nil)
	if lt == nil || lt.Kind != LifetimeLocal || lt.Index != 3 {
		t.Errorf("expected Local(3), got %+v", lt)
	}
}

// TestArgumentPassThrough covers scenario 2: an unannotated argument
// reference resolves to Argument(declIndex, nil).
func TestArgumentPassThrough(t *testing.T) {
	nodes := []Node{
		{Kind: KindArg, Parent: NoIndex, Declaration: NoIndex, Names: []string{"a"}},
		{Kind: KindItem, Parent: NoIndex, Declaration: 0, Names: []string{"a"}},
	}

	lt := Lifetime(&nodes[1], nodes, nil)
	if lt == nil || lt.Kind != LifetimeArgument || lt.Index != 0 {
		t.Errorf("expected Argument(0, nil), got %+v", lt)
	}
}

// TestReturnAnnotatedArgument covers scenario 3.
func TestReturnAnnotatedArgument(t *testing.T) {
	nodes := []Node{
		{Kind: KindArg, Parent: NoIndex, Declaration: NoIndex, Names: []string{"a"}, LifetimeAnnotation: "return"},
		{Kind: KindItem, Parent: NoIndex, Declaration: 0, Names: []string{"a"}},
	}

	lt := Lifetime(&nodes[1], nodes, nil)
	if lt == nil || lt.Kind != LifetimeReturn || !pathEqual(lt.Path, []int{0}) {
		t.Errorf("expected Return([0]), got %+v", lt)
	}
}

// TestIntrinsicAllDefault covers scenario 4: every Lt chain resolves to
// Default, so the call returns a static value regardless of its children.
func TestIntrinsicAllDefault(t *testing.T) {
	nodes := []Node{
		{Kind: KindCall, Parent: NoIndex, Declaration: NoIndex, Lts: []Lt{DefaultLt(), DefaultLt()}, Children: []int{1, 2}},
		{Kind: KindCallArg, Parent: 0, Declaration: NoIndex, Children: []int{3}},
		{Kind: KindCallArg, Parent: 0, Declaration: NoIndex, Children: []int{4}},
		{Kind: KindItem, Parent: 1, Declaration: 5},
		{Kind: KindItem, Parent: 2, Declaration: 5},
		{Kind: KindItem, Parent: NoIndex, Declaration: NoIndex, Names: []string{"x"}},
	}

	lt := Lifetime(&nodes[0], nodes, nil)
	if lt != nil {
		t.Errorf("expected no lifetime for an all-Default intrinsic call, got %+v", lt)
	}
}

// TestIntrinsicReturnBoundArgument covers scenario 5: the first argument
// is return-bound and contributes; the second is not and is skipped.
func TestIntrinsicReturnBoundArgument(t *testing.T) {
	nodes := []Node{
		{Kind: KindCall, Parent: NoIndex, Declaration: NoIndex, Lts: []Lt{ReturnLt(), DefaultLt()}, Children: []int{1, 2}},
		{Kind: KindCallArg, Parent: 0, Declaration: NoIndex, Children: []int{3}},
		{Kind: KindCallArg, Parent: 0, Declaration: NoIndex, Children: []int{4}},
		{Kind: KindItem, Parent: 1, Declaration: 5}, // local
		{Kind: KindItem, Parent: 2, Declaration: NoIndex, Names: []string{"return"}}, // would-be Return, must be skipped
		{Kind: KindItem, Parent: NoIndex, Declaration: NoIndex, Names: []string{"y"}},
	}

	lt := Lifetime(&nodes[0], nodes, nil)
	if lt == nil || lt.Kind != LifetimeLocal || lt.Index != 5 {
		t.Errorf("expected Local(5) from the first call argument only, got %+v", lt)
	}
}

// TestConditionDoesNotTaint covers scenario 6: an If's Cond child never
// contributes to the If's own lifetime.
func TestConditionDoesNotTaint(t *testing.T) {
	nodes := []Node{
		{Kind: KindIf, Parent: NoIndex, Declaration: NoIndex, Children: []int{1, 3}},
		{Kind: KindCond, Parent: 0, Declaration: NoIndex, Children: []int{2}},
		{Kind: KindItem, Parent: 1, Declaration: 5},
		{Kind: KindTrueBlock, Parent: 0, Declaration: NoIndex, Children: []int{4}},
		{Kind: KindItem, Parent: 3, Declaration: NoIndex, Names: []string{"return"}},
		{Kind: KindItem, Parent: NoIndex, Declaration: NoIndex, Names: []string{"z"}},
	}

	lt := Lifetime(&nodes[0], nodes, nil)
	if lt == nil || lt.Kind != LifetimeReturn || len(lt.Path) != 0 {
		t.Errorf("expected Return([]), got %+v", lt)
	}
}

func TestHasLifetimeGating(t *testing.T) {
	n := Node{Kind: KindAssign}
	if HasLifetime(&n) {
		t.Error("expected Assign to never carry a lifetime")
	}

	if lt := Lifetime(&n, nil, nil); lt != nil {
		t.Errorf("expected no lifetime for a gated-out kind, got %+v", lt)
	}
}

func TestAddPassThroughSingleChild(t *testing.T) {
	nodes := []Node{
		{Kind: KindAdd, Parent: NoIndex, Declaration: NoIndex, Children: []int{1}},
		{Kind: KindItem, Parent: 0, Declaration: 2},
		{Kind: KindItem, Parent: NoIndex, Names: []string{"w"}},
	}

	n := nodes[0]
	if !HasLifetime(&n) {
		t.Error("expected a single-child Add to be lifetime-bearing")
	}

	lt := Lifetime(&nodes[0], nodes, nil)
	if lt == nil || lt.Kind != LifetimeLocal || lt.Index != 2 {
		t.Errorf("expected Add to pass through its single child's Local(2), got %+v", lt)
	}
}

func TestAddNoLifetimeWithMultipleChildren(t *testing.T) {
	n := Node{Kind: KindAdd, Children: []int{1, 2}}
	if HasLifetime(&n) {
		t.Error("expected a two-child Add to have no lifetime of its own")
	}
}

func TestInnerTypeUnwrapsOnlyWhenTry(t *testing.T) {
	opt := Type{Tag: TypeOption, Inner: &Type{Tag: TypeF64}}

	tried := Node{Try: true}
	if got := tried.InnerType(opt); got.Tag != TypeF64 {
		t.Errorf("expected InnerType to unwrap Option when Try, got %v", got)
	}

	untried := Node{Try: false}
	if got := untried.InnerType(opt); got.Tag != TypeOption {
		t.Errorf("expected InnerType to pass through unchanged when !Try, got %v", got)
	}
}

// TestArgLifetimeChainedToNamedSibling covers Lt::Arg-style chaining via
// a user-facing name annotation (spec.md §4.2.3's "naming another
// argument by user-facing name" case).
func TestArgLifetimeChainedToNamedSibling(t *testing.T) {
	nodes := []Node{
		{Kind: KindClosure, Children: []int{1, 2}}, // the declaring function
		{Kind: KindArg, Parent: 0, Names: []string{"a"}},
		{Kind: KindArg, Parent: 0, Names: []string{"b"}, LifetimeAnnotation: "a"},
	}

	lt := ArgLifetime(2, nodes, nil)
	if lt.Kind != LifetimeArgument || lt.Index != 1 || !pathEqual(lt.Path, []int{2}) {
		t.Errorf("expected Argument(1, [2]), got %+v", lt)
	}
}

func TestSolveAllConcurrent(t *testing.T) {
	nodes := []Node{
		{Kind: KindBlock, Children: []int{1, 2}},
		{Kind: KindItem, Parent: 0, Declaration: 3},
		{Kind: KindItem, Parent: 0, Declaration: 3},
		{Kind: KindItem, Parent: NoIndex, Names: []string{"v"}},
	}

	results, err := SolveAll(context.Background(), nodes, []int{1, 2}, nil, 4)
	if err != nil {
		t.Fatalf("SolveAll failed: %v", err)
	}

	for _, idx := range []int{1, 2} {
		lt := results[idx]
		if lt == nil || lt.Kind != LifetimeLocal || lt.Index != 3 {
			t.Errorf("node %d: expected Local(3), got %+v", idx, lt)
		}
	}
}
