package lifetime

import "testing"

func TestParseKindRoundTrip(t *testing.T) {
	cases := []Kind{
		KindCall, KindItem, KindArg, KindCurrent, KindIf, KindBlock, KindAssign,
		KindAdd, KindMul, KindCompare, KindPow, KindSum, KindProd, KindSumVec4,
		KindProdVec4, KindMin, KindMax, KindAny, KindAll, KindVec4, KindVec4UnLoop,
		KindSwizzle, KindFor, KindForN, KindLink, KindLinkFor, KindLinkItem,
		KindClosure, KindCallClosure, KindGrab, KindTryExpr, KindNorm, KindReturn,
		KindReturnVoid, KindCond, KindElseIfCond, KindTrueBlock, KindElseIfBlock,
		KindElseBlock, KindFill, KindN, KindArray, KindArrayItem, KindArrayFill,
		KindObject, KindKeyValue, KindVal, KindLeft, KindRight, KindExpr,
		KindCallArg, KindStart, KindEnd, KindBase, KindExp, KindSift, KindUnOp,
		KindLoop, KindGo, KindBreak, KindContinue, KindType, KindRetType,
	}

	for _, k := range cases {
		name := k.String()

		got, ok := ParseKind(name)
		if !ok {
			t.Errorf("ParseKind(%q) reported unknown, want %v", name, k)

			continue
		}

		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", name, got, k)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	if _, ok := ParseKind("NotAKind"); ok {
		t.Error("expected ParseKind to report an unknown kind name")
	}
}

func TestIsTypeSubtree(t *testing.T) {
	if !IsTypeSubtree(KindType) || !IsTypeSubtree(KindRetType) {
		t.Error("expected Type and RetType to be type subtree markers")
	}

	if IsTypeSubtree(KindCall) {
		t.Error("expected Call not to be a type subtree marker")
	}
}
