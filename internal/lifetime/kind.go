package lifetime

// Kind is the closed set of syntactic node kinds the lifetime analyzer
// understands. It mirrors the parser's own node-kind vocabulary. A kind
// added here must also be considered in HasLifetime and the
// child-contribution switch in solve.go: the panic at the top of
// minLifetimeOverChildren's loop fires only for a Kind value with no entry
// in kindNames, and any named child kind not listed in that switch
// contributes to its parent's lifetime.
type Kind int

const (
	KindInvalid Kind = iota

	KindCall
	KindItem
	KindArg
	KindCurrent
	KindIf
	KindBlock
	KindAssign
	KindAdd
	KindMul
	KindCompare
	KindPow
	KindSum
	KindProd
	KindSumVec4
	KindProdVec4
	KindMin
	KindMax
	KindAny
	KindAll
	KindVec4
	KindVec4UnLoop
	KindSwizzle
	KindFor
	KindForN
	KindLink
	KindLinkFor
	KindLinkItem
	KindClosure
	KindCallClosure
	KindGrab
	KindTryExpr
	KindNorm
	KindReturn
	KindReturnVoid
	KindCond
	KindElseIfCond
	KindTrueBlock
	KindElseIfBlock
	KindElseBlock
	KindFill
	KindN
	KindArray
	KindArrayItem
	KindArrayFill
	KindObject
	KindKeyValue
	KindVal
	KindLeft
	KindRight
	KindExpr
	KindCallArg
	KindStart
	KindEnd
	KindBase
	KindExp
	KindSift
	KindUnOp
	KindLoop
	KindGo
	KindBreak
	KindContinue
	KindType
	KindRetType
)

var kindNames = [...]string{
	KindInvalid:     "Invalid",
	KindCall:        "Call",
	KindItem:        "Item",
	KindArg:         "Arg",
	KindCurrent:     "Current",
	KindIf:          "If",
	KindBlock:       "Block",
	KindAssign:      "Assign",
	KindAdd:         "Add",
	KindMul:         "Mul",
	KindCompare:     "Compare",
	KindPow:         "Pow",
	KindSum:         "Sum",
	KindProd:        "Prod",
	KindSumVec4:     "SumVec4",
	KindProdVec4:    "ProdVec4",
	KindMin:         "Min",
	KindMax:         "Max",
	KindAny:         "Any",
	KindAll:         "All",
	KindVec4:        "Vec4",
	KindVec4UnLoop:  "Vec4UnLoop",
	KindSwizzle:     "Swizzle",
	KindFor:         "For",
	KindForN:        "ForN",
	KindLink:        "Link",
	KindLinkFor:     "LinkFor",
	KindLinkItem:    "LinkItem",
	KindClosure:     "Closure",
	KindCallClosure: "CallClosure",
	KindGrab:        "Grab",
	KindTryExpr:     "TryExpr",
	KindNorm:        "Norm",
	KindReturn:      "Return",
	KindReturnVoid:  "ReturnVoid",
	KindCond:        "Cond",
	KindElseIfCond:  "ElseIfCond",
	KindTrueBlock:   "TrueBlock",
	KindElseIfBlock: "ElseIfBlock",
	KindElseBlock:   "ElseBlock",
	KindFill:        "Fill",
	KindN:           "N",
	KindArray:       "Array",
	KindArrayItem:   "ArrayItem",
	KindArrayFill:   "ArrayFill",
	KindObject:      "Object",
	KindKeyValue:    "KeyValue",
	KindVal:         "Val",
	KindLeft:        "Left",
	KindRight:       "Right",
	KindExpr:        "Expr",
	KindCallArg:     "CallArg",
	KindStart:       "Start",
	KindEnd:         "End",
	KindBase:        "Base",
	KindExp:         "Exp",
	KindSift:        "Sift",
	KindUnOp:        "UnOp",
	KindLoop:        "Loop",
	KindGo:          "Go",
	KindBreak:       "Break",
	KindContinue:    "Continue",
	KindType:        "Type",
	KindRetType:     "RetType",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}

	return "Unknown"
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if name != "" {
			m[name] = Kind(k)
		}
	}

	return m
}()

// ParseKind resolves a parser-emitted kind name to a Kind. It reports false
// for any name the analyzer does not recognize, matching spec.md's
// "Unknown kind" build error.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[name]

	return k, ok
}

// IsTypeSubtree reports whether a StartNode kind name introduces a type
// subtree that the builder must delegate to the external type parser
// rather than push as its own node (spec.md §4.1 step 1b).
func IsTypeSubtree(k Kind) bool {
	return k == KindType || k == KindRetType
}
