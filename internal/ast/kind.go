package ast

// Kind identifies a node shape. The slot comments list which Node fields
// each kind uses; unused fields stay zero.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Statements
	StmtVar           // List: DeclVar; Mods: Const | Let
	DeclVar           // Name: binding; Init
	StmtFunc          // Name, Params, Body (absent for overloads)
	StmtClass         // Name, X: extends, List: members, Decorators
	StmtEnum          // Name, List: EnumMember; Mods: Const
	EnumMember        // Name, Init
	StmtNamespace     // Name: outermost ident, Text: dotted name, Body: StmtBlock
	StmtImportAlias   // Name, X: entity name or ExternalRef
	StmtInterface     // Name
	StmtTypeAlias     // Name
	StmtExpr          // X
	StmtBlock         // List
	StmtIf            // X: test, Body, Else
	StmtDo            // X: test, Body
	StmtWhile         // X: test, Body
	StmtFor           // Init: StmtVar or expression, X: test, Y: update, Body
	StmtForIn         // Init: StmtVar or expression, X: iterated, Body; Text: "in" | "of"
	StmtReturn        // X
	StmtWith          // X, Body
	StmtSwitch        // X, List: CaseClause | DefaultClause
	CaseClause        // X: test, List
	DefaultClause     // List
	StmtLabeled       // Text: label, Body
	StmtThrow         // X
	StmtTry           // Body, X: CatchClause, Finally
	CatchClause       // Name: binding, Body
	StmtExportList    // List: ExprIdent
	StmtOther         // printed verbatim, never traversed
	MemberCtor        // Params, Body
	MemberMethod      // Name, Params, Body; Mods: Static | Getter | Setter
	MemberProp        // Name, Init, Decorators; Mods: Static
	MemberStaticBlock // Body
	MemberOther       // index signatures and similar
	Param             // Name: binding, Init: default, Decorators; Mods: Rest

	// Expressions
	ExprIdent          // Text
	ExprLit            // Text: literal source (also this, super, regex)
	ExprMember         // X: object, Name: ExprIdent
	ExprIndex          // X: object, Y: index
	ExprArray          // List
	ExprObject         // List: PropAssign | PropShorthand | ExprSpread | MemberMethod
	PropAssign         // Name: key, Init: value
	PropShorthand      // Name: ExprIdent, Init: default in patterns
	ExprFunc           // Name, Params, Body
	ExprArrow          // Params, Body: StmtBlock or expression
	ExprClass          // as StmtClass
	ExprCall           // X: callee, List: arguments
	ExprNew            // X: callee, List: arguments
	ExprTemplate       // List: substitutions
	ExprTaggedTemplate // X: tag, Y: ExprTemplate
	ExprUnary          // Text: operator, X
	ExprPostfix        // Text: operator, X
	ExprBinary         // Op, Text: operator, X, Y
	ExprCond           // X: test, Y: consequent, Z: alternate
	ExprParen          // X
	ExprAwait          // X
	ExprYield          // X
	ExprSpread         // X
	ExprAssert         // X (as, satisfies, non-null, <T>)
	ExprDelete         // X
	ExprTypeOf         // X
	ExprVoid           // X
	ExprMeta           // new.target, import.meta
	ExprOmitted        // array hole
	ExternalRef        // Text: module specifier of require(...)

	// Binding patterns
	PatObject   // List: BindingElem
	PatArray    // List: BindingElem | ExprOmitted
	BindingElem // X: property key, Name: target, Init: default; Mods: Rest
)

var kindNames = [...]string{
	KindInvalid:        "Invalid",
	StmtVar:            "StmtVar",
	DeclVar:            "DeclVar",
	StmtFunc:           "StmtFunc",
	StmtClass:          "StmtClass",
	StmtEnum:           "StmtEnum",
	EnumMember:         "EnumMember",
	StmtNamespace:      "StmtNamespace",
	StmtImportAlias:    "StmtImportAlias",
	StmtInterface:      "StmtInterface",
	StmtTypeAlias:      "StmtTypeAlias",
	StmtExpr:           "StmtExpr",
	StmtBlock:          "StmtBlock",
	StmtIf:             "StmtIf",
	StmtDo:             "StmtDo",
	StmtWhile:          "StmtWhile",
	StmtFor:            "StmtFor",
	StmtForIn:          "StmtForIn",
	StmtReturn:         "StmtReturn",
	StmtWith:           "StmtWith",
	StmtSwitch:         "StmtSwitch",
	CaseClause:         "CaseClause",
	DefaultClause:      "DefaultClause",
	StmtLabeled:        "StmtLabeled",
	StmtThrow:          "StmtThrow",
	StmtTry:            "StmtTry",
	CatchClause:        "CatchClause",
	StmtExportList:     "StmtExportList",
	StmtOther:          "StmtOther",
	MemberCtor:         "MemberCtor",
	MemberMethod:       "MemberMethod",
	MemberProp:         "MemberProp",
	MemberStaticBlock:  "MemberStaticBlock",
	MemberOther:        "MemberOther",
	Param:              "Param",
	ExprIdent:          "ExprIdent",
	ExprLit:            "ExprLit",
	ExprMember:         "ExprMember",
	ExprIndex:          "ExprIndex",
	ExprArray:          "ExprArray",
	ExprObject:         "ExprObject",
	PropAssign:         "PropAssign",
	PropShorthand:      "PropShorthand",
	ExprFunc:           "ExprFunc",
	ExprArrow:          "ExprArrow",
	ExprClass:          "ExprClass",
	ExprCall:           "ExprCall",
	ExprNew:            "ExprNew",
	ExprTemplate:       "ExprTemplate",
	ExprTaggedTemplate: "ExprTaggedTemplate",
	ExprUnary:          "ExprUnary",
	ExprPostfix:        "ExprPostfix",
	ExprBinary:         "ExprBinary",
	ExprCond:           "ExprCond",
	ExprParen:          "ExprParen",
	ExprAwait:          "ExprAwait",
	ExprYield:          "ExprYield",
	ExprSpread:         "ExprSpread",
	ExprAssert:         "ExprAssert",
	ExprDelete:         "ExprDelete",
	ExprTypeOf:         "ExprTypeOf",
	ExprVoid:           "ExprVoid",
	ExprMeta:           "ExprMeta",
	ExprOmitted:        "ExprOmitted",
	ExternalRef:        "ExternalRef",
	PatObject:          "PatObject",
	PatArray:           "PatArray",
	BindingElem:        "BindingElem",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Invalid"
}

// IsStatement reports whether k may appear in a statement list.
func (k Kind) IsStatement() bool {
	return k >= StmtVar && k <= StmtOther && k != DeclVar && k != EnumMember &&
		k != CaseClause && k != DefaultClause && k != CatchClause
}

// IsFunctionLike reports kinds that own a deferred body.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case StmtFunc, ExprFunc, ExprArrow, MemberCtor, MemberMethod:
		return true
	}
	return false
}

// Op classifies binary operators by how they propagate evaluation.
type Op uint8

const (
	OpOther Op = iota
	OpAnd
	OpOr
	OpNullish
	OpAssign
	OpComma
)

// BinaryOp maps an operator token to its Op class.
func BinaryOp(tok string) Op {
	switch tok {
	case "&&":
		return OpAnd
	case "||":
		return OpOr
	case "??":
		return OpNullish
	case "=":
		return OpAssign
	case ",":
		return OpComma
	}
	return OpOther
}
