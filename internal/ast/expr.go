package ast

// ExprKind tags the shape of an Expr. The grammar here is deliberately
// small: enough to represent an identifier reference, a member/call chain,
// a handful of literals, and an object literal (needed to synthesize
// namespace objects). Anything richer than that is carried as Raw, opaque
// parser-supplied text that this linker reprints unchanged.
type ExprKind uint8

const (
	ExprRaw ExprKind = iota
	ExprIdent
	ExprMember
	ExprCall
	ExprObject
)

// Expr is a tagged union over the expression shapes above.
type Expr struct {
	Kind ExprKind

	// ExprRaw: Raw is reprinted verbatim. Used for literals and any
	// expression form this linker has no reason to look inside.
	Raw string

	// ExprIdent: Ref resolves to a binding (NoRef for an unbound global);
	// Name is the identifier text, authoritative once Ref == NoRef and
	// otherwise re-derived from the name table at rename time.
	Ref  VarRef
	Name string

	// ExprMember: Object.Property, e.g. `ns.x`.
	Object   *Expr
	Property string

	// ExprCall: Callee(Args...).
	Callee *Expr
	Args   []*Expr

	// ExprObject: an object literal; used for synthesized namespace objects
	// and otherwise opaque object literals from source.
	Props []ObjectProp
}

// ObjectProp is one `key: value` entry of an ExprObject.
type ObjectProp struct {
	Key   string
	Value *Expr
}

// Ident builds an identifier expression bound to ref.
func Ident(ref VarRef, name string) *Expr {
	return &Expr{Kind: ExprIdent, Ref: ref, Name: name}
}

// RawExpr builds an opaque passthrough expression.
func RawExpr(text string) *Expr {
	return &Expr{Kind: ExprRaw, Raw: text}
}

// Member builds `object.property`.
func Member(object *Expr, property string) *Expr {
	return &Expr{Kind: ExprMember, Object: object, Property: property}
}

// Call builds `callee(args...)`.
func Call(callee *Expr, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Callee: callee, Args: args}
}

// Object builds an object literal in the given key order. Key order
// follows discovery order with last-write-wins on duplicates; callers are
// responsible for de-duplicating before calling this constructor since
// Expr itself does not enforce uniqueness.
func Object(props []ObjectProp) *Expr {
	return &Expr{Kind: ExprObject, Props: props}
}

// Walk visits e and every expression reachable from it, calling visit on
// each node including e itself. It does not recurse into Raw text.
func Walk(e *Expr, visit func(*Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch e.Kind {
	case ExprMember:
		Walk(e.Object, visit)
	case ExprCall:
		Walk(e.Callee, visit)
		for _, a := range e.Args {
			Walk(a, visit)
		}
	case ExprObject:
		for _, p := range e.Props {
			Walk(p.Value, visit)
		}
	}
}
