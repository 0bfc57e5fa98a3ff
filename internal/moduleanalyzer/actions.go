package moduleanalyzer

import "github.com/scopelink/linker/internal/ast"

// ActionKind is the declarative rewrite instruction variant attached to a
// statement during stripping.
type ActionKind uint8

const (
	StripExport ActionKind = iota
	StripDefaultExport
	StripImport
	DeclDefaultExpr
	RemoveImport
	RemoveExport
)

// Action attaches one rewrite instruction to a statement index within a
// specific module. BundleAnalyzer's strip_module pass produces these;
// Manager.PatchModuleAST consumes them.
type Action struct {
	StmtIndex int
	Kind      ActionKind
	// Var is the binding the action concerns, used only by
	// DeclDefaultExpr to know which name-table index the synthesized
	// `var V = EXPR` declares.
	Var ast.VarRef
}

// AddAction queues action for this module's next Manager.PatchModuleAST call.
func (a *ModuleAnalyzer) AddAction(action Action) {
	a.actions = append(a.actions, action)
}
