package ast

// RenameMap maps a module-local VarRef to its final rendered identifier
// text, as produced by the name table (see package nametable). It is
// read-only from this package's point of view: the mutation visitor below
// only consults it.
type RenameMap map[VarRef]string

// ApplyRenames mutates p in place, baking the final identifier text of
// every reference into the AST so that printing needs no further lookup.
// It is run exactly once per module, after action tags have been applied
// and before codegen.
func ApplyRenames(p *Program, renames RenameMap) {
	for _, stmt := range p.Stmts {
		if stmt.Removed {
			continue
		}
		if stmt.Decl != nil {
			renameDecl(stmt.Decl, renames)
		}
		if stmt.Expr != nil {
			renameExpr(stmt.Expr, renames)
		}
	}
}

func renameDecl(d *Decl, renames RenameMap) {
	if d.Ref != NoRef {
		if name, ok := renames[d.Ref]; ok {
			d.Name = name
		}
	}
	if d.Init != nil {
		renameExpr(d.Init, renames)
	}
}

func renameExpr(e *Expr, renames RenameMap) {
	Walk(e, func(n *Expr) {
		if n.Kind == ExprIdent && n.Ref != NoRef {
			if name, ok := renames[n.Ref]; ok {
				n.Name = name
			}
		}
	})
}
