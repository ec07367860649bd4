package weave

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"

	"git.home.luguber.info/inful/metricweave/internal/naming"
)

// Call-local identifiers introduced by the weave. The __mw_ prefix keeps them
// out of the way of anything the captured scope declares.
const (
	startVar  = "__mw_start"
	retPrefix = "__mw_ret"
	durVar    = "__mw_dur"
	labelsVar = "__mw_labels"
	innerVar  = "__mw_inner"
	outVar    = "__mw_out"
	valVar    = "__mw_v"
	okVar     = "__mw_ok"
)

// isWoven reports whether a function already carries the woven prologue.
// Weaving is idempotent: woven functions are skipped on later runs.
func isWoven(decl *ast.FuncDecl) bool {
	if decl.Body == nil || len(decl.Body.List) == 0 {
		return false
	}
	assign, ok := decl.Body.List[0].(*ast.AssignStmt)
	if !ok || assign.Tok != token.DEFINE || len(assign.Lhs) != 1 {
		return false
	}
	id, ok := assign.Lhs[0].(*ast.Ident)
	return ok && id.Name == startVar
}

// rewriteFunc replaces the body of decl with the instrumented version. The
// signature is left untouched, so call sites are unaffected. timeName and
// instrName are the local names of the time and instrument imports in the
// enclosing file; elemType is the rendered channel element type for
// suspending targets, nil otherwise.
func (t *target) rewriteFunc(timeName, instrName string, elemType ast.Expr) {
	// Keep the original brace positions so the printer's comment
	// interleaving for surrounding declarations is undisturbed.
	lbrace, rbrace := t.decl.Body.Lbrace, t.decl.Body.Rbrace

	var body *ast.BlockStmt
	if t.suspending {
		body = suspendingBody(t.decl, t.names, t.capability, timeName, instrName, elemType)
	} else {
		body = directBody(t.decl, t.names, t.resultCount, t.capability, timeName, instrName)
	}
	body.Lbrace, body.Rbrace = lbrace, rbrace
	t.decl.Body = body
}

// directBody builds the wrapper for a directly-evaluated function:
//
//	__mw_start := time.Now()
//	__mw_ret0, ... := func() (...) { <original body> }()
//	__mw_dur := time.Since(__mw_start).Seconds()
//	__mw_labels := <capability-specific extraction>
//	instrument.RecordHistogram(<histogram>, __mw_dur, __mw_labels)
//	instrument.IncrementCounter(<counter>, __mw_labels)
//	return __mw_ret0, ...
func directBody(decl *ast.FuncDecl, names naming.Names, nresults int, capability capabilityKind, timeName, instrName string) *ast.BlockStmt {
	stmts := []ast.Stmt{startStmt(timeName)}

	evaluate := evalClosure(decl)
	if nresults == 0 {
		stmts = append(stmts, &ast.ExprStmt{X: evaluate})
	} else {
		stmts = append(stmts, &ast.AssignStmt{
			Lhs: retIdents(nresults),
			Tok: token.DEFINE,
			Rhs: []ast.Expr{evaluate},
		})
	}

	stmts = append(stmts, durStmt(timeName))
	stmts = append(stmts, labelsStmt(capability, labelSource(capability, nresults), instrName))
	stmts = append(stmts, emitStmts(names, instrName)...)

	if nresults > 0 {
		stmts = append(stmts, &ast.ReturnStmt{Results: retIdents(nresults)})
	}
	return &ast.BlockStmt{List: stmts}
}

// suspendingBody builds the wrapper for a function whose result is a
// receive-only channel. The wrapper forwards through a one-buffered channel
// so the timing, labeling, and emission complete only once the underlying
// value is available; no suspension points beyond the original body's are
// introduced, and the forwarding channel always closes so ranging callers
// terminate as they would against the unwoven channel.
//
//	__mw_start := time.Now()
//	__mw_inner := func() <-chan T { <original body> }()
//	__mw_out := make(chan T, 1)
//	go func() {
//		defer close(__mw_out)
//		__mw_v, __mw_ok := <-__mw_inner
//		if !__mw_ok {
//			return
//		}
//		... timing, labels, emission ...
//		__mw_out <- __mw_v
//	}()
//	return __mw_out
func suspendingBody(decl *ast.FuncDecl, names naming.Names, capability capabilityKind, timeName, instrName string, elemType ast.Expr) *ast.BlockStmt {
	goStmts := []ast.Stmt{
		&ast.DeferStmt{Call: callExpr(ast.NewIdent("close"), ast.NewIdent(outVar))},
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(valVar), ast.NewIdent(okVar)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.UnaryExpr{Op: token.ARROW, X: ast.NewIdent(innerVar)}},
		},
		&ast.IfStmt{
			Cond: &ast.UnaryExpr{Op: token.NOT, X: ast.NewIdent(okVar)},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				&ast.ReturnStmt{},
			}},
		},
		durStmt(timeName),
		labelsStmt(capability, ast.NewIdent(valVar), instrName),
	}
	goStmts = append(goStmts, emitStmts(names, instrName)...)
	goStmts = append(goStmts, &ast.SendStmt{
		Chan:  ast.NewIdent(outVar),
		Value: ast.NewIdent(valVar),
	})

	stmts := []ast.Stmt{
		startStmt(timeName),
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(innerVar)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{evalClosure(decl)},
		},
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(outVar)},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{callExpr(ast.NewIdent("make"),
				&ast.ChanType{Dir: ast.SEND | ast.RECV, Value: elemType},
				&ast.BasicLit{Kind: token.INT, Value: "1"},
			)},
		},
		&ast.GoStmt{Call: &ast.CallExpr{
			Fun: &ast.FuncLit{
				Type: &ast.FuncType{Params: &ast.FieldList{}},
				Body: &ast.BlockStmt{List: goStmts},
			},
		}},
		&ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent(outVar)}},
	}
	return &ast.BlockStmt{List: stmts}
}

// evalClosure wraps the original body in an immediately-invoked function
// literal with the original result list. The literal captures the enclosing
// scope, so parameters, receiver, and named results behave exactly as before,
// including deferred writes to named results.
func evalClosure(decl *ast.FuncDecl) *ast.CallExpr {
	return &ast.CallExpr{
		Fun: &ast.FuncLit{
			Type: &ast.FuncType{
				Params:  &ast.FieldList{},
				Results: decl.Type.Results,
			},
			Body: decl.Body,
		},
	}
}

func startStmt(timeName string) ast.Stmt {
	return &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(startVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{callExpr(selExpr(timeName, "Now"))},
	}
}

func durStmt(timeName string) ast.Stmt {
	since := callExpr(selExpr(timeName, "Since"), ast.NewIdent(startVar))
	return &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(durVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{&ast.CallExpr{
			Fun: &ast.SelectorExpr{X: since, Sel: ast.NewIdent("Seconds")},
		}},
	}
}

// labelsStmt builds the label extraction statement for the chosen capability.
// source is the expression carrying the produced value the capability reads.
func labelsStmt(capability capabilityKind, source ast.Expr, instrName string) ast.Stmt {
	var rhs ast.Expr
	switch capability {
	case capOutcome:
		rhs = callExpr(selExpr(instrName, "OutcomeLabels"), source)
	case capLabeler:
		rhs = &ast.CallExpr{
			Fun: &ast.SelectorExpr{X: source, Sel: ast.NewIdent("MetricLabels")},
		}
	default:
		rhs = callExpr(selExpr(instrName, "LabelSet"), ast.NewIdent("nil"))
	}
	return &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(labelsVar)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{rhs},
	}
}

// labelSource picks the result variable the capability inspects.
func labelSource(capability capabilityKind, nresults int) ast.Expr {
	switch capability {
	case capOutcome:
		return ast.NewIdent(retIdent(nresults - 1))
	case capLabeler:
		return ast.NewIdent(retIdent(0))
	default:
		return nil
	}
}

// emitStmts builds the two best-effort emission calls: histogram first, then
// counter, both with weave-time constant names.
func emitStmts(names naming.Names, instrName string) []ast.Stmt {
	return []ast.Stmt{
		&ast.ExprStmt{X: callExpr(selExpr(instrName, "RecordHistogram"),
			strLit(names.Histogram), ast.NewIdent(durVar), ast.NewIdent(labelsVar))},
		&ast.ExprStmt{X: callExpr(selExpr(instrName, "IncrementCounter"),
			strLit(names.Counter), ast.NewIdent(labelsVar))},
	}
}

func retIdent(i int) string {
	return fmt.Sprintf("%s%d", retPrefix, i)
}

func retIdents(n int) []ast.Expr {
	idents := make([]ast.Expr, n)
	for i := range idents {
		idents[i] = ast.NewIdent(retIdent(i))
	}
	return idents
}

func selExpr(pkg, name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)}
}

func callExpr(fun ast.Expr, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{Fun: fun, Args: args}
}

func strLit(s string) ast.Expr {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}
