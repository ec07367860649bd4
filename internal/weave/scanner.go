package weave

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"git.home.luguber.info/inful/metricweave/internal/annotation"
	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
	"git.home.luguber.info/inful/metricweave/internal/naming"
)

// target is one annotated function scheduled for weaving.
type target struct {
	decl        *ast.FuncDecl
	cfg         annotation.Config
	names       naming.Names
	capability  capabilityKind
	suspending  bool
	elem        types.Type // channel element type of a suspending target
	resultCount int
	funcName    string
}

// sourceFile groups the weave targets of one file together with everything
// needed to rewrite and re-render it.
type sourceFile struct {
	pkg     *packages.Package
	fset    *token.FileSet
	file    *ast.File
	path    string
	targets []*target
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// scan loads the requested packages and collects every annotated,
// not-yet-woven function. Annotation failures abort the scan with a
// diagnostic pointing at the offending directive.
func scan(ctx context.Context, dir string, patterns, exclude []string, skipDir string) ([]*sourceFile, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, werrors.ParseFailed(strings.Join(patterns, " "), err)
	}

	var loadErr error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			if loadErr == nil {
				loadErr = e
			}
		}
	})
	if loadErr != nil {
		return nil, werrors.ParseFailed(strings.Join(patterns, " "), loadErr)
	}

	var files []*sourceFile
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			filename := pkg.Fset.Position(file.Pos()).Filename
			if skipFile(filename, exclude, skipDir) {
				continue
			}

			sf := &sourceFile{pkg: pkg, fset: pkg.Fset, file: file, path: filename}
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok {
					continue
				}
				tgt, err := inspectFunc(pkg, fn)
				if err != nil {
					return nil, err
				}
				if tgt != nil {
					sf.targets = append(sf.targets, tgt)
				}
			}
			files = append(files, sf)
		}
	}
	return files, nil
}

// inspectFunc returns the weave target for fn, nil if fn carries no
// directive, or an error for an invalid one.
func inspectFunc(pkg *packages.Package, fn *ast.FuncDecl) (*target, error) {
	args, found, err := directiveArgs(pkg, fn)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if fn.Body == nil {
		return nil, werrors.New(werrors.CategoryAnnotation, werrors.SeverityFatal,
			"cannot instrument a function without a body").
			WithPosition(pkg.Fset.Position(fn.Pos()).String())
	}
	if isWoven(fn) {
		return nil, nil
	}

	cfg, err := annotation.Parse(args)
	if err != nil {
		return nil, werrors.AnnotationError(err, pkg.Fset.Position(fn.Pos()).String())
	}

	sig, err := funcSignature(pkg, fn)
	if err != nil {
		return nil, err
	}

	tgt := &target{
		decl:        fn,
		cfg:         cfg,
		funcName:    fn.Name.Name,
		resultCount: sig.Results().Len(),
	}
	tgt.names = naming.Derive(cfg.Name,
		naming.DeclPath(pkg.PkgPath, receiverName(fn), fn.Name.Name))

	if elem, ok := suspendElem(sig.Results()); ok {
		tgt.suspending = true
		tgt.elem = elem
		tgt.capability = resolveElemCapability(elem)
	} else {
		tgt.capability = resolveCapability(sig.Results())
	}
	return tgt, nil
}

// directiveArgs extracts the instrument directive's argument text from the
// function's doc comment. A second directive on the same function is an
// error: one function, one instrumentation.
func directiveArgs(pkg *packages.Package, fn *ast.FuncDecl) (args string, found bool, err error) {
	if fn.Doc == nil {
		return "", false, nil
	}
	for _, c := range fn.Doc.List {
		a, ok := annotation.FromComment(c.Text)
		if !ok {
			continue
		}
		if found {
			return "", false, werrors.New(werrors.CategoryAnnotation, werrors.SeverityFatal,
				"multiple instrument directives on one function").
				WithPosition(pkg.Fset.Position(c.Pos()).String())
		}
		args, found = a, true
	}
	return args, found, nil
}

func funcSignature(pkg *packages.Package, fn *ast.FuncDecl) (*types.Signature, error) {
	obj := pkg.TypesInfo.Defs[fn.Name]
	tfn, ok := obj.(*types.Func)
	if !ok {
		return nil, werrors.New(werrors.CategoryInternal, werrors.SeverityFatal,
			"missing type information for function").
			WithContext("function", fn.Name.Name).
			WithPosition(pkg.Fset.Position(fn.Pos()).String())
	}
	return tfn.Type().(*types.Signature), nil
}

// receiverName returns the receiver's type name for methods, "" for plain
// functions. Pointer and generic receivers reduce to the base type name.
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	t := fn.Recv.List[0].Type
	for {
		switch x := t.(type) {
		case *ast.StarExpr:
			t = x.X
		case *ast.IndexExpr:
			t = x.X
		case *ast.IndexListExpr:
			t = x.X
		case *ast.Ident:
			return x.Name
		default:
			return ""
		}
	}
}

func skipFile(filename string, exclude []string, skipDir string) bool {
	if skipDir != "" {
		if rel, err := filepath.Rel(skipDir, filename); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	base := filepath.Base(filename)
	for _, pattern := range exclude {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
