package weave

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	werrors "git.home.luguber.info/inful/metricweave/internal/errors"
)

// generatedHeader marks mirror-mode output per the convention recognized by
// go tooling (https://go.dev/s/generatedcode).
const generatedHeader = "// Code generated by metricweave. DO NOT EDIT.\n\n"

// importName returns the local name to reference importPath by in this file,
// adding the import when absent. An existing aliased import is reused under
// its alias. When the default name is already bound by a declaration in the
// package (e.g. a parameter named "instrument"), the import is added under an
// mw-prefixed alias so woven calls cannot be captured by the shadowing
// identifier.
func (sf *sourceFile) importName(importPath, defaultName string) string {
	for _, imp := range sf.file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != importPath {
			continue
		}
		if imp.Name != nil && imp.Name.Name != "_" && imp.Name.Name != "." {
			return imp.Name.Name
		}
		if imp.Name == nil {
			return defaultName
		}
	}

	name := defaultName
	for sf.declared(name) {
		name = "mw" + name
	}
	if name == defaultName {
		astutil.AddImport(sf.fset, sf.file, importPath)
	} else {
		astutil.AddNamedImport(sf.fset, sf.file, name, importPath)
	}
	return name
}

// declared reports whether name is bound by any declaration in the package.
func (sf *sourceFile) declared(name string) bool {
	if sf.pkg == nil || sf.pkg.TypesInfo == nil {
		return false
	}
	for ident := range sf.pkg.TypesInfo.Defs {
		if ident.Name == name {
			return true
		}
	}
	return false
}

// elemTypeExpr resolves the channel element type of a suspending target to an
// expression valid in this file. A literal channel result keeps its written
// element type; a defined channel type (type Future <-chan T) falls back to
// rendering the type-checked element, adding imports for foreign packages.
func (sf *sourceFile) elemTypeExpr(tgt *target) (ast.Expr, error) {
	if ch, ok := tgt.decl.Type.Results.List[0].Type.(*ast.ChanType); ok {
		return ch.Value, nil
	}
	qual := func(p *types.Package) string {
		if sf.pkg != nil && p == sf.pkg.Types {
			return ""
		}
		return sf.importName(p.Path(), p.Name())
	}
	expr, err := parser.ParseExpr(types.TypeString(tgt.elem, qual))
	if err != nil {
		return nil, werrors.GenerateFailed(sf.path, err)
	}
	return expr, nil
}

// render pretty-prints the rewritten file.
func (sf *sourceFile) render() ([]byte, error) {
	var buf bytes.Buffer
	cfg := printer.Config{Mode: printer.UseSpaces | printer.TabIndent, Tabwidth: 8}
	if err := cfg.Fprint(&buf, sf.fset, sf.file); err != nil {
		return nil, werrors.GenerateFailed(sf.path, err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, werrors.GenerateFailed(sf.path, err)
	}
	return out, nil
}

// writeInPlace rewrites the original source file.
func (sf *sourceFile) writeInPlace(content []byte) error {
	if err := os.WriteFile(sf.path, content, 0o644); err != nil {
		return werrors.FileSystemError("rewrite source", err)
	}
	return nil
}

// mirrorPath resolves where the mirror copy of this file lives under
// outputDir: the file's path relative to root, or its base name for files
// outside root.
func (sf *sourceFile) mirrorPath(root, outputDir string) string {
	rel, err := filepath.Rel(root, sf.path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(sf.path)
	}
	return filepath.Join(outputDir, rel)
}

// writeMirror writes content to the file's mirror path under outputDir.
func (sf *sourceFile) writeMirror(root, outputDir string, content []byte, woven bool) error {
	dest := sf.mirrorPath(root, outputDir)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return werrors.FileSystemError("create output directory", err)
	}
	if woven {
		content = append([]byte(generatedHeader), content...)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return werrors.FileSystemError("write woven file", err)
	}
	return nil
}
