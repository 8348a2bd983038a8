// Package gosource builds anchored edit descriptors from parsed Go source.
// The builders locate declarations with go/parser and emit descriptors whose
// targets are the exact declaration text, so application flows through the
// normal contextual applier.
package gosource

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/skovand/redline/internal/edit"
)

// ErrAlreadyImported indicates the requested import path is already present.
var ErrAlreadyImported = errors.New("import already present")

// NotFoundError indicates the named declaration does not exist in the source.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// AmbiguousError indicates a bare method name matched methods on more than
// one receiver type.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("function %q is ambiguous, matches %s", e.Name, strings.Join(e.Candidates, ", "))
}

// ReplaceFunction builds a descriptor replacing the declaration of the named
// function with newDecl. Name is either a plain function name or
// "Receiver.Method". The target span excludes the doc comment, so it is
// preserved. A bare name resolves to a method only when exactly one receiver
// type declares it.
func ReplaceFunction(src, name, newDecl string) (edit.ContextEdit, error) {
	fset, file, err := parse(src)
	if err != nil {
		return edit.ContextEdit{}, err
	}

	decl, err := findFunction(file, name)
	if err != nil {
		return edit.ContextEdit{}, err
	}

	return edit.ContextEdit{
		Operation:   edit.OpReplace,
		Target:      span(fset, src, decl.Pos(), decl.End()),
		Replacement: strings.TrimRight(newDecl, "\n"),
		Description: fmt.Sprintf("replace function %s", name),
	}, nil
}

// AddStructField builds a descriptor adding field before the closing brace
// of the named struct type.
func AddStructField(src, structName, field string) (edit.ContextEdit, error) {
	fset, file, err := parse(src)
	if err != nil {
		return edit.ContextEdit{}, err
	}

	spec, structType := findStruct(file, structName)
	if spec == nil {
		return edit.ContextEdit{}, &NotFoundError{Kind: "struct", Name: structName}
	}

	start := offset(fset, spec.Pos())
	closing := offset(fset, structType.Fields.Closing)
	end := offset(fset, spec.End())

	var b strings.Builder
	b.WriteString(src[start:closing])
	if !strings.HasSuffix(src[start:closing], "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\t")
	b.WriteString(strings.TrimSpace(field))
	b.WriteString("\n")
	b.WriteString(src[closing:end])

	return edit.ContextEdit{
		Operation:   edit.OpReplace,
		Target:      src[start:end],
		Replacement: b.String(),
		Description: fmt.Sprintf("add field to struct %s", structName),
	}, nil
}

// AddImport builds a descriptor adding importPath to the file's imports. An
// existing import block is extended; a single import is rewritten as a
// block; a file without imports gets one inserted after the package clause.
// Returns ErrAlreadyImported when the path is present.
func AddImport(src, importPath string) (edit.ContextEdit, error) {
	fset, file, err := parse(src)
	if err != nil {
		return edit.ContextEdit{}, err
	}

	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		if path == importPath {
			return edit.ContextEdit{}, fmt.Errorf("%q: %w", importPath, ErrAlreadyImported)
		}
	}

	for _, decl := range file.Decls {
		d, ok := decl.(*ast.GenDecl)
		if !ok || d.Tok != token.IMPORT {
			continue
		}
		if d.Lparen.IsValid() {
			return extendImportBlock(fset, src, d, importPath), nil
		}
		return wrapSingleImport(fset, src, d, importPath), nil
	}

	// No import declaration at all; insert one after the package clause.
	return edit.ContextEdit{
		Operation:   edit.OpInsert,
		Anchor:      "package " + file.Name.Name,
		Position:    edit.PositionAfter,
		Content:     "\nimport " + strconv.Quote(importPath),
		Description: fmt.Sprintf("import %s", importPath),
	}, nil
}

// extendImportBlock inserts the new path before the block's closing paren.
func extendImportBlock(fset *token.FileSet, src string, d *ast.GenDecl, importPath string) edit.ContextEdit {
	start := offset(fset, d.Pos())
	closing := offset(fset, d.Rparen)
	end := offset(fset, d.End())

	var b strings.Builder
	b.WriteString(src[start:closing])
	if !strings.HasSuffix(src[start:closing], "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\t")
	b.WriteString(strconv.Quote(importPath))
	b.WriteString("\n")
	b.WriteString(src[closing:end])

	return edit.ContextEdit{
		Operation:   edit.OpReplace,
		Target:      src[start:end],
		Replacement: b.String(),
		Description: fmt.Sprintf("import %s", importPath),
	}
}

// wrapSingleImport rewrites `import "a"` into a parenthesized block holding
// the existing import and the new path.
func wrapSingleImport(fset *token.FileSet, src string, d *ast.GenDecl, importPath string) edit.ContextEdit {
	spec := d.Specs[0].(*ast.ImportSpec)
	existing := span(fset, src, spec.Pos(), spec.End())

	var b strings.Builder
	b.WriteString("import (\n")
	b.WriteString("\t" + existing + "\n")
	b.WriteString("\t" + strconv.Quote(importPath) + "\n")
	b.WriteString(")")

	return edit.ContextEdit{
		Operation:   edit.OpReplace,
		Target:      span(fset, src, d.Pos(), d.End()),
		Replacement: b.String(),
		Description: fmt.Sprintf("import %s", importPath),
	}
}

func parse(src string) (*token.FileSet, *ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", []byte(src), parser.ParseComments)
	if err != nil {
		return nil, nil, err
	}
	return fset, file, nil
}

func offset(fset *token.FileSet, pos token.Pos) int {
	return fset.Position(pos).Offset
}

func span(fset *token.FileSet, src string, start, end token.Pos) string {
	return src[offset(fset, start):offset(fset, end)]
}

// findFunction locates a function declaration. A qualified "Recv.Method"
// name matches exactly; a bare name prefers a receiver-less function and
// falls back to a uniquely named method.
func findFunction(file *ast.File, name string) (*ast.FuncDecl, error) {
	recv, method, qualified := strings.Cut(name, ".")
	if qualified {
		for _, decl := range file.Decls {
			d, ok := decl.(*ast.FuncDecl)
			if !ok || d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			if receiverTypeName(d) == recv && d.Name.Name == method {
				return d, nil
			}
		}
		return nil, &NotFoundError{Kind: "method", Name: name}
	}

	var methods []*ast.FuncDecl
	for _, decl := range file.Decls {
		d, ok := decl.(*ast.FuncDecl)
		if !ok || d.Name.Name != name {
			continue
		}
		if d.Recv == nil {
			return d, nil
		}
		methods = append(methods, d)
	}

	switch len(methods) {
	case 0:
		return nil, &NotFoundError{Kind: "function", Name: name}
	case 1:
		return methods[0], nil
	default:
		candidates := make([]string, len(methods))
		for i, m := range methods {
			candidates[i] = receiverTypeName(m) + "." + m.Name.Name
		}
		return nil, &AmbiguousError{Name: name, Candidates: candidates}
	}
}

func receiverTypeName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return ""
	}
	switch t := d.Recv.List[0].Type.(type) {
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	case *ast.Ident:
		return t.Name
	}
	return ""
}

func findStruct(file *ast.File, name string) (*ast.TypeSpec, *ast.StructType) {
	for _, decl := range file.Decls {
		d, ok := decl.(*ast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			continue
		}
		for _, s := range d.Specs {
			spec, ok := s.(*ast.TypeSpec)
			if !ok || spec.Name.Name != name {
				continue
			}
			if structType, ok := spec.Type.(*ast.StructType); ok {
				return spec, structType
			}
		}
	}
	return nil, nil
}
