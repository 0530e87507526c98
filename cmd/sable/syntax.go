package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sable-lang/sable/internal/ast"
)

// The frontend hands modules over as JSON syntax trees, one file per module
// under src/, named <module>.sable.json (directory separators become module
// name segments). This file decodes that interchange format.

const syntaxSuffix = ".sable.json"

// loadModules reads every syntax file under root. The raw file bytes become
// the module's Source, which is what cache fingerprints hash.
func loadModules(root string) ([]*ast.Module, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, syntaxSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(paths)

	modules := make([]*ast.Module, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		mod, err := decodeModule(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if mod.Name == "" {
			mod.Name = moduleNameFromPath(root, path)
		}
		modules = append(modules, mod)
	}
	return modules, nil
}

func moduleNameFromPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, syntaxSuffix)
	return filepath.ToSlash(rel)
}

// jsonSpan is [startLine, startCol, endLine, endCol].
type jsonSpan [4]int

func (s jsonSpan) span() ast.Span {
	return ast.Span{
		Start: ast.Position{Line: s[0], Column: s[1]},
		End:   ast.Position{Line: s[2], Column: s[3]},
	}
}

type jsonModule struct {
	Name         string       `json:"name"`
	Package      string       `json:"package"`
	Imports      []jsonImport `json:"imports"`
	Declarations []jsonNode   `json:"declarations"`
}

type jsonImport struct {
	Module string   `json:"module"`
	Alias  string   `json:"alias"`
	Span   jsonSpan `json:"span"`
}

// jsonNode is the one shape used for declarations, expressions, patterns and
// annotations alike; Kind picks the variant and the variant picks the fields.
type jsonNode struct {
	Kind string   `json:"kind"`
	Span jsonSpan `json:"span"`

	Name   string `json:"name"`
	Module string `json:"module"`
	Label  string `json:"label"`
	Public bool   `json:"public"`

	Int    int64   `json:"int"`
	Float  float64 `json:"float"`
	String string  `json:"string"`

	Params       []jsonParam `json:"params"`
	TypeParams   []string    `json:"typeParams"`
	Constructors []jsonCtor  `json:"constructors"`

	Annotation *jsonNode  `json:"annotation"`
	Return     *jsonNode  `json:"return"`
	Fn         *jsonNode  `json:"fn"`
	Value      *jsonNode  `json:"value"`
	Body       *jsonNode  `json:"body"`
	Subject    *jsonNode  `json:"subject"`
	Pattern    *jsonNode  `json:"pattern"`
	Args       []jsonNode `json:"args"`
	Elements   []jsonNode `json:"elements"`
	Clauses    []jsonNode `json:"clauses"`
}

type jsonParam struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Annotation *jsonNode `json:"annotation"`
	Span       jsonSpan  `json:"span"`
}

type jsonCtor struct {
	Name string     `json:"name"`
	Args []jsonNode `json:"args"`
	Span jsonSpan   `json:"span"`
}

func decodeModule(data []byte) (*ast.Module, error) {
	var jm jsonModule
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, fmt.Errorf("decode syntax: %w", err)
	}

	mod := &ast.Module{Name: jm.Name, Package: jm.Package, Source: data}
	for _, imp := range jm.Imports {
		mod.Imports = append(mod.Imports, &ast.Import{
			Module: imp.Module,
			Alias:  imp.Alias,
			Span:   imp.Span.span(),
		})
	}
	for i := range jm.Declarations {
		decl, err := decodeDeclaration(&jm.Declarations[i])
		if err != nil {
			return nil, err
		}
		mod.Declarations = append(mod.Declarations, decl)
	}
	return mod, nil
}

func decodeDeclaration(n *jsonNode) (ast.Declaration, error) {
	switch n.Kind {
	case "type":
		d := &ast.CustomTypeDeclaration{
			Name:   n.Name,
			Params: n.TypeParams,
			Public: n.Public,
			Span:   n.Span.span(),
		}
		for _, c := range n.Constructors {
			ctor := &ast.Constructor{Name: c.Name, Span: c.Span.span()}
			for i := range c.Args {
				arg, err := decodeAnnotation(&c.Args[i])
				if err != nil {
					return nil, err
				}
				ctor.Args = append(ctor.Args, arg)
			}
			d.Constructors = append(d.Constructors, ctor)
		}
		return d, nil

	case "fn":
		d := &ast.FunctionDeclaration{
			Name:   n.Name,
			Public: n.Public,
			Span:   n.Span.span(),
		}
		var err error
		if d.Params, err = decodeParams(n.Params); err != nil {
			return nil, err
		}
		if n.Return != nil {
			if d.Return, err = decodeAnnotation(n.Return); err != nil {
				return nil, err
			}
		}
		if n.Body == nil {
			return nil, fmt.Errorf("function %s has no body", n.Name)
		}
		if d.Body, err = decodeExpression(n.Body); err != nil {
			return nil, err
		}
		return d, nil

	case "const":
		if n.Value == nil {
			return nil, fmt.Errorf("constant %s has no value", n.Name)
		}
		value, err := decodeExpression(n.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ConstantDeclaration{
			Name:   n.Name,
			Value:  value,
			Public: n.Public,
			Span:   n.Span.span(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown declaration kind %q", n.Kind)
	}
}

func decodeParams(params []jsonParam) ([]*ast.Parameter, error) {
	out := make([]*ast.Parameter, 0, len(params))
	for i := range params {
		p := &ast.Parameter{
			Name:  params[i].Name,
			Label: params[i].Label,
			Span:  params[i].Span.span(),
		}
		if params[i].Annotation != nil {
			ann, err := decodeAnnotation(params[i].Annotation)
			if err != nil {
				return nil, err
			}
			p.Annotation = ann
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeExpression(n *jsonNode) (ast.Expression, error) {
	switch n.Kind {
	case "int":
		return &ast.IntLiteral{Value: n.Int, Span: n.Span.span()}, nil
	case "float":
		return &ast.FloatLiteral{Value: n.Float, Span: n.Span.span()}, nil
	case "string":
		return &ast.StringLiteral{Value: n.String, Span: n.Span.span()}, nil

	case "var":
		return &ast.Identifier{Module: n.Module, Name: n.Name, Span: n.Span.span()}, nil

	case "call":
		if n.Fn == nil {
			return nil, fmt.Errorf("call without callee")
		}
		fn, err := decodeExpression(n.Fn)
		if err != nil {
			return nil, err
		}
		call := &ast.CallExpression{Fn: fn, Span: n.Span.span()}
		for i := range n.Args {
			arg := &n.Args[i]
			if arg.Value == nil {
				return nil, fmt.Errorf("call argument without value")
			}
			value, err := decodeExpression(arg.Value)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, &ast.CallArgument{
				Label: arg.Label,
				Value: value,
				Span:  arg.Span.span(),
			})
		}
		return call, nil

	case "fnexpr":
		e := &ast.FnExpression{Span: n.Span.span()}
		var err error
		if e.Params, err = decodeParams(n.Params); err != nil {
			return nil, err
		}
		if n.Return != nil {
			if e.Return, err = decodeAnnotation(n.Return); err != nil {
				return nil, err
			}
		}
		if n.Body == nil {
			return nil, fmt.Errorf("fn expression without body")
		}
		if e.Body, err = decodeExpression(n.Body); err != nil {
			return nil, err
		}
		return e, nil

	case "let":
		if n.Pattern == nil || n.Value == nil || n.Body == nil {
			return nil, fmt.Errorf("let missing pattern, value or body")
		}
		e := &ast.LetExpression{Span: n.Span.span()}
		var err error
		if e.Pattern, err = decodePattern(n.Pattern); err != nil {
			return nil, err
		}
		if n.Annotation != nil {
			if e.Annotation, err = decodeAnnotation(n.Annotation); err != nil {
				return nil, err
			}
		}
		if e.Value, err = decodeExpression(n.Value); err != nil {
			return nil, err
		}
		if e.Body, err = decodeExpression(n.Body); err != nil {
			return nil, err
		}
		return e, nil

	case "case":
		if n.Subject == nil {
			return nil, fmt.Errorf("case without subject")
		}
		subject, err := decodeExpression(n.Subject)
		if err != nil {
			return nil, err
		}
		e := &ast.CaseExpression{Subject: subject, Span: n.Span.span()}
		for i := range n.Clauses {
			cl := &n.Clauses[i]
			if cl.Pattern == nil || cl.Body == nil {
				return nil, fmt.Errorf("case clause missing pattern or body")
			}
			pattern, err := decodePattern(cl.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := decodeExpression(cl.Body)
			if err != nil {
				return nil, err
			}
			e.Clauses = append(e.Clauses, &ast.CaseClause{
				Pattern: pattern,
				Body:    body,
				Span:    cl.Span.span(),
			})
		}
		return e, nil

	case "tuple":
		e := &ast.TupleExpression{Span: n.Span.span()}
		for i := range n.Elements {
			el, err := decodeExpression(&n.Elements[i])
			if err != nil {
				return nil, err
			}
			e.Elements = append(e.Elements, el)
		}
		return e, nil

	case "list":
		e := &ast.ListExpression{Span: n.Span.span()}
		for i := range n.Elements {
			el, err := decodeExpression(&n.Elements[i])
			if err != nil {
				return nil, err
			}
			e.Elements = append(e.Elements, el)
		}
		return e, nil

	default:
		return nil, fmt.Errorf("unknown expression kind %q", n.Kind)
	}
}

func decodePattern(n *jsonNode) (ast.Pattern, error) {
	switch n.Kind {
	case "var":
		return &ast.VariablePattern{Name: n.Name, Span: n.Span.span()}, nil
	case "discard":
		return &ast.DiscardPattern{Span: n.Span.span()}, nil
	case "int":
		return &ast.IntPattern{Value: n.Int, Span: n.Span.span()}, nil
	case "string":
		return &ast.StringPattern{Value: n.String, Span: n.Span.span()}, nil

	case "ctor":
		p := &ast.ConstructorPattern{Module: n.Module, Name: n.Name, Span: n.Span.span()}
		for i := range n.Args {
			arg, err := decodePattern(&n.Args[i])
			if err != nil {
				return nil, err
			}
			p.Args = append(p.Args, arg)
		}
		return p, nil

	case "tuple":
		p := &ast.TuplePattern{Span: n.Span.span()}
		for i := range n.Elements {
			el, err := decodePattern(&n.Elements[i])
			if err != nil {
				return nil, err
			}
			p.Elements = append(p.Elements, el)
		}
		return p, nil

	default:
		return nil, fmt.Errorf("unknown pattern kind %q", n.Kind)
	}
}

func decodeAnnotation(n *jsonNode) (ast.TypeAnnotation, error) {
	switch n.Kind {
	case "named":
		a := &ast.NamedAnnotation{Module: n.Module, Name: n.Name, Span: n.Span.span()}
		for i := range n.Args {
			arg, err := decodeAnnotation(&n.Args[i])
			if err != nil {
				return nil, err
			}
			a.Args = append(a.Args, arg)
		}
		return a, nil

	case "var":
		return &ast.VarAnnotation{Name: n.Name, Span: n.Span.span()}, nil

	case "fn":
		a := &ast.FnAnnotation{Span: n.Span.span()}
		for i := range n.Args {
			arg, err := decodeAnnotation(&n.Args[i])
			if err != nil {
				return nil, err
			}
			a.Params = append(a.Params, arg)
		}
		if n.Return != nil {
			ret, err := decodeAnnotation(n.Return)
			if err != nil {
				return nil, err
			}
			a.Return = ret
		}
		return a, nil

	case "tuple":
		a := &ast.TupleAnnotation{Span: n.Span.span()}
		for i := range n.Elements {
			el, err := decodeAnnotation(&n.Elements[i])
			if err != nil {
				return nil, err
			}
			a.Elements = append(a.Elements, el)
		}
		return a, nil

	default:
		return nil, fmt.Errorf("unknown annotation kind %q", n.Kind)
	}
}
