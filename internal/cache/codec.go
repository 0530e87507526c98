package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/infer"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

// Entry layout: magic, schema version, fingerprint, then the typed module.
// Strings are length-prefixed, counts and spans are big-endian uint32.
// Maps are written in sorted key order so encoding is deterministic.
var entryMagic = [4]byte{'S', 'B', 'M', 'C'}

var (
	errBadMagic   = errors.New("not a cache entry")
	errBadVersion = errors.New("cache schema version mismatch")
	errTruncated  = errors.New("truncated cache entry")
)

// Type tags.
const (
	tagGeneric byte = iota
	tagNamed
	tagFn
	tagTuple
	tagVar
)

// Unification variables left unbound by error recovery have no arena once
// cached. They are re-read as generics in a reserved ID range, which prints
// as an ordinary type variable in hover output.
const varGenericBase = 1 << 30

// Encode serializes a typed module with its fingerprint.
func Encode(fp Fingerprint, typed *infer.TypedModule) []byte {
	e := &encoder{}
	e.buf.Write(entryMagic[:])
	e.u32(SchemaVersion)
	e.u64(uint64(fp))

	e.str(typed.Name)
	e.moduleInterface(typed.Interface)

	e.u32(uint32(len(typed.Declarations)))
	for _, d := range typed.Declarations {
		e.str(d.Name)
		e.typ(d.Type)
		e.boolean(d.Public)
		e.span(d.Span)
	}

	e.u32(uint32(len(typed.ExprTypes)))
	for _, et := range typed.ExprTypes {
		e.span(et.Span)
		e.typ(et.Type)
	}

	e.u32(uint32(len(typed.Diagnostics)))
	for _, d := range typed.Diagnostics {
		e.diagnostic(d)
	}

	return e.buf.Bytes()
}

// Decode reads back an entry produced by Encode. Any structural problem,
// including a schema version bump, is an error; callers treat it as a miss.
func Decode(data []byte) (Fingerprint, *infer.TypedModule, error) {
	d := &decoder{data: data}

	var magic [4]byte
	d.bytes(magic[:])
	if magic != entryMagic {
		return 0, nil, errBadMagic
	}
	if v := d.u32(); v != SchemaVersion {
		return 0, nil, fmt.Errorf("%w: entry has %d, want %d", errBadVersion, v, SchemaVersion)
	}
	fp := Fingerprint(d.u64())

	typed := &infer.TypedModule{Name: d.str()}
	typed.Interface = d.moduleInterface()

	if n := d.count(); n > 0 {
		typed.Declarations = make([]infer.TypedDeclaration, n)
		for i := range typed.Declarations {
			typed.Declarations[i] = infer.TypedDeclaration{
				Name:   d.str(),
				Type:   d.typ(),
				Public: d.boolean(),
				Span:   d.span(),
			}
		}
	}

	if n := d.count(); n > 0 {
		typed.ExprTypes = make([]infer.ExprType, n)
		for i := range typed.ExprTypes {
			typed.ExprTypes[i] = infer.ExprType{Span: d.span(), Type: d.typ()}
		}
	}

	if n := d.count(); n > 0 {
		typed.Diagnostics = make([]diagnostics.Diagnostic, n)
		for i := range typed.Diagnostics {
			typed.Diagnostics[i] = d.diagnostic()
		}
	}

	if d.err != nil {
		return 0, nil, d.err
	}
	return fp, typed, nil
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) u32(v uint32) {
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], v)
	e.buf.Write(word[:])
}

func (e *encoder) u64(v uint64) {
	var word [8]byte
	binary.BigEndian.PutUint64(word[:], v)
	e.buf.Write(word[:])
}

func (e *encoder) boolean(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf.WriteString(s)
}

func (e *encoder) span(s ast.Span) {
	e.u32(uint32(s.Start.Line))
	e.u32(uint32(s.Start.Column))
	e.u32(uint32(s.End.Line))
	e.u32(uint32(s.End.Column))
}

func (e *encoder) typ(t typesystem.Type) {
	switch t := t.(type) {
	case typesystem.TGeneric:
		e.buf.WriteByte(tagGeneric)
		e.u32(uint32(t.ID))
	case typesystem.TNamed:
		e.buf.WriteByte(tagNamed)
		e.str(t.Module)
		e.str(t.Name)
		e.u32(uint32(len(t.Args)))
		for _, arg := range t.Args {
			e.typ(arg)
		}
	case typesystem.TFn:
		e.buf.WriteByte(tagFn)
		e.u32(uint32(len(t.Params)))
		for _, p := range t.Params {
			e.typ(p)
		}
		e.u32(uint32(len(t.Labelled)))
		for _, lp := range t.Labelled {
			e.str(lp.Label)
			e.typ(lp.Type)
		}
		e.typ(t.Return)
	case typesystem.TTuple:
		e.buf.WriteByte(tagTuple)
		e.u32(uint32(len(t.Elements)))
		for _, el := range t.Elements {
			e.typ(el)
		}
	case typesystem.TVar:
		e.buf.WriteByte(tagVar)
		e.u32(uint32(t.Ref))
	default:
		// Nil types only appear through bugs; keep the entry decodable.
		e.buf.WriteByte(tagTuple)
		e.u32(0)
	}
}

func (e *encoder) moduleInterface(m *symbols.ModuleInterface) {
	e.str(m.Name)

	valueNames := m.ValueNames()
	e.u32(uint32(len(valueNames)))
	for _, name := range valueNames {
		v := m.Values[name]
		e.str(v.Name)
		e.typ(v.Type)
		e.boolean(v.Public)
		e.span(v.Span)
	}

	typeNames := m.TypeNames()
	e.u32(uint32(len(typeNames)))
	for _, name := range typeNames {
		td := m.Types[name]
		e.str(td.Name)
		e.u32(uint32(td.Params))
		e.boolean(td.Public)
		e.span(td.Span)
		e.u32(uint32(len(td.Constructors)))
		for _, c := range td.Constructors {
			e.str(c.Name)
			e.u32(uint32(len(c.Fields)))
			for _, f := range c.Fields {
				e.typ(f)
			}
			e.typ(c.Type)
			e.span(c.Span)
		}
	}
}

func (e *encoder) diagnostic(d diagnostics.Diagnostic) {
	e.buf.WriteByte(byte(d.Kind))
	e.buf.WriteByte(byte(d.Severity))
	e.str(d.Module)
	e.span(d.Span)
	e.str(d.Expected)
	e.str(d.Found)
	e.str(d.Name)
	e.str(d.Label)
	e.u32(uint32(len(d.Missing)))
	for _, m := range d.Missing {
		e.str(m)
	}
	e.u32(uint32(d.Arity))
	e.u32(uint32(d.Given))
}

type decoder struct {
	data []byte
	pos  int
	err  error
}

func (d *decoder) fail() {
	if d.err == nil {
		d.err = errTruncated
	}
}

func (d *decoder) bytes(dst []byte) {
	if d.err != nil || d.pos+len(dst) > len(d.data) {
		d.fail()
		return
	}
	copy(dst, d.data[d.pos:])
	d.pos += len(dst)
}

func (d *decoder) u8() byte {
	if d.err != nil || d.pos+1 > len(d.data) {
		d.fail()
		return 0
	}
	b := d.data[d.pos]
	d.pos++
	return b
}

func (d *decoder) u32() uint32 {
	if d.err != nil || d.pos+4 > len(d.data) {
		d.fail()
		return 0
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v
}

func (d *decoder) u64() uint64 {
	if d.err != nil || d.pos+8 > len(d.data) {
		d.fail()
		return 0
	}
	v := binary.BigEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v
}

func (d *decoder) boolean() bool {
	return d.u8() != 0
}

func (d *decoder) str() string {
	n := d.u32()
	if d.err != nil || uint64(d.pos)+uint64(n) > uint64(len(d.data)) {
		d.fail()
		return ""
	}
	s := string(d.data[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s
}

func (d *decoder) span() ast.Span {
	return ast.Span{
		Start: ast.Position{Line: int(d.u32()), Column: int(d.u32())},
		End:   ast.Position{Line: int(d.u32()), Column: int(d.u32())},
	}
}

// count guards slice preallocation against corrupt length prefixes.
func (d *decoder) count() int {
	n := d.u32()
	if d.err == nil && uint64(n) > uint64(len(d.data)-d.pos) {
		d.fail()
		return 0
	}
	return int(n)
}

func (d *decoder) typ() typesystem.Type {
	if d.err != nil {
		return nil
	}
	switch tag := d.u8(); tag {
	case tagGeneric:
		return typesystem.TGeneric{ID: int(d.u32())}
	case tagNamed:
		t := typesystem.TNamed{Module: d.str(), Name: d.str()}
		if n := d.count(); n > 0 {
			t.Args = make([]typesystem.Type, n)
			for i := range t.Args {
				t.Args[i] = d.typ()
			}
		}
		return t
	case tagFn:
		t := typesystem.TFn{}
		if n := d.count(); n > 0 {
			t.Params = make([]typesystem.Type, n)
			for i := range t.Params {
				t.Params[i] = d.typ()
			}
		}
		if n := d.count(); n > 0 {
			t.Labelled = make([]typesystem.LabelledParam, n)
			for i := range t.Labelled {
				t.Labelled[i] = typesystem.LabelledParam{Label: d.str(), Type: d.typ()}
			}
		}
		t.Return = d.typ()
		return t
	case tagTuple:
		t := typesystem.TTuple{}
		if n := d.count(); n > 0 {
			t.Elements = make([]typesystem.Type, n)
			for i := range t.Elements {
				t.Elements[i] = d.typ()
			}
		}
		return t
	case tagVar:
		ref := d.u32()
		if ref > math.MaxUint32-varGenericBase {
			d.fail()
			return nil
		}
		return typesystem.TGeneric{ID: varGenericBase + int(ref)}
	default:
		if d.err == nil {
			d.err = fmt.Errorf("unknown type tag %d", tag)
		}
		return nil
	}
}

func (d *decoder) moduleInterface() *symbols.ModuleInterface {
	m := symbols.NewModuleInterface(d.str())

	for i, n := 0, d.count(); i < n; i++ {
		v := symbols.ValueDef{
			Name:   d.str(),
			Type:   d.typ(),
			Public: d.boolean(),
			Span:   d.span(),
		}
		if d.err != nil {
			break
		}
		m.Values[v.Name] = v
	}

	for i, n := 0, d.count(); i < n; i++ {
		td := symbols.TypeDef{
			Name:   d.str(),
			Params: int(d.u32()),
		}
		td.Public = d.boolean()
		td.Span = d.span()
		for j, nc := 0, d.count(); j < nc; j++ {
			c := symbols.ConstructorDef{Name: d.str()}
			if nf := d.count(); nf > 0 {
				c.Fields = make([]typesystem.Type, nf)
				for k := range c.Fields {
					c.Fields[k] = d.typ()
				}
			}
			c.Type = d.typ()
			c.Span = d.span()
			td.Constructors = append(td.Constructors, c)
		}
		if d.err != nil {
			break
		}
		m.Types[td.Name] = td
	}

	return m
}

func (d *decoder) diagnostic() diagnostics.Diagnostic {
	diag := diagnostics.Diagnostic{
		Kind:     diagnostics.Kind(d.u8()),
		Severity: diagnostics.Severity(d.u8()),
		Module:   d.str(),
		Span:     d.span(),
		Expected: d.str(),
		Found:    d.str(),
		Name:     d.str(),
		Label:    d.str(),
	}
	if n := d.count(); n > 0 {
		diag.Missing = make([]string, n)
		for i := range diag.Missing {
			diag.Missing[i] = d.str()
		}
	}
	diag.Arity = int(d.u32())
	diag.Given = int(d.u32())
	return diag
}
