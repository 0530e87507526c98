package typesystem

import (
	"strings"
)

// Printer renders types for diagnostics and hover output. Type variables and
// generic parameters are assigned stable letter names (a, b, ... z, aa, ab)
// in order of first appearance, so the same type always prints the same way
// within one printer.
type Printer struct {
	arena    *Arena
	varNames map[VarID]string
	genNames map[int]string
	uid      int
}

// NewPrinter creates a printer. The arena may be nil when printing
// arena-free types (module interfaces, cached entries).
func NewPrinter(arena *Arena) *Printer {
	return &Printer{
		arena:    arena,
		varNames: map[VarID]string{},
		genNames: map[int]string{},
	}
}

// Print renders a single type.
func (p *Printer) Print(t Type) string {
	var b strings.Builder
	p.print(&b, t)
	return b.String()
}

func (p *Printer) print(b *strings.Builder, t Type) {
	if p.arena != nil {
		t = p.arena.Resolve(t)
	}
	switch t := t.(type) {
	case TVar:
		name, ok := p.varNames[t.Ref]
		if !ok {
			name = p.nextLetter()
			p.varNames[t.Ref] = name
		}
		b.WriteString(name)
	case TGeneric:
		name, ok := p.genNames[t.ID]
		if !ok {
			name = p.nextLetter()
			p.genNames[t.ID] = name
		}
		b.WriteString(name)
	case TNamed:
		b.WriteString(t.Name)
		if len(t.Args) > 0 {
			b.WriteByte('(')
			for i, arg := range t.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				p.print(b, arg)
			}
			b.WriteByte(')')
		}
	case TFn:
		b.WriteString("fn(")
		for i, param := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			p.print(b, param)
		}
		for i, lp := range t.Labelled {
			if i > 0 || len(t.Params) > 0 {
				b.WriteString(", ")
			}
			b.WriteString(lp.Label)
			b.WriteString(": ")
			p.print(b, lp.Type)
		}
		b.WriteString(") -> ")
		p.print(b, t.Return)
	case TTuple:
		b.WriteString("#(")
		for i, el := range t.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			p.print(b, el)
		}
		b.WriteByte(')')
	}
}

func (p *Printer) nextLetter() string {
	const alphabetLength = 26
	const charOffset = 'a'

	var chars []byte
	n := p.uid
	p.uid++
	rest := n
	for {
		n = rest % alphabetLength
		rest = rest / alphabetLength
		chars = append(chars, byte(n)+charOffset)
		if rest == 0 {
			break
		}
		rest--
	}
	for i, j := 0, len(chars)-1; i < j; i, j = i+1, j-1 {
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

// PrintType is a convenience for one-off rendering of an arena-free type.
func PrintType(t Type) string {
	return NewPrinter(nil).Print(t)
}
