package symbols

import (
	"testing"

	"github.com/sable-lang/sable/internal/typesystem"
)

func TestEnvironment_ShadowingKeepsOuterBinding(t *testing.T) {
	outer := NewEnvironment("app").Bind("x", Binding{Type: typesystem.Int()})
	inner := outer.Bind("x", Binding{Type: typesystem.String()})

	got, ok := inner.Lookup("x")
	if !ok {
		t.Fatal("inner lookup failed")
	}
	if typesystem.PrintType(got.Type) != "String" {
		t.Fatalf("inner scope should see the shadow, got %s", typesystem.PrintType(got.Type))
	}

	// The outer environment must be untouched by the inner shadow.
	got, ok = outer.Lookup("x")
	if !ok {
		t.Fatal("outer lookup failed")
	}
	if typesystem.PrintType(got.Type) != "Int" {
		t.Fatalf("outer binding was overwritten, got %s", typesystem.PrintType(got.Type))
	}
}

func TestEnvironment_LookupMissing(t *testing.T) {
	env := NewEnvironment("app")
	if _, ok := env.Lookup("nope"); ok {
		t.Fatal("expected miss")
	}
}

func TestRegistry_PreludeBool(t *testing.T) {
	reg := NewRegistry()
	prelude, ok := reg.Get(typesystem.PreludeModule)
	if !ok {
		t.Fatal("prelude not registered")
	}

	boolType, ok := prelude.Type(typesystem.BoolTypeName)
	if !ok {
		t.Fatal("Bool not in prelude")
	}
	if len(boolType.Constructors) != 2 {
		t.Fatalf("expected True/False, got %d constructors", len(boolType.Constructors))
	}
	if boolType.ConstructorIndex("False") != 1 {
		t.Fatalf("constructor order must follow declaration order")
	}

	ctor, owner, ok := prelude.Constructor("True")
	if !ok || owner.Name != typesystem.BoolTypeName || len(ctor.Fields) != 0 {
		t.Fatalf("constructor lookup broken: %v %v %v", ctor, owner, ok)
	}
}
