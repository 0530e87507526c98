package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sable-lang/sable/internal/ast"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/infer"
	"github.com/sable-lang/sable/internal/symbols"
	"github.com/sable-lang/sable/internal/typesystem"
)

func sampleModule() *infer.TypedModule {
	iface := symbols.NewModuleInterface("geometry")
	shape := typesystem.TNamed{Module: "geometry", Name: "Shape"}
	iface.Types["Shape"] = symbols.TypeDef{
		Name:   "Shape",
		Public: true,
		Constructors: []symbols.ConstructorDef{
			{
				Name:   "Circle",
				Fields: []typesystem.Type{typesystem.Float()},
				Type:   typesystem.TFn{Params: []typesystem.Type{typesystem.Float()}, Return: shape},
			},
			{Name: "Point", Type: shape},
		},
	}
	area := typesystem.TFn{
		Params:   []typesystem.Type{shape},
		Labelled: []typesystem.LabelledParam{{Label: "scale", Type: typesystem.Float()}},
		Return:   typesystem.Float(),
	}
	iface.Values["area"] = symbols.ValueDef{Name: "area", Type: area, Public: true}
	iface.Values["origin"] = symbols.ValueDef{
		Name: "origin",
		Type: typesystem.TTuple{Elements: []typesystem.Type{typesystem.Int(), typesystem.Int()}},
	}
	iface.Values["identity"] = symbols.ValueDef{
		Name:   "identity",
		Type:   typesystem.TFn{Params: []typesystem.Type{typesystem.TGeneric{ID: 0}}, Return: typesystem.TGeneric{ID: 0}},
		Public: true,
	}

	return &infer.TypedModule{
		Name:      "geometry",
		Interface: iface,
		Declarations: []infer.TypedDeclaration{
			{Name: "area", Type: area, Public: true, Span: ast.Span{Start: ast.Position{Line: 3, Column: 1}, End: ast.Position{Line: 5, Column: 2}}},
		},
		ExprTypes: []infer.ExprType{
			{Span: ast.Span{Start: ast.Position{Line: 4, Column: 3}, End: ast.Position{Line: 4, Column: 8}}, Type: typesystem.Float()},
		},
		Diagnostics: []diagnostics.Diagnostic{
			{
				Kind:     diagnostics.KindNotExhaustive,
				Severity: diagnostics.SeverityWarning,
				Module:   "geometry",
				Span:     ast.Span{Start: ast.Position{Line: 4, Column: 3}, End: ast.Position{Line: 4, Column: 8}},
				Missing:  []string{"Point"},
			},
		},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	typed := sampleModule()
	fp := ModuleFingerprint([]byte("pub fn area"), 0, nil)

	gotFp, got, err := Decode(Encode(fp, typed))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if gotFp != fp {
		t.Fatalf("fingerprint changed: %s != %s", gotFp, fp)
	}
	if !reflect.DeepEqual(got, typed) {
		t.Fatalf("round trip changed module:\n got %#v\nwant %#v", got, typed)
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	data := Encode(42, sampleModule())

	if _, _, err := Decode(data[:len(data)/2]); err == nil {
		t.Fatal("truncated entry decoded")
	}
	if _, _, err := Decode([]byte("not a cache entry at all")); err == nil {
		t.Fatal("garbage decoded")
	}

	versioned := append([]byte(nil), data...)
	versioned[7]++ // schema version byte
	if _, _, err := Decode(versioned); err == nil {
		t.Fatal("future schema version decoded")
	}
}

func TestFingerprintComposition(t *testing.T) {
	source := []byte("pub fn main() { 1 }")
	depA := ModuleFingerprint([]byte("module a"), 0, nil)
	depB := ModuleFingerprint([]byte("module b"), 0, nil)

	fp := ModuleFingerprint(source, 0, []Fingerprint{depA, depB})
	if fp != ModuleFingerprint(source, 0, []Fingerprint{depA, depB}) {
		t.Fatal("fingerprint not deterministic")
	}
	if fp != ModuleFingerprint(source, 0, []Fingerprint{depB, depA}) {
		t.Fatal("fingerprint depends on dependency order")
	}
	if fp == ModuleFingerprint([]byte("pub fn main() { 2 }"), 0, []Fingerprint{depA, depB}) {
		t.Fatal("source change not reflected")
	}
	if fp == ModuleFingerprint(source, 1, []Fingerprint{depA, depB}) {
		t.Fatal("options change not reflected")
	}

	// A change in a dependency's source changes its fingerprint and with it
	// every downstream fingerprint.
	depA2 := ModuleFingerprint([]byte("module a v2"), 0, nil)
	if fp == ModuleFingerprint(source, 0, []Fingerprint{depA2, depB}) {
		t.Fatal("dependency change not propagated")
	}
}

func TestDirStore(t *testing.T) {
	store, err := NewDirStore(filepath.Join(t.TempDir(), "build-cache"))
	if err != nil {
		t.Fatal(err)
	}

	typed := sampleModule()
	fp := ModuleFingerprint([]byte("source"), 0, nil)

	if _, ok := store.Load("geometry", fp); ok {
		t.Fatal("hit on empty store")
	}
	if err := store.Save("geometry", fp, typed); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Load("geometry", fp)
	if !ok {
		t.Fatal("expected hit")
	}
	if !reflect.DeepEqual(got, typed) {
		t.Fatal("loaded module differs from saved")
	}

	// Stale fingerprint is a miss, not an error.
	if _, ok := store.Load("geometry", fp+1); ok {
		t.Fatal("hit despite changed fingerprint")
	}

	// Nested module names map to flat entry files.
	if err := store.Save("geometry/vector", fp, typed); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load("geometry/vector", fp); !ok {
		t.Fatal("nested module name round trip failed")
	}

	if err := store.Clean(); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load("geometry", fp); ok {
		t.Fatal("hit after clean")
	}
}

func TestDirStoreCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	fp := ModuleFingerprint([]byte("source"), 0, nil)
	if err := store.Save("geometry", fp, sampleModule()); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "geometry"+entrySuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-10], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Load("geometry", fp); ok {
		t.Fatal("corrupt entry served as a hit")
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	typed := sampleModule()
	fp := ModuleFingerprint([]byte("source"), 0, nil)

	if _, ok := store.Load("geometry", fp); ok {
		t.Fatal("hit on empty store")
	}
	if err := store.Save("geometry", fp, typed); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Load("geometry", fp)
	if !ok {
		t.Fatal("expected hit")
	}
	if !reflect.DeepEqual(got, typed) {
		t.Fatal("loaded module differs from saved")
	}

	// Overwrite with a new fingerprint; the old one must now miss.
	fp2 := ModuleFingerprint([]byte("source v2"), 0, nil)
	if err := store.Save("geometry", fp2, typed); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load("geometry", fp); ok {
		t.Fatal("stale fingerprint hit after overwrite")
	}
	if _, ok := store.Load("geometry", fp2); !ok {
		t.Fatal("expected hit after overwrite")
	}

	if err := store.Clean(); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load("geometry", fp2); ok {
		t.Fatal("hit after clean")
	}
}
