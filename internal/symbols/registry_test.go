package symbols

import (
	"testing"

	"github.com/cgenlang/cgen/internal/typesystem"
)

func TestRegistryOrderAndLookup(t *testing.T) {
	rr := NewRecordRegistry()
	err := rr.Register("Point", []FieldInfo{
		{Name: "x", Type: typesystem.Primitive{Kind: typesystem.Float}},
		{Name: "y", Type: typesystem.Primitive{Kind: typesystem.Float}},
	}, 1)
	if err != nil {
		t.Fatalf("Register(Point): %v", err)
	}
	// Fields may reference a record not yet registered.
	err = rr.Register("Segment", []FieldInfo{
		{Name: "a", Type: typesystem.Record{Name: "Point"}},
		{Name: "b", Type: typesystem.Record{Name: "Point"}},
		{Name: "next", Type: typesystem.Record{Name: "Polyline"}},
	}, 5)
	if err != nil {
		t.Fatalf("Register(Segment): %v", err)
	}

	names := rr.Names()
	if len(names) != 2 || names[0] != "Point" || names[1] != "Segment" {
		t.Errorf("Names() = %v, want [Point Segment]", names)
	}

	seg, ok := rr.Lookup("Segment")
	if !ok {
		t.Fatal("Lookup(Segment) missing")
	}
	ft, ok := seg.FieldType("next")
	if !ok || ft.String() != "Polyline" {
		t.Errorf("FieldType(next) = %v, %v", ft, ok)
	}
	if _, ok := seg.FieldType("missing"); ok {
		t.Error("FieldType(missing) should not resolve")
	}
}

func TestRegistryRejectsDuplicatesAndFrozenWrites(t *testing.T) {
	rr := NewRecordRegistry()
	if err := rr.Register("Point", nil, 1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := rr.Register("Point", nil, 2); err == nil {
		t.Error("duplicate registration should fail")
	}
	if err := rr.Register("Bad", []FieldInfo{
		{Name: "x", Type: typesystem.Primitive{Kind: typesystem.Int}},
		{Name: "x", Type: typesystem.Primitive{Kind: typesystem.Int}},
	}, 3); err == nil {
		t.Error("duplicate field should fail")
	}

	rr.Freeze()
	if !rr.Frozen() {
		t.Error("Frozen() = false after Freeze")
	}
	if err := rr.Register("Late", nil, 9); err == nil {
		t.Error("registration after freeze should fail")
	}
}
