package containers

import (
	"testing"

	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/diagnostics"
)

func TestBindTypeDefs(t *testing.T) {
	tests := []struct {
		name     string
		varName  string
		ann      string
		args     []string
		kind     ConcreteKind
		typeName string
		typeDef  string
		include  string
	}{
		{"int vec", "items", "list", []string{"int"}, Vec,
			"ItemsVec", "#define T ItemsVec, int", "stc/vec.h"},
		{"float deque", "queue", "deque", []string{"float"}, Deque,
			"QueueDeque", "#define T QueueDeque, double", "stc/deque.h"},
		{"str-int hmap", "scores", "dict", []string{"str", "int"}, HashMap,
			"ScoresMap", "#define T ScoresMap, cstr, int", "stc/hmap.h"},
		{"sorted map", "index", "dict", []string{"int", "float"}, SortedMap,
			"IndexMap", "#define T IndexMap, int, double", "stc/smap.h"},
		{"record set", "seen", "set", []string{"Point"}, HashSet,
			"SeenSet", "#define T SeenSet, Point", "stc/hset.h"},
		{"text", "label", "str", nil, Str,
			"cstr", "", "stc/cstr.h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper()
			a := ann(tt.ann)
			for _, arg := range tt.args {
				a.Args = append(a.Args, ann(arg))
			}
			b, err := m.Bind(tt.varName, a, tt.kind, 1)
			if err != nil {
				t.Fatalf("Bind: %v", err)
			}
			if b.TypeName != tt.typeName {
				t.Errorf("TypeName = %q, want %q", b.TypeName, tt.typeName)
			}
			if b.TypeDef() != tt.typeDef {
				t.Errorf("TypeDef = %q, want %q", b.TypeDef(), tt.typeDef)
			}
			if b.Include() != tt.include {
				t.Errorf("Include = %q, want %q", b.Include(), tt.include)
			}
		})
	}
}

func TestBindUniqueTypeNames(t *testing.T) {
	m := NewMapper()

	first, err := m.Bind("items", ann("list", ann("int")), Vec, 1)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	m.Reset()
	second, err := m.Bind("items", ann("list", ann("float")), Vec, 10)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	m.Reset()
	third, err := m.Bind("items", ann("list", ann("bool")), Vec, 20)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if first.TypeName != "ItemsVec" || second.TypeName != "ItemsVec2" || third.TypeName != "ItemsVec3" {
		t.Errorf("type names = %q, %q, %q; want ItemsVec, ItemsVec2, ItemsVec3",
			first.TypeName, second.TypeName, third.TypeName)
	}
}

func TestBindMalformedElements(t *testing.T) {
	tests := []struct {
		name string
		ann  *ast.TypeAnnotation
		kind ConcreteKind
	}{
		{"missing element", ann("list"), Vec},
		{"nested container", ann("list", ann("list", ann("int"))), Vec},
		{"dict arity", ann("dict", ann("int")), HashMap},
		{"none element", ann("set", ann("None")), HashSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper()
			_, err := m.Bind("v", tt.ann, tt.kind, 3)
			if err == nil {
				t.Fatalf("Bind(%s) succeeded, want C002", tt.ann)
			}
			if err.Code.ID != diagnostics.ErrC002.ID {
				t.Errorf("error code = %s, want %s", err.Code.ID, diagnostics.ErrC002.ID)
			}
			if err.Line != 3 {
				t.Errorf("error line = %d, want 3", err.Line)
			}
		})
	}
}

func TestMapOperation(t *testing.T) {
	tests := []struct {
		name   string
		kind   ConcreteKind
		method string
		argc   int
		want   string
	}{
		{"vec append", Vec, "append", 1, "push"},
		{"vec pop last", Vec, "pop", 0, "pop"},
		{"vec pop at", Vec, "pop", 1, "erase_at"},
		{"deque insert", Deque, "insert", 2, "insert_at"},
		{"vec remove", Vec, "remove", 1, "erase_val"},
		{"map get", HashMap, "get", 1, "get"},
		{"map pop", SortedMap, "pop", 1, "erase"},
		{"set add", HashSet, "add", 1, "insert"},
		{"set discard", SortedSet, "discard", 1, "erase"},
		{"copy", Vec, "copy", 0, "clone"},
	}

	m := NewMapper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Binding{Var: "v", Kind: tt.kind, TypeName: "VVec"}
			got, err := m.MapOperation(b, tt.method, tt.argc, 1)
			if err != nil {
				t.Fatalf("MapOperation: %v", err)
			}
			if got != tt.want {
				t.Errorf("MapOperation(%v, %q/%d) = %q, want %q", tt.kind, tt.method, tt.argc, got, tt.want)
			}
		})
	}
}

func TestMapOperationUnmappedIsHardError(t *testing.T) {
	m := NewMapper()
	b := &Binding{Var: "seen", Kind: HashSet, TypeName: "SeenSet"}

	_, err := m.MapOperation(b, "pop", 0, 7)
	if err == nil {
		t.Fatal("set pop mapped, want C001")
	}
	if err.Code.ID != diagnostics.ErrC001.ID {
		t.Errorf("error code = %s, want %s", err.Code.ID, diagnostics.ErrC001.ID)
	}
	if err.Line != 7 {
		t.Errorf("error line = %d, want 7", err.Line)
	}
}

func TestBindingCallForms(t *testing.T) {
	m := NewMapper()
	vec, err := m.Bind("items", ann("list", ann("int")), Vec, 1)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	dict, err := m.Bind("scores", ann("dict", ann("int"), ann("float")), HashMap, 2)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	if got := vec.Call("push", "&items", "5"); got != "ItemsVec_push(&items, 5)" {
		t.Errorf("Call = %q", got)
	}
	// pointer parameters pass their name directly
	if got := vec.Call("push", "items", "5"); got != "ItemsVec_push(items, 5)" {
		t.Errorf("Call = %q", got)
	}
	if got := vec.DropCall("&items"); got != "ItemsVec_drop(&items)" {
		t.Errorf("DropCall = %q", got)
	}
	if got := vec.SizeExpr("&items"); got != "ItemsVec_size(&items)" {
		t.Errorf("SizeExpr = %q", got)
	}
	if got := vec.LoadExpr("&items", "i"); got != "*ItemsVec_at(&items, i)" {
		t.Errorf("LoadExpr = %q", got)
	}
	if got := vec.StoreStmt("&items", "i", "9"); got != "*ItemsVec_at_mut(&items, i) = 9;" {
		t.Errorf("vec StoreStmt = %q", got)
	}
	if got := dict.StoreStmt("&scores", "k", "1.5"); got != "ScoresMap_insert_or_assign(&scores, k, 1.5);" {
		t.Errorf("map StoreStmt = %q", got)
	}
	if got := dict.ContainsExpr("&scores", "k"); got != "ScoresMap_contains(&scores, k)" {
		t.Errorf("ContainsExpr = %q", got)
	}
	if vec.Init() != "{0}" || dict.Init() != "{0}" {
		t.Errorf("Init = %q, %q; want {0}", vec.Init(), dict.Init())
	}
}
