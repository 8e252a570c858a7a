// Package symbols holds the per-unit record registry: the write-once,
// read-many table of declared record types and their typed fields.
package symbols

import (
	"fmt"

	"github.com/cgenlang/cgen/internal/typesystem"
)

// FieldInfo is a single record field with its lattice type, in
// declaration order.
type FieldInfo struct {
	Name string
	Type typesystem.Type
}

// RecordInfo describes one declared record type.
type RecordInfo struct {
	Name   string
	Fields []FieldInfo
	Line   int

	index map[string]int
}

// FieldType looks up a field by name.
func (r *RecordInfo) FieldType(name string) (typesystem.Type, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.Fields[i].Type, true
}

// RecordRegistry maps declared-type names to their field layouts. It is
// populated once per module before function inference begins and frozen
// afterwards; frozen registries are safe to share across concurrently
// translated functions without locking.
//
// Fields may reference record names that are not yet registered: nominal
// types resolve by identity, not by pre-resolution.
type RecordRegistry struct {
	order   []string
	records map[string]*RecordInfo
	frozen  bool
}

// NewRecordRegistry creates an empty registry.
func NewRecordRegistry() *RecordRegistry {
	return &RecordRegistry{records: make(map[string]*RecordInfo)}
}

// Register adds a record declaration. Registration order is preserved for
// deterministic struct emission.
func (rr *RecordRegistry) Register(name string, fields []FieldInfo, line int) error {
	if rr.frozen {
		return fmt.Errorf("registry is frozen: cannot register %q", name)
	}
	if _, exists := rr.records[name]; exists {
		return fmt.Errorf("record %q declared twice", name)
	}
	info := &RecordInfo{
		Name:   name,
		Fields: fields,
		Line:   line,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := info.index[f.Name]; dup {
			return fmt.Errorf("record %q: field %q declared twice", name, f.Name)
		}
		info.index[f.Name] = i
	}
	rr.records[name] = info
	rr.order = append(rr.order, name)
	return nil
}

// Freeze marks the registry read-only. Function-level work must not start
// before the freeze.
func (rr *RecordRegistry) Freeze() { rr.frozen = true }

// Frozen reports whether the initialization barrier has passed.
func (rr *RecordRegistry) Frozen() bool { return rr.frozen }

// Lookup returns the record info for a declared name.
func (rr *RecordRegistry) Lookup(name string) (*RecordInfo, bool) {
	info, ok := rr.records[name]
	return info, ok
}

// Names returns all registered record names in declaration order.
func (rr *RecordRegistry) Names() []string {
	out := make([]string, len(rr.order))
	copy(out, rr.order)
	return out
}
