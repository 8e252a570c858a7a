package config

// SourceFileExt is the extension of AST interchange files produced by the
// upstream parser.
const SourceFileExt = ".ast.json"

// ConfigFileName is the default project configuration file.
const ConfigFileName = "cgen.yaml"

// Abstract collection annotation names recognized in the source subset.
const (
	ListTypeName  = "list"
	DictTypeName  = "dict"
	SetTypeName   = "set"
	StrTypeName   = "str"
	DequeTypeName = "deque"
)

// Primitive annotation names.
const (
	IntTypeName   = "int"
	FloatTypeName = "float"
	BoolTypeName  = "bool"
	NoneTypeName  = "None"
)

// Built-in function names of the source subset.
const (
	LenFuncName        = "len"
	RangeFuncName      = "range"
	IsInstanceFuncName = "isinstance"
	PrintFuncName      = "print"
)

// Container method names tracked by the usage optimizer.
var (
	InsertMethods = []string{"append", "insert", "add"}
	DeleteMethods = []string{"remove", "pop", "discard"}
	LookupMethods = []string{"get", "keys", "values", "items"}
)

// Standard includes emitted at the top of every translation unit.
var StandardIncludes = []string{"stdio.h", "stdlib.h", "stdbool.h"}
