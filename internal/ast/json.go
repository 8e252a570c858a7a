package ast

import (
	"encoding/json"
	"fmt"
)

// The interchange encoding wraps every statement and expression in an
// envelope with a "kind" discriminator:
//
//	{"kind": "assign", "target": {...}, "value": {...}, "line": 3}
//
// DecodeModule is the single entry point used by the CLI; the core itself
// never touches serialized form.

// DecodeModule parses a JSON-encoded module produced by the upstream parser.
func DecodeModule(data []byte) (*Module, error) {
	var raw struct {
		Name      string            `json:"name"`
		Classes   []*ClassDef       `json:"classes"`
		Functions []json.RawMessage `json:"functions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding module: %w", err)
	}
	mod := &Module{Name: raw.Name, Classes: raw.Classes}
	for i, fn := range raw.Functions {
		decoded, err := decodeFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("decoding function %d: %w", i, err)
		}
		mod.Functions = append(mod.Functions, decoded)
	}
	return mod, nil
}

func decodeFunction(data json.RawMessage) (*FunctionDef, error) {
	var raw struct {
		Name    string            `json:"name"`
		Params  []*Param          `json:"params"`
		Returns *TypeAnnotation   `json:"returns"`
		Body    []json.RawMessage `json:"body"`
		Line    int               `json:"line"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	fn := &FunctionDef{Name: raw.Name, Params: raw.Params, Returns: raw.Returns, Line: raw.Line}
	body, err := decodeStatements(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", raw.Name, err)
	}
	fn.Body = body
	return fn, nil
}

func decodeStatements(raws []json.RawMessage) ([]Statement, error) {
	stmts := make([]Statement, 0, len(raws))
	for _, r := range raws {
		s, err := DecodeStatement(r)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// DecodeStatement parses a single statement envelope.
func DecodeStatement(data json.RawMessage) (Statement, error) {
	var kind struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, err
	}

	switch kind.Kind {
	case "assign":
		var raw struct {
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		target, err := DecodeExpression(raw.Target)
		if err != nil {
			return nil, err
		}
		value, err := DecodeExpression(raw.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStatement{Target: target, Value: value, Line: raw.Line}, nil

	case "ann_assign":
		var raw struct {
			Target     string          `json:"target"`
			Annotation *TypeAnnotation `json:"annotation"`
			Value      json.RawMessage `json:"value"`
			Line       int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		stmt := &AnnAssignStatement{Target: raw.Target, Annotation: raw.Annotation, Line: raw.Line}
		if len(raw.Value) > 0 {
			value, err := DecodeExpression(raw.Value)
			if err != nil {
				return nil, err
			}
			stmt.Value = value
		}
		return stmt, nil

	case "aug_assign":
		var raw struct {
			Target string          `json:"target"`
			Op     string          `json:"op"`
			Value  json.RawMessage `json:"value"`
			Line   int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		value, err := DecodeExpression(raw.Value)
		if err != nil {
			return nil, err
		}
		return &AugAssignStatement{Target: raw.Target, Op: raw.Op, Value: value, Line: raw.Line}, nil

	case "if":
		var raw struct {
			Test json.RawMessage   `json:"test"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else"`
			Line int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := DecodeExpression(raw.Test)
		if err != nil {
			return nil, err
		}
		then, err := decodeStatements(raw.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStatements(raw.Else)
		if err != nil {
			return nil, err
		}
		return &IfStatement{Test: test, Then: then, Else: els, Line: raw.Line}, nil

	case "while":
		var raw struct {
			Test json.RawMessage   `json:"test"`
			Body []json.RawMessage `json:"body"`
			Line int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := DecodeExpression(raw.Test)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(raw.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStatement{Test: test, Body: body, Line: raw.Line}, nil

	case "for_range":
		var raw struct {
			Var   string            `json:"var"`
			Count json.RawMessage   `json:"count"`
			Body  []json.RawMessage `json:"body"`
			Line  int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		count, err := DecodeExpression(raw.Count)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ForRangeStatement{Var: raw.Var, Count: count, Body: body, Line: raw.Line}, nil

	case "for_each":
		var raw struct {
			Var      string            `json:"var"`
			Iterable json.RawMessage   `json:"iterable"`
			Body     []json.RawMessage `json:"body"`
			Line     int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		iterable, err := DecodeExpression(raw.Iterable)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(raw.Body)
		if err != nil {
			return nil, err
		}
		return &ForEachStatement{Var: raw.Var, Iterable: iterable, Body: body, Line: raw.Line}, nil

	case "return":
		var raw struct {
			Value json.RawMessage `json:"value"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		stmt := &ReturnStatement{Line: raw.Line}
		if len(raw.Value) > 0 {
			value, err := DecodeExpression(raw.Value)
			if err != nil {
				return nil, err
			}
			stmt.Value = value
		}
		return stmt, nil

	case "expr":
		var raw struct {
			X    json.RawMessage `json:"x"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		x, err := DecodeExpression(raw.X)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{X: x, Line: raw.Line}, nil
	}

	return nil, fmt.Errorf("unknown statement kind %q", kind.Kind)
}

// DecodeExpression parses a single expression envelope.
func DecodeExpression(data json.RawMessage) (Expression, error) {
	var kind struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, err
	}

	switch kind.Kind {
	case "int":
		var raw IntLiteral
		return &raw, json.Unmarshal(data, &raw)
	case "float":
		var raw FloatLiteral
		return &raw, json.Unmarshal(data, &raw)
	case "bool":
		var raw BoolLiteral
		return &raw, json.Unmarshal(data, &raw)
	case "string":
		var raw StringLiteral
		return &raw, json.Unmarshal(data, &raw)
	case "name":
		var raw Name
		return &raw, json.Unmarshal(data, &raw)
	case "type_test":
		var raw TypeTestExpr
		return &raw, json.Unmarshal(data, &raw)

	case "attribute":
		var raw struct {
			X    json.RawMessage `json:"x"`
			Name string          `json:"name"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		x, err := DecodeExpression(raw.X)
		if err != nil {
			return nil, err
		}
		return &AttributeExpr{X: x, Name: raw.Name, Line: raw.Line}, nil

	case "binary", "compare":
		var raw struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		left, err := DecodeExpression(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodeExpression(raw.Right)
		if err != nil {
			return nil, err
		}
		if kind.Kind == "binary" {
			return &BinaryExpr{Op: raw.Op, Left: left, Right: right, Line: raw.Line}, nil
		}
		return &CompareExpr{Op: raw.Op, Left: left, Right: right, Line: raw.Line}, nil

	case "unary":
		var raw struct {
			Op   string          `json:"op"`
			X    json.RawMessage `json:"x"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		x, err := DecodeExpression(raw.X)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: raw.Op, X: x, Line: raw.Line}, nil

	case "ternary":
		var raw struct {
			Test json.RawMessage `json:"test"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
			Line int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		test, err := DecodeExpression(raw.Test)
		if err != nil {
			return nil, err
		}
		then, err := DecodeExpression(raw.Then)
		if err != nil {
			return nil, err
		}
		els, err := DecodeExpression(raw.Else)
		if err != nil {
			return nil, err
		}
		return &TernaryExpr{Test: test, Then: then, Else: els, Line: raw.Line}, nil

	case "call":
		var raw struct {
			Func string            `json:"func"`
			Args []json.RawMessage `json:"args"`
			Line int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw.Args)
		if err != nil {
			return nil, err
		}
		return &CallExpr{Func: raw.Func, Args: args, Line: raw.Line}, nil

	case "method_call":
		var raw struct {
			Recv   string            `json:"recv"`
			Method string            `json:"method"`
			Args   []json.RawMessage `json:"args"`
			Line   int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw.Args)
		if err != nil {
			return nil, err
		}
		return &MethodCallExpr{Recv: raw.Recv, Method: raw.Method, Args: args, Line: raw.Line}, nil

	case "subscript":
		var raw struct {
			X     json.RawMessage `json:"x"`
			Index json.RawMessage `json:"index"`
			Line  int             `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		x, err := DecodeExpression(raw.X)
		if err != nil {
			return nil, err
		}
		index, err := DecodeExpression(raw.Index)
		if err != nil {
			return nil, err
		}
		return &SubscriptExpr{X: x, Index: index, Line: raw.Line}, nil

	case "list":
		var raw struct {
			Elems []json.RawMessage `json:"elems"`
			Line  int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elems, err := decodeExpressions(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &ListLiteral{Elems: elems, Line: raw.Line}, nil

	case "dict":
		var raw struct {
			Keys   []json.RawMessage `json:"keys"`
			Values []json.RawMessage `json:"values"`
			Line   int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		keys, err := decodeExpressions(raw.Keys)
		if err != nil {
			return nil, err
		}
		values, err := decodeExpressions(raw.Values)
		if err != nil {
			return nil, err
		}
		if len(keys) != len(values) {
			return nil, fmt.Errorf("dict literal: %d keys, %d values", len(keys), len(values))
		}
		return &DictLiteral{Keys: keys, Values: values, Line: raw.Line}, nil

	case "set":
		var raw struct {
			Elems []json.RawMessage `json:"elems"`
			Line  int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		elems, err := decodeExpressions(raw.Elems)
		if err != nil {
			return nil, err
		}
		return &SetLiteral{Elems: elems, Line: raw.Line}, nil

	case "record":
		var raw struct {
			Type   string            `json:"type"`
			Fields []string          `json:"fields"`
			Values []json.RawMessage `json:"values"`
			Line   int               `json:"line"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		values, err := decodeExpressions(raw.Values)
		if err != nil {
			return nil, err
		}
		if len(raw.Fields) != len(values) {
			return nil, fmt.Errorf("record literal %s: %d fields, %d values", raw.Type, len(raw.Fields), len(values))
		}
		return &RecordLiteral{Type: raw.Type, Fields: raw.Fields, Values: values, Line: raw.Line}, nil
	}

	return nil, fmt.Errorf("unknown expression kind %q", kind.Kind)
}

func decodeExpressions(raws []json.RawMessage) ([]Expression, error) {
	exprs := make([]Expression, 0, len(raws))
	for _, r := range raws {
		e, err := DecodeExpression(r)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}
