package containers

import (
	"github.com/cgenlang/cgen/internal/ast"
	"github.com/cgenlang/cgen/internal/config"
)

// UsageProfile records how a container variable is used across one
// function body. Built once by a syntactic pass, read-only afterwards.
type UsageProfile struct {
	RandomAccess   bool
	FrequentInsert bool
	FrequentDelete bool
	SortedAccess   bool
	FrequentLookup bool
	KeyValue       bool

	AccessCount       int
	ModificationCount int
}

var (
	insertMethods = methodSet(config.InsertMethods)
	deleteMethods = methodSet(config.DeleteMethods)
	lookupMethods = methodSet(config.LookupMethods)
)

func methodSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// AnalyzeUsage profiles every variable of a function by syntactic shape:
// subscripts count as random access, adding calls as insertion, removing
// calls as deletion, key/value queries as lookup. The pass has no
// dependency on inference.
func AnalyzeUsage(fn *ast.FunctionDef) map[string]*UsageProfile {
	a := &usageAnalyzer{profiles: make(map[string]*UsageProfile)}
	a.walkBlock(fn.Body)
	return a.profiles
}

type usageAnalyzer struct {
	profiles map[string]*UsageProfile
}

func (a *usageAnalyzer) profile(name string) *UsageProfile {
	p, ok := a.profiles[name]
	if !ok {
		p = &UsageProfile{}
		a.profiles[name] = p
	}
	return p
}

func (a *usageAnalyzer) walkBlock(stmts []ast.Statement) {
	for _, s := range stmts {
		a.walkStmt(s)
	}
}

func (a *usageAnalyzer) walkStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.AssignStatement:
		a.walkExpr(n.Target)
		a.walkExpr(n.Value)
	case *ast.AnnAssignStatement:
		if n.Value != nil {
			a.walkExpr(n.Value)
		}
	case *ast.AugAssignStatement:
		a.walkExpr(n.Value)
	case *ast.IfStatement:
		a.walkExpr(n.Test)
		a.walkBlock(n.Then)
		a.walkBlock(n.Else)
	case *ast.WhileStatement:
		a.walkExpr(n.Test)
		a.walkBlock(n.Body)
	case *ast.ForRangeStatement:
		a.walkExpr(n.Count)
		a.walkBlock(n.Body)
	case *ast.ForEachStatement:
		a.walkExpr(n.Iterable)
		a.walkBlock(n.Body)
	case *ast.ReturnStatement:
		if n.Value != nil {
			a.walkExpr(n.Value)
		}
	case *ast.ExpressionStatement:
		a.walkExpr(n.X)
	}
}

func (a *usageAnalyzer) walkExpr(e ast.Expression) {
	switch n := e.(type) {
	case *ast.SubscriptExpr:
		if name, ok := n.X.(*ast.Name); ok {
			p := a.profile(name.Value)
			p.RandomAccess = true
			p.AccessCount++
		} else {
			a.walkExpr(n.X)
		}
		a.walkExpr(n.Index)

	case *ast.MethodCallExpr:
		p := a.profile(n.Recv)
		switch {
		case insertMethods[n.Method]:
			p.FrequentInsert = true
			p.ModificationCount++
		case deleteMethods[n.Method]:
			p.FrequentDelete = true
			p.ModificationCount++
		case lookupMethods[n.Method]:
			p.FrequentLookup = true
			p.KeyValue = true
			p.AccessCount++
		case n.Method == "sort":
			p.SortedAccess = true
			p.ModificationCount++
		}
		for _, arg := range n.Args {
			a.walkExpr(arg)
		}

	case *ast.BinaryExpr:
		a.walkExpr(n.Left)
		a.walkExpr(n.Right)
	case *ast.UnaryExpr:
		a.walkExpr(n.X)
	case *ast.CompareExpr:
		a.walkExpr(n.Left)
		a.walkExpr(n.Right)
	case *ast.TernaryExpr:
		a.walkExpr(n.Test)
		a.walkExpr(n.Then)
		a.walkExpr(n.Else)
	case *ast.AttributeExpr:
		a.walkExpr(n.X)
	case *ast.CallExpr:
		// Passing a container to sorted() demands an ordered strategy.
		if n.Func == "sorted" {
			for _, arg := range n.Args {
				if name, ok := arg.(*ast.Name); ok {
					a.profile(name.Value).SortedAccess = true
				}
			}
		}
		for _, arg := range n.Args {
			a.walkExpr(arg)
		}
	case *ast.ListLiteral:
		for _, el := range n.Elems {
			a.walkExpr(el)
		}
	case *ast.SetLiteral:
		for _, el := range n.Elems {
			a.walkExpr(el)
		}
	case *ast.DictLiteral:
		for i := range n.Keys {
			a.walkExpr(n.Keys[i])
			a.walkExpr(n.Values[i])
		}
	case *ast.RecordLiteral:
		for _, v := range n.Values {
			a.walkExpr(v)
		}
	}
}

// Choose applies the fixed decision table mapping an abstract kind and a
// usage profile to a concrete strategy. Ties default to the unordered
// hash variant.
func Choose(kind AbstractKind, p *UsageProfile) ConcreteKind {
	if p == nil {
		p = &UsageProfile{}
	}
	switch kind {
	case Sequence:
		if p.FrequentInsert && p.RandomAccess {
			return Deque
		}
		return Vec
	case Mapping:
		if p.SortedAccess {
			return SortedMap
		}
		return HashMap
	case UniqueSet:
		if p.SortedAccess {
			return SortedSet
		}
		return HashSet
	case Text:
		return Str
	}
	return Vec
}
