package memory

import (
	"sort"
	"strings"
)

// Graph is a directed depends-on graph over tracked allocations.
type Graph struct {
	order []string
	edges map[string][]string
	known map[string]bool
}

func NewGraph() *Graph {
	return &Graph{
		edges: make(map[string][]string),
		known: make(map[string]bool),
	}
}

// AddDependency records a depends-on edge. Duplicate edges collapse.
func (g *Graph) AddDependency(from, to string) {
	g.node(from)
	g.node(to)
	for _, t := range g.edges[from] {
		if t == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

func (g *Graph) node(name string) {
	if !g.known[name] {
		g.known[name] = true
		g.order = append(g.order, name)
	}
}

// DetectCycles finds every directed cycle by DFS over the path stack.
// Each cycle is reported exactly once in canonical rotation, regardless of
// which node the search entered it from.
func (g *Graph) DetectCycles() [][]string {
	var cycles [][]string
	seen := make(map[string]bool)

	onPath := make(map[string]int) // node -> index on the current path
	var path []string

	var visit func(string)
	visit = func(n string) {
		onPath[n] = len(path)
		path = append(path, n)

		for _, next := range g.edges[n] {
			if at, ok := onPath[next]; ok {
				cycle := canonicalize(path[at:])
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			visit(next)
		}

		path = path[:len(path)-1]
		delete(onPath, n)
	}

	starts := append([]string(nil), g.order...)
	sort.Strings(starts)
	for _, n := range starts {
		visit(n)
	}
	return cycles
}

// canonicalize rotates a cycle so its lexicographically smallest node
// comes first.
func canonicalize(cycle []string) []string {
	min := 0
	for i, n := range cycle {
		if n < cycle[min] {
			min = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}
