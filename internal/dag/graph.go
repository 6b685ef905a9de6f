package dag

import "sort"

// Graph is the directed graph of affected artifacts. Nodes are kept in
// lexical order and adjacency lists are sorted, so every traversal over a
// Graph is reproducible.
type Graph struct {
	nodes    []string
	index    map[string]int
	incoming [][]int
	outgoing [][]int
	edges    map[[2]int]struct{}
}

// Build assembles the graph from the propagated edges. Every modified
// artifact becomes a node even when no edge touches it. Build performs no
// cycle check; Schedule reports cycles.
func Build(edges []Edge, modified Set) *Graph {
	names := modified.Clone()
	for _, edge := range edges {
		names.Add(edge.From)
		names.Add(edge.To)
	}
	g := &Graph{
		nodes: names.Sorted(),
		edges: make(map[[2]int]struct{}, len(edges)),
	}
	g.index = make(map[string]int, len(g.nodes))
	for i, name := range g.nodes {
		g.index[name] = i
	}
	g.incoming = make([][]int, len(g.nodes))
	g.outgoing = make([][]int, len(g.nodes))
	for _, edge := range edges {
		from, to := g.index[edge.From], g.index[edge.To]
		key := [2]int{from, to}
		if _, dup := g.edges[key]; dup {
			continue
		}
		g.edges[key] = struct{}{}
		g.outgoing[from] = append(g.outgoing[from], to)
		g.incoming[to] = append(g.incoming[to], from)
	}
	for i := range g.nodes {
		sort.Ints(g.outgoing[i])
		sort.Ints(g.incoming[i])
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// Nodes returns the node identifiers in lexical order.
func (g *Graph) Nodes() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether from is a direct predecessor of to.
func (g *Graph) HasEdge(from, to string) bool {
	if g == nil {
		return false
	}
	fi, ok := g.index[from]
	if !ok {
		return false
	}
	ti, ok := g.index[to]
	if !ok {
		return false
	}
	_, ok = g.edges[[2]int{fi, ti}]
	return ok
}

// Edges returns every edge, sorted by (From, To).
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	out := make([]Edge, 0, len(g.edges))
	for from, targets := range g.outgoing {
		for _, to := range targets {
			out = append(out, Edge{From: g.nodes[from], To: g.nodes[to]})
		}
	}
	sortEdges(out)
	return out
}

// Predecessors returns the direct predecessors of id, sorted.
func (g *Graph) Predecessors(id string) []string {
	return g.neighbours(id, g.incomingOf)
}

// Successors returns the direct successors of id, sorted.
func (g *Graph) Successors(id string) []string {
	return g.neighbours(id, g.outgoingOf)
}

func (g *Graph) incomingOf(i int) []int { return g.incoming[i] }
func (g *Graph) outgoingOf(i int) []int { return g.outgoing[i] }

func (g *Graph) neighbours(id string, adj func(int) []int) []string {
	if g == nil {
		return nil
	}
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	idx := adj(i)
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for k, j := range idx {
		out[k] = g.nodes[j]
	}
	return out
}
