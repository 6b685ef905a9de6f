package dag

import "container/heap"

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns the nodes so that every edge points forward. Ties
// are broken by lexical order. A graph with a cycle yields a *GraphError of
// kind ErrCycle.
func (g *Graph) TopologicalOrder() ([]string, error) {
	order := g.topoIndices()
	if len(order) != g.Len() {
		return nil, g.cycleError(order)
	}
	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = g.nodes[idx]
	}
	return out, nil
}

func (g *Graph) topoIndices() []int {
	if g == nil {
		return nil
	}
	indeg := make([]int, len(g.nodes))
	for i := range g.nodes {
		indeg[i] = len(g.incoming[i])
	}
	ready := &intMinHeap{}
	for i, d := range indeg {
		if d == 0 {
			*ready = append(*ready, i)
		}
	}
	heap.Init(ready)

	out := make([]int, 0, len(g.nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range g.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

func (g *Graph) cycleError(ordered []int) error {
	done := make([]bool, len(g.nodes))
	for _, idx := range ordered {
		done[idx] = true
	}
	var stuck []string
	for i, name := range g.nodes {
		if !done[i] {
			stuck = append(stuck, name)
		}
	}
	return cycleError(stuck, g.findCycle())
}

// findCycle returns one cycle found by a DFS over nodes in lexical order, or
// nil when the graph is acyclic.
func (g *Graph) findCycle() []string {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.nodes))
	parent := make([]int, len(g.nodes))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.outgoing[u] {
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// back edge u -> v closes v ... u -> v
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}
	for i := range g.nodes {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}
	out := make([]string, len(cycle))
	for i := range cycle {
		out[i] = g.nodes[cycle[len(cycle)-1-i]]
	}
	return out
}
