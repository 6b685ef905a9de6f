package dag

import "sort"

// Schedule partitions the graph into batches. Nodes are visited in
// topological order and each one is pulled towards batch zero until the batch
// below it holds one of its direct predecessors, so for every edge the
// dependency lands in a strictly earlier batch than the dependent.
func Schedule(g *Graph) (Plan, error) {
	order := g.topoIndices()
	if len(order) != g.Len() {
		return nil, g.cycleError(order)
	}

	// Node at topological position p never lands above batch p, so len(order)
	// slots are enough.
	levels := make([][]int, len(order))
	for pos, node := range order {
		candidate := pos
		for candidate >= 0 && !g.anyPredecessorIn(node, levels[candidate]) {
			candidate--
		}
		levels[candidate+1] = append(levels[candidate+1], node)
	}

	plan := make(Plan, 0, len(levels))
	for _, level := range levels {
		if len(level) == 0 {
			continue
		}
		batch := make([]string, len(level))
		for i, idx := range level {
			batch[i] = g.nodes[idx]
		}
		sort.Strings(batch)
		plan = append(plan, batch)
	}
	return plan, nil
}

func (g *Graph) anyPredecessorIn(node int, batch []int) bool {
	for _, candidate := range batch {
		if _, ok := g.edges[[2]int{candidate, node}]; ok {
			return true
		}
	}
	return false
}

// ComputePlan runs propagation, graph construction and scheduling in one
// step. It is a pure function of its inputs.
func ComputePlan(reqs RequirementMap, modified, exclude Set) (Plan, error) {
	edges := Propagate(reqs, modified, exclude)
	return Schedule(Build(edges, modified))
}
