package dag

// Propagate walks the requirement map outward from the modified artifacts and
// returns the edges that justify every affected artifact, sorted and without
// duplicates.
//
// Each round intersects every artifact's requirements with the current
// frontier. An artifact that was not supplied as modified is never triggered
// through an excluded requirement, unless that requirement was itself
// supplied as modified. Artifacts enter the frontier at most once, but every
// round still records edges from newly affected requirements so that ordering
// between affected artifacts is kept.
func Propagate(reqs RequirementMap, modified, exclude Set) []Edge {
	if len(modified) == 0 {
		return nil
	}
	blocked := exclude.Difference(modified)
	dependents := reqs.Dependents()

	seen := modified.Clone()
	frontier := modified.Clone()
	recorded := map[Edge]struct{}{}
	for len(frontier) > 0 {
		next := Set{}
		for _, artifact := range dependents {
			trigger := reqs[artifact].Intersect(frontier)
			if !modified.Has(artifact) {
				trigger = trigger.Difference(blocked)
			}
			if len(trigger) == 0 {
				continue
			}
			for dep := range trigger {
				recorded[Edge{From: dep, To: artifact}] = struct{}{}
			}
			if !seen.Has(artifact) {
				seen.Add(artifact)
				next.Add(artifact)
			}
		}
		frontier = next
	}

	edges := make([]Edge, 0, len(recorded))
	for edge := range recorded {
		edges = append(edges, edge)
	}
	sortEdges(edges)
	return edges
}

// Affected returns every artifact that appears in the plan for the given
// inputs: the modified set plus everything reached by propagation.
func Affected(reqs RequirementMap, modified, exclude Set) Set {
	out := modified.Clone()
	for _, edge := range Propagate(reqs, modified, exclude) {
		out.Add(edge.From)
		out.Add(edge.To)
	}
	return out
}
