package dag

import "sort"

// Set is an unordered collection of artifact identifiers.
type Set map[string]struct{}

// NewSet builds a set from the provided identifiers. Empty identifiers are
// ignored.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is a member of the set. A nil set has no members.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy. Cloning a nil set yields an empty set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns the members present in both sets.
func (s Set) Intersect(other Set) Set {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := Set{}
	for id := range small {
		if large.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set, len(s))
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RequirementMap maps an artifact to the artifacts it depends on. Only
// artifacts with at least one requirement need to be present.
type RequirementMap map[string]Set

// Dependents returns the artifacts with a non-empty requirement set, sorted.
func (m RequirementMap) Dependents() []string {
	out := make([]string, 0, len(m))
	for id, reqs := range m {
		if len(reqs) == 0 {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the map.
func (m RequirementMap) Clone() RequirementMap {
	if m == nil {
		return nil
	}
	out := make(RequirementMap, len(m))
	for id, reqs := range m {
		out[id] = reqs.Clone()
	}
	return out
}

// Edge orders two artifacts: From must be applied in an earlier batch than To.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}
