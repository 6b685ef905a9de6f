package dag

import "strings"

// Plan is an ordered list of batches. Batch zero is applied first and every
// artifact inside one batch can be applied in parallel.
type Plan [][]string

// Len returns the number of batches.
func (p Plan) Len() int { return len(p) }

// Size returns the number of artifacts across all batches.
func (p Plan) Size() int {
	n := 0
	for _, batch := range p {
		n += len(batch)
	}
	return n
}

// Index returns the batch holding id, or -1.
func (p Plan) Index(id string) int {
	for i, batch := range p {
		for _, candidate := range batch {
			if candidate == id {
				return i
			}
		}
	}
	return -1
}

// Artifacts flattens the plan in batch order.
func (p Plan) Artifacts() []string {
	out := make([]string, 0, p.Size())
	for _, batch := range p {
		out = append(out, batch...)
	}
	return out
}

// Clone returns a deep copy so callers never alias a retained plan.
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	for i, batch := range p {
		out[i] = append([]string(nil), batch...)
	}
	return out
}

// Filter keeps only identifiers starting with prefix. Batch order is
// preserved and batches left empty are dropped; p is not modified.
func (p Plan) Filter(prefix string) Plan {
	out := Plan{}
	for _, batch := range p {
		var kept []string
		for _, id := range batch {
			if strings.HasPrefix(id, prefix) {
				kept = append(kept, id)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// FilterPlan is the function form of Plan.Filter.
func FilterPlan(p Plan, prefix string) Plan {
	return p.Filter(prefix)
}
