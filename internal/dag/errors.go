package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is the kind reported when the affected graph is not acyclic.
var ErrCycle = errors.New("dependency cycle")

// GraphError describes a graph that cannot be scheduled.
type GraphError struct {
	Kind error
	// Nodes lists every artifact left unscheduled by the topological sort.
	Nodes []string
	// Path is one concrete cycle, first and last element equal.
	Path []string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if len(e.Path) > 0 {
		msg += ": " + strings.Join(e.Path, " -> ")
	}
	if len(e.Nodes) > 0 {
		msg += fmt.Sprintf(" (%d unschedulable: %s)", len(e.Nodes), strings.Join(e.Nodes, ", "))
	}
	return msg
}

func (e *GraphError) Unwrap() error { return e.Kind }

func cycleError(nodes, path []string) error {
	return &GraphError{Kind: ErrCycle, Nodes: nodes, Path: path}
}
