package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/kingrea/superdag/internal/dag"
)

// Miss is an artifact a provider found no definition for.
type Miss struct {
	Artifact string `json:"artifact" yaml:"artifact"`
	Provider string `json:"provider" yaml:"provider"`
}

// GraphDocument is the debug dump of one planning run.
type GraphDocument struct {
	Requirements map[string][]string `json:"requirements" yaml:"requirements"`
	Missing      []Miss              `json:"missing,omitempty" yaml:"missing,omitempty"`
	Edges        []dag.Edge          `json:"edges" yaml:"edges"`
	Batches      []Batch             `json:"batches" yaml:"batches"`
}

// NewGraphDocument assembles a GraphDocument. Requirement lists are sorted.
func NewGraphDocument(reqs dag.RequirementMap, misses [][2]string, edges []dag.Edge, plan dag.Plan) GraphDocument {
	doc := GraphDocument{
		Requirements: make(map[string][]string, len(reqs)),
		Edges:        append([]dag.Edge{}, edges...),
		Batches:      NewDocument(plan).Batches,
	}
	for id, set := range reqs {
		doc.Requirements[id] = set.Sorted()
	}
	for _, m := range misses {
		doc.Missing = append(doc.Missing, Miss{Artifact: m[0], Provider: m[1]})
	}
	return doc
}

// Graph writes doc in the requested format. The text form lists each
// dependent with its requirements, then the ordering edges and the batches.
func Graph(w io.Writer, format string, doc GraphDocument) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		_, err := io.WriteString(w, graphText(doc))
		return err
	case FormatYAML:
		return writeYAML(w, doc)
	case FormatJSON:
		return writeJSON(w, doc)
	default:
		return fmt.Errorf("render: unknown format %q", format)
	}
}

func graphText(doc GraphDocument) string {
	var b strings.Builder
	b.WriteString(batchStyle.Render("Requirements"))
	b.WriteString("\n")
	ids := dag.RequirementMap{}
	for id := range doc.Requirements {
		ids[id] = dag.NewSet(doc.Requirements[id]...)
	}
	for _, id := range ids.Dependents() {
		b.WriteString("  " + artifactStyle.Render(id) + "\n")
		for _, req := range doc.Requirements[id] {
			b.WriteString("    <- " + mutedStyle.Render(req) + "\n")
		}
	}
	b.WriteString(batchStyle.Render(fmt.Sprintf("Edges (%d)", len(doc.Edges))))
	b.WriteString("\n")
	for _, e := range doc.Edges {
		b.WriteString(fmt.Sprintf("  %s -> %s\n", e.From, e.To))
	}
	plan := make(dag.Plan, 0, len(doc.Batches))
	for _, batch := range doc.Batches {
		plan = append(plan, batch.Artifacts)
	}
	b.WriteString(batchStyle.Render(fmt.Sprintf("Plan (%d batches)", plan.Len())))
	b.WriteString("\n")
	b.WriteString(Text(plan))
	if len(doc.Missing) > 0 {
		b.WriteString(batchStyle.Render(fmt.Sprintf("Missing definitions (%d)", len(doc.Missing))))
		b.WriteString("\n")
		for _, m := range doc.Missing {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s (%s)", m.Artifact, m.Provider)) + "\n")
		}
	}
	return b.String()
}
