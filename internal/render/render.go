// Package render writes execution plans and requirement graphs for humans
// and machines.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/superdag/internal/dag"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var (
	batchStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	artifactStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Batch is one level of a plan in document form.
type Batch struct {
	Index     int      `json:"index" yaml:"index"`
	Artifacts []string `json:"artifacts" yaml:"artifacts"`
}

// Document is the serialized form of a plan.
type Document struct {
	Batches []Batch `json:"batches" yaml:"batches"`
}

// NewDocument numbers the batches of plan from 1.
func NewDocument(plan dag.Plan) Document {
	doc := Document{Batches: make([]Batch, 0, len(plan))}
	for i, batch := range plan {
		doc.Batches = append(doc.Batches, Batch{
			Index:     i + 1,
			Artifacts: append([]string{}, batch...),
		})
	}
	return doc
}

// Plan writes plan to w in the requested format.
func Plan(w io.Writer, format string, plan dag.Plan) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		_, err := io.WriteString(w, Text(plan))
		return err
	case FormatYAML:
		return writeYAML(w, NewDocument(plan))
	case FormatJSON:
		return writeJSON(w, NewDocument(plan))
	default:
		return fmt.Errorf("render: unknown format %q", format)
	}
}

// Text renders plan as a styled, human-readable listing.
func Text(plan dag.Plan) string {
	if plan.Len() == 0 {
		return mutedStyle.Render("Nothing to apply.") + "\n"
	}
	var b strings.Builder
	for i, batch := range plan {
		b.WriteString(batchStyle.Render(fmt.Sprintf("Batch %d", i+1)))
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d)", len(batch))))
		b.WriteString("\n")
		for _, id := range batch {
			b.WriteString("  - ")
			b.WriteString(artifactStyle.Render(id))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render: encode yaml: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render: encode json: %w", err)
	}
	return nil
}
