package report

import (
	"context"
	"fmt"
	"strings"

	"expdesign/domain/experiment"
)

// MarkdownWriter renders a design document as a markdown brief suitable
// for pasting into a wiki or pull request.
type MarkdownWriter struct{}

// NewMarkdownWriter creates a markdown report writer
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// ContentType returns the markdown MIME type
func (w *MarkdownWriter) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// FileExtension returns "md"
func (w *MarkdownWriter) FileExtension() string {
	return "md"
}

// Write renders the markdown document
func (w *MarkdownWriter) Write(ctx context.Context, doc *experiment.DesignDoc) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Experiment Design: %s\n\n", doc.Name)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	for _, field := range doc.ReportPayload() {
		fmt.Fprintf(&b, "| %s | %s |\n", escapePipes(field.Label), escapePipes(field.Value))
	}

	b.WriteString("\n## Traffic Allocation\n\n")
	b.WriteString("| Group | Daily Users | Users Needed | Days |\n|---|---|---|---|\n")
	for _, row := range doc.AllocationTable() {
		fmt.Fprintf(&b, "| %s | %.0f | %d | %d |\n", row.Group, row.DailyUsers, row.UsersNeeded, row.Days)
	}

	notes := append([]string{}, doc.SampleSize.Warnings...)
	notes = append(notes, doc.Runtime.Notes...)
	if len(notes) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	return []byte(b.String()), nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
