package ports

import (
	"context"

	"expdesign/domain/experiment"
)

// ReportWriter renders a design's flat report payload into a static
// document. Pure formatting sinks: they never recompute statistics.
type ReportWriter interface {
	// Write renders the payload and returns the document bytes
	Write(ctx context.Context, doc *experiment.DesignDoc) ([]byte, error)

	// ContentType returns the MIME type of the rendered document
	ContentType() string

	// FileExtension returns the suggested filename extension, without dot
	FileExtension() string
}
