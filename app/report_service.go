package app

import (
	"context"

	"expdesign/domain/experiment"
	"expdesign/internal/errors"
	"expdesign/ports"
)

// RenderedReport is one exported design document
type RenderedReport struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ReportService dispatches design documents to registered report sinks
// by format name (e.g. "xlsx", "md", "html").
type ReportService struct {
	writers map[string]ports.ReportWriter
}

// NewReportService creates a report service with the given sinks
func NewReportService(writers map[string]ports.ReportWriter) *ReportService {
	return &ReportService{writers: writers}
}

// Formats lists the registered format names
func (s *ReportService) Formats() []string {
	out := make([]string, 0, len(s.writers))
	for name := range s.writers {
		out = append(out, name)
	}
	return out
}

// Render produces the document for one design in the requested format
func (s *ReportService) Render(ctx context.Context, format string, doc *experiment.DesignDoc) (*RenderedReport, error) {
	writer, ok := s.writers[format]
	if !ok {
		return nil, errors.NotFound("report format " + format)
	}

	data, err := writer.Write(ctx, doc)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering %s report failed", format)
	}

	return &RenderedReport{
		Data:        data,
		ContentType: writer.ContentType(),
		Filename:    "experiment-design." + writer.FileExtension(),
	}, nil
}
