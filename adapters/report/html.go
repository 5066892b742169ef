package report

import (
	"context"
	"fmt"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"expdesign/domain/experiment"
)

// HTMLWriter renders the markdown brief to a standalone HTML page for
// in-browser preview before download.
type HTMLWriter struct {
	md *MarkdownWriter
}

// NewHTMLWriter creates an HTML report writer
func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{md: NewMarkdownWriter()}
}

// ContentType returns the HTML MIME type
func (w *HTMLWriter) ContentType() string {
	return "text/html; charset=utf-8"
}

// FileExtension returns "html"
func (w *HTMLWriter) FileExtension() string {
	return "html"
}

// Write renders the markdown brief and converts it to a full HTML page
func (w *HTMLWriter) Write(ctx context.Context, doc *experiment.DesignDoc) ([]byte, error) {
	md, err := w.md.Write(ctx, doc)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.ToHTML(md, p, renderer)

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
</style>
</head>
<body>
%s</body>
</html>
`, doc.Name, body)

	return []byte(page), nil
}
