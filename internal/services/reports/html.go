package reports

import (
	"bytes"
	"fmt"
	"html"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts assessment markdown into downloadable report formats
type Renderer struct {
	logger arbor.ILogger
	md     goldmark.Markdown
}

// NewRenderer creates the report renderer
func NewRenderer(logger arbor.ILogger) *Renderer {
	return &Renderer{
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		),
	}
}

// RenderHTML converts assessment markdown into a standalone HTML page
func (r *Renderer) RenderHTML(markdown, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to render report HTML: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Georgia, serif; max-width: 56em; margin: 2em auto; padding: 0 1em; color: #1a1a1a; }
h1, h2, h3, h4 { font-family: Helvetica, Arial, sans-serif; }
blockquote { border-left: 3px solid #888; margin-left: 0; padding-left: 1em; color: #444; }
code { background: #f4f4f4; padding: 0.1em 0.3em; }
</style>
</head>
<body>
%s
</body>
</html>
`, html.EscapeString(title), body.String())

	r.logger.Debug().Int("bytes", page.Len()).Msg("Report HTML rendered")
	return page.Bytes(), nil
}
