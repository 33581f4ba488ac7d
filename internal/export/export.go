package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ahollis/retro/internal/models"
)

// Renderer turns a summary's markdown content into a standalone HTML page.
type Renderer struct {
	parser   goldmark.Markdown
	template *template.Template
}

type pageData struct {
	Title   string
	Period  string
	Content template.HTML
}

var pageTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      max-width: 46rem;
      margin: 0 auto;
      padding: 2rem 1.25rem;
      font-family: Georgia, serif;
      line-height: 1.6;
      color: #222;
    }
    header p.meta { color: #777; font-size: 0.9rem; }
    h1, h2 { line-height: 1.25; }
    ul { padding-left: 1.25rem; }
  </style>
</head>
<body>
  <header>
    <p class="meta">{{.Period}}</p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

// NewRenderer builds a renderer with GFM extensions enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithUnsafe(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: pageTemplate,
	}
}

// RenderHTML writes the summary as a complete HTML document.
func (r *Renderer) RenderHTML(summary models.Summary, w io.Writer) error {
	var body bytes.Buffer
	if err := r.parser.Convert([]byte(summary.Content), &body); err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	data := pageData{
		Title:   pageTitle(summary),
		Period:  periodLabel(summary),
		Content: template.HTML(body.String()),
	}
	if err := r.template.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// RenderMarkdown writes the raw markdown content, for piping into other tools.
func (r *Renderer) RenderMarkdown(summary models.Summary, w io.Writer) error {
	if _, err := io.WriteString(w, summary.Content); err != nil {
		return err
	}
	if !strings.HasSuffix(summary.Content, "\n") {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

func pageTitle(summary models.Summary) string {
	// The first markdown heading is the natural title
	for _, line := range strings.Split(summary.Content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimPrefix(line, "# ")
		}
	}
	return fmt.Sprintf("%s summary", summary.Type)
}

func periodLabel(summary models.Summary) string {
	return fmt.Sprintf("%s · %s to %s", summary.Type, summary.StartDate, summary.EndDate)
}
