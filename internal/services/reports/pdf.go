package reports

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// RenderPDF converts assessment markdown into a PDF document. The renderer
// covers the node kinds the synthesizer emits: headings, paragraphs,
// emphasis, lists, and blockquoted citations.
func (r *Renderer) RenderPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)

	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	walker := &pdfWalker{pdf: pdf, source: source}
	if err := ast.Walk(doc, walker.walk); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write report PDF: %w", err)
	}

	r.logger.Debug().Int("bytes", buf.Len()).Msg("Report PDF rendered")
	return buf.Bytes(), nil
}

type pdfWalker struct {
	pdf       *fpdf.Fpdf
	source    []byte
	bold      bool
	italic    bool
	listDepth int
}

func (w *pdfWalker) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			w.pdf.Ln(5)
			size := 15.0 - float64(node.Level)
			if size < 10 {
				size = 10
			}
			w.pdf.SetFont("Helvetica", "B", size)
		} else {
			w.pdf.Ln(6)
			w.resetFont()
		}
	case *ast.Paragraph:
		if !entering {
			w.pdf.Ln(6)
		}
	case *ast.Text:
		if entering {
			w.pdf.Write(5, string(node.Segment.Value(w.source)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.pdf.Write(5, " ")
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.resetFont()
	case *ast.List:
		if entering {
			w.listDepth++
		} else {
			w.listDepth--
			if w.listDepth == 0 {
				w.pdf.Ln(2)
			}
		}
	case *ast.ListItem:
		if entering {
			w.pdf.Ln(5)
			w.pdf.SetX(12 + float64(w.listDepth)*4)
			w.pdf.Write(5, "- ")
		}
	case *ast.Blockquote:
		if entering {
			w.pdf.Ln(2)
			w.pdf.SetTextColor(90, 90, 90)
			w.pdf.SetLeftMargin(18)
		} else {
			w.pdf.SetTextColor(0, 0, 0)
			w.pdf.SetLeftMargin(12)
			w.pdf.Ln(2)
		}
	case *ast.ThematicBreak:
		if entering {
			w.pdf.Ln(3)
			w.pdf.Line(12, w.pdf.GetY(), 198, w.pdf.GetY())
			w.pdf.Ln(3)
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWalker) resetFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont("Helvetica", style, 10)
}
