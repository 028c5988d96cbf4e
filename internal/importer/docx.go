package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docgen/internal/outline"
	"github.com/dgallion1/docgen/internal/render"
	"github.com/fumiama/go-docx"
)

// DOCXImporter handles .docx files. Heading styles set nesting; a leading
// Title paragraph names the document. The table-of-contents placeholder
// written by the renderer is skipped so exported files import cleanly.
type DOCXImporter struct{}

func (p *DOCXImporter) Import(r io.Reader, filename string) (*outline.Section, error) {
	// go-docx needs a ReaderAt+size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(baseTitle(filename))
	seenHeading := false

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}

		style := paragraphStyle(para)
		if strings.EqualFold(style, "Title") && !seenHeading {
			b.root.Title = text
			continue
		}
		if level := docxHeadingLevel(style); level > 0 {
			seenHeading = true
			if text == render.TOCHeading {
				continue
			}
			b.heading(level, text)
			continue
		}
		if text == render.TOCHint {
			continue
		}
		b.paragraph(text)
	}
	return b.result(), nil
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel accepts both style ids ("Heading2") and names
// ("heading 2").
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") || len(s) != len("heading")+1 {
		return 0
	}
	d := s[len(s)-1]
	if d < '1' || d > '9' {
		return 0
	}
	return int(d - '0')
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch v := rc.(type) {
			case *docx.Text:
				buf.WriteString(v.Text)
			case *docx.Tab:
				buf.WriteByte('\t')
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
