// Package render writes an outline as a formatted DOCX document.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docgen/internal/outline"
	"github.com/dgallion1/docgen/internal/prompt"
	"github.com/fumiama/go-docx"
	"github.com/google/uuid"
)

// ErrOutputMissing is returned when the document was written without error
// but the file is not on disk afterwards.
var ErrOutputMissing = errors.New("docx not created")

const (
	TOCHeading = "Оглавление"
	TOCHint    = "Сформировать в Word: Ссылки → Оглавление (таблица содержимого)."

	twipsPerCm     = 1440 / 2.54
	hangingIndent  = 567 // 1 cm
	singleLineTwip = 240
)

// ExportRequest is the body of an export call.
type ExportRequest struct {
	Topic       string           `json:"topic"`
	Essay       *outline.Section `json:"essay"`
	IncludeTOC  bool             `json:"include_toc"`
	LineSpacing float64          `json:"line_spacing"`
	FontName    string           `json:"font_name"`
	FontSizePt  int              `json:"font_size_pt"`
	MarginsCm   float64          `json:"margins_cm"`
	DocType     prompt.DocType   `json:"doc_type"`
	PageTarget  int              `json:"page_target"`
}

// DefaultExportRequest returns the defaults applied to fields a caller omits.
func DefaultExportRequest() ExportRequest {
	return ExportRequest{
		IncludeTOC:  true,
		LineSpacing: 1.15,
		FontName:    "Times New Roman",
		FontSizePt:  12,
		MarginsCm:   2.0,
		DocType:     prompt.DocReferat,
		PageTarget:  8,
	}
}

func (r ExportRequest) Validate() error {
	if r.Essay == nil {
		return errors.New("essay is required")
	}
	if !r.DocType.Valid() {
		return fmt.Errorf("unknown doc_type %q", r.DocType)
	}
	if r.LineSpacing <= 0 || r.LineSpacing > 5 {
		return fmt.Errorf("line_spacing must be in (0, 5], got %v", r.LineSpacing)
	}
	if r.FontSizePt < 1 || r.FontSizePt > 200 {
		return fmt.Errorf("font_size_pt must be in [1, 200], got %d", r.FontSizePt)
	}
	if r.MarginsCm < 0 || r.MarginsCm > 10 {
		return fmt.Errorf("margins_cm must be in [0, 10], got %v", r.MarginsCm)
	}
	if strings.TrimSpace(r.FontName) == "" {
		return errors.New("font_name is required")
	}
	return nil
}

// Error reports a failed render step.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "docx " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Renderer writes documents into a single output directory.
type Renderer struct {
	outDir string
	log    *slog.Logger
}

func New(outDir string, log *slog.Logger) *Renderer {
	if outDir == "" {
		outDir = "output"
	}
	return &Renderer{outDir: outDir, log: log}
}

// OutputDir returns the directory documents are written to.
func (r *Renderer) OutputDir() string { return r.outDir }

// Render builds the document for req and saves it as
// <outDir>/<doc_type>_<uuid>.docx, returning the file path.
func (r *Renderer) Render(req ExportRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Op: "validate", Err: err}
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", &Error{Op: "create output dir", Err: err}
	}

	doc := Build(req)
	name := fmt.Sprintf("%s_%s.docx", req.DocType, strings.ReplaceAll(uuid.NewString(), "-", ""))
	path := filepath.Join(r.outDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", &Error{Op: "create file", Err: err}
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", &Error{Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &Error{Op: "close", Err: err}
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", &Error{Op: "stat", Err: ErrOutputMissing}
	}
	if r.log != nil {
		r.log.Info("docx rendered",
			"file", name,
			"bytes", info.Size(),
			"doc_type", string(req.DocType),
			"words", req.Essay.CountWords(),
		)
	}
	return path, nil
}

// Build lays out req as an in-memory document. The outline is cleaned first,
// so the same tree always yields the same document body.
func Build(req ExportRequest) *docx.Docx {
	b := &builder{
		doc:      docx.New().WithDefaultTheme(),
		font:     req.FontName,
		halfPts:  strconv.Itoa(req.FontSizePt * 2),
		lineTwip: int(math.Round(singleLineTwip * req.LineSpacing)),
	}

	title := b.doc.AddParagraph().Style("Title").Justification("center")
	b.run(title, strings.TrimSpace(req.Topic))
	b.doc.AddParagraph()

	if req.IncludeTOC {
		b.run(b.doc.AddParagraph().Style("Heading1"), TOCHeading)
		hint := b.body(b.doc.AddParagraph())
		b.run(hint, TOCHint).Italic()
		b.doc.AddParagraph().AddPageBreaks()
	}

	b.section(req.Essay.Clean(), 1)

	margin := int(math.Round(req.MarginsCm * twipsPerCm))
	b.doc.Document.Body.Items = append(b.doc.Document.Body.Items, &docx.SectPr{
		PgSz: &docx.PgSz{W: 11906, H: 16838},
		PgMar: &docx.PgMar{
			Top:    margin,
			Left:   margin,
			Bottom: margin,
			Right:  margin,
			Header: 709,
			Footer: 709,
		},
	})
	return b.doc
}

type builder struct {
	doc      *docx.Docx
	font     string
	halfPts  string
	lineTwip int
}

func (b *builder) section(s *outline.Section, level int) {
	b.run(b.doc.AddParagraph().Style(HeadingStyle(level)), s.Title)

	refs := outline.IsBibliography(s.Title)
	for _, text := range s.Paragraphs {
		p := b.body(b.doc.AddParagraph())
		if refs {
			p.Properties.Ind = &docx.Ind{Left: hangingIndent, Hanging: hangingIndent}
		}
		b.run(p, text)
	}
	for _, sub := range s.Subsections {
		b.section(sub, level+1)
	}
}

// body applies justified alignment and the configured line spacing.
func (b *builder) body(p *docx.Paragraph) *docx.Paragraph {
	p.Justification("both")
	p.Properties.Spacing = &docx.Spacing{Line: b.lineTwip, LineRule: "auto"}
	return p
}

func (b *builder) run(p *docx.Paragraph, text string) *docx.Run {
	return p.AddText(text).Font(b.font, b.font, b.font, "").Size(b.halfPts).SizeCs(b.halfPts)
}

// HeadingStyle maps a nesting level to Heading1..Heading3.
func HeadingStyle(level int) string {
	return "Heading" + strconv.Itoa(min(max(level, 1), 3))
}
