// Package importer turns existing documents into outline trees so they can
// be edited and exported again.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docgen/internal/outline"
)

var (
	// ErrUnsupported is returned for file extensions no importer handles.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrNoContent is returned when a document yields no text at all.
	ErrNoContent = errors.New("document has no text content")
)

// Importer converts raw document bytes into an outline.
type Importer interface {
	Import(r io.Reader, filename string) (*outline.Section, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes the importers ForFile hands out.
type Options struct {
	// PDFFallback enables the external pdftotext tool when the Go PDF
	// reader fails.
	PDFFallback bool
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string, opts Options) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".pdf":
		return &PDFImporter{FallbackPdftotext: opts.PDFFallback}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupported checks if a file extension can be imported.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Import picks an importer by extension and returns a cleaned outline.
func Import(r io.Reader, filename string, opts Options) (*outline.Section, error) {
	imp, err := ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	sec, err := imp.Import(r, filename)
	if err != nil {
		return nil, err
	}
	if len(sec.Paragraphs) == 0 && len(sec.Subsections) == 0 {
		return nil, ErrNoContent
	}
	return sec, nil
}

// baseTitle strips directories and the extension from a filename.
func baseTitle(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
