package importer

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*importer.TextImporter"},
		{"a.MD", "*importer.MarkdownImporter"},
		{"a.markdown", "*importer.MarkdownImporter"},
		{"a.html", "*importer.HTMLImporter"},
		{"a.htm", "*importer.HTMLImporter"},
		{"a.pdf", "*importer.PDFImporter"},
		{"a.docx", "*importer.DOCXImporter"},
	}
	for _, tc := range tests {
		imp, err := ForFile(tc.filename, Options{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.filename, err)
		}
		if got := fmt.Sprintf("%T", imp); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.filename, tc.want, got)
		}
		if !IsSupported(tc.filename) {
			t.Errorf("%s: expected IsSupported", tc.filename)
		}
	}
}

func TestForFile_PDFFallbackOption(t *testing.T) {
	imp, err := ForFile("scan.pdf", Options{PDFFallback: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pdf, ok := imp.(*PDFImporter); !ok || !pdf.FallbackPdftotext {
		t.Errorf("expected PDF importer with fallback enabled, got %#v", imp)
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, name := range []string{"data.csv", "image.png", "noext"} {
		if _, err := ForFile(name, Options{}); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", name, err)
		}
		if IsSupported(name) {
			t.Errorf("%s: expected unsupported", name)
		}
	}
}

func TestImport_CleansAndPromotes(t *testing.T) {
	sec, err := Import(strings.NewReader("# Topic\n\n  Body.  \n"), "x.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sec.Title != "Topic" || len(sec.Paragraphs) != 1 || sec.Paragraphs[0] != "Body." {
		t.Errorf("unexpected outline %+v", sec)
	}
	if sec.Subsections == nil {
		t.Error("expected non-nil subsections after cleaning")
	}
}

func TestImport_HeadingsOnlyIsContent(t *testing.T) {
	sec, err := Import(strings.NewReader("# A\n\n# B\n"), "x.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sec.Subsections) != 2 {
		t.Errorf("expected 2 sections, got %d", len(sec.Subsections))
	}
}
