package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Style is the requested writing register.
type Style string

const (
	StyleAcademic    Style = "academic"
	StyleConcise     Style = "concise"
	StyleExplanatory Style = "explanatory"
)

// Valid reports whether s is a known style.
func (s Style) Valid() bool {
	switch s {
	case StyleAcademic, StyleConcise, StyleExplanatory:
		return true
	}
	return false
}

// LabMeta carries optional lab report details.
type LabMeta struct {
	Discipline string `json:"discipline,omitempty"`
	Variant    string `json:"variant,omitempty"`
	Goal       string `json:"goal,omitempty"`
	Equipment  string `json:"equipment,omitempty"`
}

// Request describes a document to generate.
type Request struct {
	Topic        string   `json:"topic"`
	DocType      DocType  `json:"doc_type"`
	Locale       string   `json:"locale"`
	Style        Style    `json:"style"`
	OutlineDepth int      `json:"outline_depth"`
	Requirements string   `json:"requirements,omitempty"`
	LabMeta      *LabMeta `json:"lab_meta,omitempty"`
	Model        string   `json:"model,omitempty"`
	PageTarget   int      `json:"page_target"`
}

// DefaultRequest returns a request with every optional field at its
// default. Decode JSON on top of it to get defaults for missing fields.
func DefaultRequest() Request {
	return Request{
		DocType:      DocReferat,
		Locale:       "ru",
		Style:        StyleAcademic,
		OutlineDepth: 2,
		PageTarget:   8,
	}
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return errors.New("topic is required")
	}
	if !r.DocType.Valid() {
		return fmt.Errorf("unknown doc_type %q", r.DocType)
	}
	if !r.Style.Valid() {
		return fmt.Errorf("unknown style %q", r.Style)
	}
	if r.OutlineDepth < 1 {
		return fmt.Errorf("outline_depth must be >= 1, got %d", r.OutlineDepth)
	}
	if r.PageTarget < 1 {
		return fmt.Errorf("page_target must be >= 1, got %d", r.PageTarget)
	}
	return nil
}

// Compiled is the output of Compile.
type Compiled struct {
	WordBudget   int
	Distribution Distribution
	Template     Template
	Text         string
}

// Compile derives the word budget and section template for a request and
// assembles the instruction text sent to the model. It is deterministic.
func Compile(req Request, layout Layout) Compiled {
	budget := EstimateWords(req.PageTarget, layout.LineSpacing, layout.FontSizePt)
	dist := Distribute(budget)
	tmpl := TemplateFor(req.DocType)

	var sb strings.Builder
	sb.WriteString("You are an academic writer that outputs STRICT JSON only. No markdown, no code fences, no comments.\n\n")

	sb.WriteString("Context:\n")
	fmt.Fprintf(&sb, "- Language: %s\n", req.Locale)
	fmt.Fprintf(&sb, "- Style: %s\n", req.Style)
	fmt.Fprintf(&sb, "- Topic: %s\n", req.Topic)
	fmt.Fprintf(&sb, "- Target length: ~%d words (±10%%)\n", budget)
	sb.WriteString("- Section budget guideline:\n")
	fmt.Fprintf(&sb, "  - Introduction ≈ %d words\n", dist.Intro)
	fmt.Fprintf(&sb, "  - Main body ≈ %d words\n", dist.Main)
	fmt.Fprintf(&sb, "  - Conclusion ≈ %d words\n", dist.Conclusion)
	fmt.Fprintf(&sb, "- Max outline depth: %d\n", req.OutlineDepth)
	if req.Requirements != "" {
		fmt.Fprintf(&sb, "- Additional requirements: %s\n", req.Requirements)
	}
	if lab := formatLabMeta(req.LabMeta); lab != "" {
		fmt.Fprintf(&sb, "- Lab meta: %s\n", lab)
	}
	sb.WriteString("\n")

	sb.WriteString("Follow this exact section template (order and titles must match). For items with 'sub', create child sections with those exact titles:\n")
	sb.WriteString(templateJSON(tmpl))
	sb.WriteString("\n\n")

	sb.WriteString(schemaBlock)
	sb.WriteString(rulesBlock)

	return Compiled{
		WordBudget:   budget,
		Distribution: dist,
		Template:     tmpl,
		Text:         sb.String(),
	}
}

const schemaBlock = `Output JSON schema:
{
  "title": "string",
  "paragraphs": [],
  "subsections": []
}

`

const rulesBlock = `Rules:
- Under-generation is not allowed: expand with concise definitions, short examples, brief explanations until the word budget is met.
- No markdown markers (#, *, -, 1.). Plain text sentences only.
- No inline citations; references only as individual paragraphs in the final references section, formatted like: [1] Автор. Название. Год.
- For 'Keywords'/'Ключевые слова', use one paragraph with comma-separated keywords.
- For lab, integrate goal and equipment into respective sections.

Respond with JSON only.`

func formatLabMeta(m *LabMeta) string {
	if m == nil {
		return ""
	}
	var parts []string
	if m.Discipline != "" {
		parts = append(parts, "discipline: "+m.Discipline)
	}
	if m.Variant != "" {
		parts = append(parts, "variant: "+m.Variant)
	}
	if m.Goal != "" {
		parts = append(parts, "goal: "+m.Goal)
	}
	if m.Equipment != "" {
		parts = append(parts, "equipment: "+m.Equipment)
	}
	return strings.Join(parts, "; ")
}

func templateJSON(t Template) string {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		// Template holds only strings; encoding cannot fail.
		panic(err)
	}
	return strings.TrimSpace(sb.String())
}
