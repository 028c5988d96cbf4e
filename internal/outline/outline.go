package outline

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultTitle is used when a node has no usable title.
const DefaultTitle = "Document"

// Section is a node of a generated document outline.
type Section struct {
	Title       string     `json:"title"`
	Paragraphs  []string   `json:"paragraphs"`
	Subsections []*Section `json:"subsections"`
}

// Normalize builds a Section from a decoded JSON object. Fields of the wrong
// shape are dropped rather than reported.
func Normalize(obj map[string]any) *Section {
	s := &Section{
		Title:       normalizeTitle(obj["title"]),
		Paragraphs:  []string{},
		Subsections: []*Section{},
	}

	if items, ok := obj["paragraphs"].([]any); ok {
		for _, item := range items {
			text, ok := item.(string)
			if !ok {
				continue
			}
			if text = strings.TrimSpace(text); text != "" {
				s.Paragraphs = append(s.Paragraphs, text)
			}
		}
	}

	if items, ok := obj["subsections"].([]any); ok {
		for _, item := range items {
			child, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s.Subsections = append(s.Subsections, Normalize(child))
		}
	}

	return s
}

func normalizeTitle(v any) string {
	var title string
	switch t := v.(type) {
	case string:
		title = t
	case float64:
		title = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		title = strconv.FormatBool(t)
	case nil:
		return DefaultTitle
	default:
		title = fmt.Sprint(t)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// Clean applies the normalization rules to an already typed tree and
// returns a fresh copy. Running it twice yields the same tree.
func (s *Section) Clean() *Section {
	if s == nil {
		return &Section{Title: DefaultTitle, Paragraphs: []string{}, Subsections: []*Section{}}
	}
	out := &Section{
		Title:       strings.TrimSpace(s.Title),
		Paragraphs:  make([]string, 0, len(s.Paragraphs)),
		Subsections: make([]*Section, 0, len(s.Subsections)),
	}
	if out.Title == "" {
		out.Title = DefaultTitle
	}
	for _, p := range s.Paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			out.Paragraphs = append(out.Paragraphs, p)
		}
	}
	for _, sub := range s.Subsections {
		if sub == nil {
			continue
		}
		out.Subsections = append(out.Subsections, sub.Clean())
	}
	return out
}

// Walk visits s and its descendants depth-first. Level is 1 for s.
func (s *Section) Walk(fn func(sec *Section, level int)) {
	var walk func(*Section, int)
	walk = func(n *Section, level int) {
		fn(n, level)
		for _, sub := range n.Subsections {
			walk(sub, level+1)
		}
	}
	walk(s, 1)
}

// CountWords returns the number of whitespace separated words in all
// paragraphs of the tree.
func (s *Section) CountWords() int {
	n := 0
	s.Walk(func(sec *Section, _ int) {
		for _, p := range sec.Paragraphs {
			n += len(strings.Fields(p))
		}
	})
	return n
}

var bibliographyMarkers = []string{
	"список литературы",
	"references",
	"список источников",
}

// IsBibliography reports whether a section title names a reference list.
// Renderers format such sections with a hanging indent.
func IsBibliography(title string) bool {
	t := strings.ToLower(title)
	for _, m := range bibliographyMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}
