package importer

import (
	"strings"

	"github.com/dgallion1/docgen/internal/outline"
)

type frame struct {
	sec   *outline.Section
	level int
}

// builder nests sections by heading level. The root sits at level 0 so
// every heading lands somewhere beneath it.
type builder struct {
	root  *outline.Section
	stack []frame
}

func newBuilder(title string) *builder {
	root := &outline.Section{Title: title}
	return &builder{root: root, stack: []frame{{sec: root, level: 0}}}
}

func (b *builder) heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	sec := &outline.Section{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].sec
	parent.Subsections = append(parent.Subsections, sec)
	b.stack = append(b.stack, frame{sec: sec, level: level})
}

func (b *builder) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	top := b.stack[len(b.stack)-1].sec
	top.Paragraphs = append(top.Paragraphs, text)
}

// result returns the cleaned tree. A root holding nothing but a single
// top-level heading is replaced by that heading.
func (b *builder) result() *outline.Section {
	root := b.root
	if len(root.Paragraphs) == 0 && len(root.Subsections) == 1 {
		root = root.Subsections[0]
	}
	return root.Clean()
}
