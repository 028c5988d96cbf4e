package outline

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func leaf(title string, paragraphs ...string) *Section {
	if paragraphs == nil {
		paragraphs = []string{}
	}
	return &Section{Title: title, Paragraphs: paragraphs, Subsections: []*Section{}}
}

func TestExtract_WellFormed(t *testing.T) {
	input := `{
  "title": "  Essay  ",
  "paragraphs": ["  first ", "", "   ", "second"],
  "subsections": [
    {"title": "Введение", "paragraphs": ["intro"], "subsections": []},
    {"title": "Заключение", "paragraphs": ["outro"]}
  ]
}`
	got, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Section{
		Title:      "Essay",
		Paragraphs: []string{"first", "second"},
		Subsections: []*Section{
			leaf("Введение", "intro"),
			leaf("Заключение", "outro"),
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_TrailingCommas(t *testing.T) {
	got, err := Extract(`{"title":"T","paragraphs":["a",],"subsections":[],}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := leaf("T", "a"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_CodeFence(t *testing.T) {
	body := `{"title":"T","paragraphs":["a","b"],"subsections":[{"title":"S","paragraphs":["c"]}]}`
	plain, err := Extract(body)
	if err != nil {
		t.Fatalf("plain: unexpected error: %v", err)
	}

	for _, fence := range []string{"```json", "```JSON", "```", "``` javascript"} {
		t.Run(fence, func(t *testing.T) {
			fenced, err := Extract(fence + "\n" + body + "\n```\n")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(fenced, plain) {
				t.Errorf("fenced %+v != plain %+v", fenced, plain)
			}
		})
	}
}

func TestExtract_SingleLineFence(t *testing.T) {
	got, err := Extract("```json {\"title\":\"T\",\"paragraphs\":[\"a\"]}```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := leaf("T", "a"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_TrailingGarbage(t *testing.T) {
	got, err := Extract(`{"title":"T","paragraphs":["a"]}trailing garbage`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := leaf("T", "a"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_LeadingCommentary(t *testing.T) {
	input := "Sure! Here is your document:\n{\"title\":\"T\",\"paragraphs\":[\"a\"]}\nHope this helps."
	got, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "T" || len(got.Paragraphs) != 1 {
		t.Errorf("unexpected section: %+v", got)
	}
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	got, err := Extract(`{"title":"Sets {a, b}","paragraphs":["x } y"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Sets {a, b}" {
		t.Errorf("expected title with braces, got %q", got.Title)
	}
	if len(got.Paragraphs) != 1 || got.Paragraphs[0] != "x } y" {
		t.Errorf("unexpected paragraphs: %q", got.Paragraphs)
	}
}

func TestExtract_FallbackStripsBOMAndNUL(t *testing.T) {
	input := "{\"title\":\"T\ufeff\",\x00\"paragraphs\":[\"a\"]}"
	got, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := leaf("T", "a"); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_Empty(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t \n"} {
		_, err := Extract(input)
		if !errors.Is(err, ErrEmptyResponse) {
			t.Errorf("input %q: expected ErrEmptyResponse, got %v", input, err)
		}
		if errors.Is(err, ErrMalformedJSON) {
			t.Errorf("input %q: empty input must not be reported as malformed", input)
		}
	}
}

func TestExtract_Garbage(t *testing.T) {
	inputs := []string{
		"not json at all",
		"{not json}",
		`{"title": "unterminated`,
		"[1, 2, 3]",
		`"just a string"`,
	}
	for _, input := range inputs {
		_, err := Extract(input)
		if !errors.Is(err, ErrMalformedJSON) {
			t.Errorf("input %q: expected ErrMalformedJSON, got %v", input, err)
		}
	}
}

func TestExtract_DropsWrongShapes(t *testing.T) {
	input := `{
  "title": 42,
  "paragraphs": ["ok", 7, null, {"x": 1}, ["nested"], true],
  "subsections": ["string", 3, null, {"paragraphs": ["child"]}],
  "extra": "ignored"
}`
	got, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &Section{
		Title:       "42",
		Paragraphs:  []string{"ok"},
		Subsections: []*Section{leaf(DefaultTitle, "child")},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_MissingAndNonListFields(t *testing.T) {
	got, err := Extract(`{"title":"   ","paragraphs":"not a list","subsections":{"title":"x"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := leaf(DefaultTitle); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtract_RoundTripIsIdempotent(t *testing.T) {
	input := `{"title":" Root ","paragraphs":[" a ",""],"subsections":[{"title":"","paragraphs":["b"],"subsections":[{"title":"Deep","paragraphs":[" c"]}]}]}`
	first, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := Extract(string(data))
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
	if !reflect.DeepEqual(first.Clean(), first) {
		t.Error("Clean changed an already normalized tree")
	}
}

func TestRepair_Steps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"commentary", `here {"a":1} there`, `{"a":1}`},
		{"trailing commas", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"comma before newline", "{\"a\":[1,\n  ]\n}", "{\"a\":[1]\n}"},
		{"no braces", "hello", "hello"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Repair(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestTrimToBalanced(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{"a":{"b":1}}xyz`, `{"a":{"b":1}}`},
		{`{"a":"}"}tail`, `{"a":"}"}`},
		{`{"a":"\"}"}tail`, `{"a":"\"}"}`},
		{`{"a":1`, `{"a":1`},
		{`no braces`, `no braces`},
	}
	for _, tc := range tests {
		if got := trimToBalanced(tc.input); got != tc.want {
			t.Errorf("trimToBalanced(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestExtract_ErrorMentionsRawText(t *testing.T) {
	_, err := Extract("{broken")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "{broken") {
		t.Errorf("expected raw text in error, got %q", err.Error())
	}
}
