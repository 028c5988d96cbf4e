package outline

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyResponse is returned when the model text is blank.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrMalformedJSON is returned when no JSON object could be recovered.
	ErrMalformedJSON = errors.New("model response is not valid JSON")
)

var (
	fenceLineRe     = regexp.MustCompile("(?m)^[ \t]*```[^\n`]*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// Extract turns raw model output into an outline. The text goes through a
// fixed sequence of repairs before it is parsed; a failure after the last
// repair is terminal.
func Extract(raw string) (*Section, error) {
	text, err := Repair(raw)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(text)
	if err != nil {
		cleaned := strings.NewReplacer("\x00", "", "\ufeff", "").Replace(text)
		cleaned = fixTrailingCommas(cleaned)
		obj, err = decodeObject(cleaned)
		if err != nil {
			return nil, fmt.Errorf("%w: %w (raw: %s)", ErrMalformedJSON, err, truncate(text, 200))
		}
	}
	return Normalize(obj), nil
}

// Repair applies the text-level recovery steps and returns the candidate
// JSON text.
func Repair(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyResponse
	}
	if strings.HasPrefix(s, "```") {
		s = stripCodeFences(s)
	}
	s = braceSpan(s)
	s = fixTrailingCommas(s)
	s = trimToBalanced(s)
	return strings.TrimSpace(s), nil
}

func stripCodeFences(s string) string {
	return strings.TrimSpace(fenceLineRe.ReplaceAllString(s, ""))
}

// braceSpan cuts s down to the text between the first '{' and the last '}'.
func braceSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

func fixTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// trimToBalanced truncates s after the last '}' that closes a top-level
// object. Braces inside string literals are not counted.
func trimToBalanced(s string) string {
	depth := 0
	lastGood := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				lastGood = i
			}
		}
	}
	if lastGood != -1 {
		return s[:lastGood+1]
	}
	return s
}

func decodeObject(text string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is %s, not an object", kindOf(v))
	}
	return obj, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
