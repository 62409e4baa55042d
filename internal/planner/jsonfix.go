package planner

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON means no parseable JSON object could be recovered from the
// model output, even after every repair strategy.
var ErrNoJSON = errors.New("no valid JSON object in model output")

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// ExtractJSON recovers the JSON object embedded in raw model output. Models
// wrap output in code fences, prepend prose or leave trailing commas; each
// strategy strips one class of damage and re-checks. Strategies are ordered
// cheapest first and the first valid candidate wins.
func ExtractJSON(text string) ([]byte, error) {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	// drop prose before the first brace and after the last
	if i := strings.IndexByte(cleaned, '{'); i > 0 {
		cleaned = cleaned[i:]
	}
	if i := strings.LastIndexByte(cleaned, '}'); i >= 0 && i < len(cleaned)-1 {
		cleaned = cleaned[:i+1]
	}

	if json.Valid([]byte(cleaned)) {
		return []byte(cleaned), nil
	}

	fixed := trailingComma.ReplaceAllString(cleaned, "$1")
	if json.Valid([]byte(fixed)) {
		return []byte(fixed), nil
	}

	if candidate, ok := balancedObject(cleaned); ok {
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
		candidate = trailingComma.ReplaceAllString(candidate, "$1")
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}
	return nil, ErrNoJSON
}

// balancedObject scans for the first brace-balanced object. Brace counting
// ignores braces inside strings, which is enough for the damage seen in
// practice.
func balancedObject(s string) (string, bool) {
	depth, start := 0, -1
	inString, escaped := false, false
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
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
