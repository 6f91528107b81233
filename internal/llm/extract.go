package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON locates the JSON block inside model output that may be
// wrapped in markdown code fences or surrounded by prose. Models asked
// for "JSON only" still reply with preambles like "Here is the plan:"
// often enough that every structured call goes through this.
//
// Returns *ErrInvalidResponse if no parseable JSON object or array is found.
func ExtractJSON(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)

	// Fast path: the whole response is valid JSON.
	if json.Valid([]byte(trimmed)) && len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return json.RawMessage(trimmed), nil
	}

	// Prefer a fenced block when present.
	if block, ok := fencedBlock(trimmed); ok {
		if json.Valid([]byte(block)) {
			return json.RawMessage(block), nil
		}
	}

	// Fall back to scanning for the first balanced object or array.
	if block, ok := balancedJSON(trimmed); ok {
		return json.RawMessage(block), nil
	}

	return nil, &ErrInvalidResponse{
		Content: json.RawMessage(text),
		Err:     fmt.Errorf("no JSON block found in response"),
	}
}

// fencedBlock returns the contents of the first ``` fenced block.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start == -1 {
		return "", false
	}
	rest := text[start+3:]
	// Skip the language tag on the opening fence, e.g. ```json.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(rest[:nl])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{[") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// balancedJSON scans for the first '{' or '[' and returns the shortest
// balanced, valid JSON value starting there. Braces inside strings are
// handled by the json.Valid check rather than by tracking quote state.
func balancedJSON(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return "", false
	}

	open := text[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}
