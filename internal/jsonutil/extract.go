// Package jsonutil extracts structured JSON from raw language-model responses.
//
// Models are asked for pure JSON but routinely wrap it in markdown fences or
// surrounding prose. Extract is the trust boundary between free text and the
// typed artifact structs: it finds the first balanced JSON object or array in
// the text and nothing else. Parsing is fail-closed; callers get an error, not
// a best-effort partial value.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// maxInputBytes caps the size of a response we will scan. Larger inputs are
// rejected to prevent memory exhaustion from a runaway model response.
const maxInputBytes = 10 * 1024 * 1024 // 10 MB

// reCodeFence matches a markdown code fence that optionally carries a "json"
// language tag. The fenced content is captured in subgroup 1. The (?s) flag
// lets .*? cross newlines; the non-greedy quantifier stops at the first
// closing fence so multiple fences in one response are handled in order.
var reCodeFence = regexp.MustCompile("(?s)```(?:json)?[ \\t]*\n(.*?)\n```")

// sanitize strips a leading UTF-8 BOM and enforces the size cap.
func sanitize(text string) (string, error) {
	if len(text) > maxInputBytes {
		return "", fmt.Errorf("jsonutil: input exceeds maximum size of %d bytes", maxInputBytes)
	}
	return strings.TrimPrefix(text, "\xef\xbb\xbf"), nil
}

// Extract returns the first valid JSON object or array found in text. Two
// strategies are tried in order of reliability:
//  1. Markdown code fence (```json or ```)
//  2. Balanced-delimiter matching for the outermost { } or [ ] structure
//
// An error is returned when no valid JSON is found or the input exceeds the
// size cap.
func Extract(text string) (json.RawMessage, error) {
	text, err := sanitize(text)
	if err != nil {
		return nil, err
	}

	if raw := firstFenced(text); raw != nil {
		return raw, nil
	}
	if raw := firstBalanced(text); raw != nil {
		return raw, nil
	}
	return nil, fmt.Errorf("jsonutil: no valid JSON found in text")
}

// ExtractInto extracts JSON from text and unmarshals it into target.
func ExtractInto(text string, target any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("jsonutil: unmarshal failed: %w", err)
	}
	return nil
}

// firstFenced returns the first fenced block whose content is valid JSON,
// or nil when no fence qualifies.
func firstFenced(text string) json.RawMessage {
	for _, loc := range reCodeFence.FindAllStringSubmatchIndex(text, -1) {
		if len(loc) < 4 {
			continue
		}
		inner := strings.TrimSpace(text[loc[2]:loc[3]])
		if inner == "" || !json.Valid([]byte(inner)) {
			continue
		}
		return json.RawMessage(inner)
	}
	return nil
}

// firstBalanced scans for the earliest opening delimiter whose balanced span
// is valid JSON. Openers inside prose that do not close into valid JSON are
// skipped, so "[NOTE] answer: {...}" yields the object, not the bracket tag.
func firstBalanced(text string) json.RawMessage {
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '{' && ch != '[' {
			continue
		}
		end := matchingDelimiter(text, i)
		if end < 0 {
			continue
		}
		candidate := text[i : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate)
		}
	}
	return nil
}

// matchingDelimiter returns the index of the closer that balances the opening
// delimiter ('{' -> '}', '[' -> ']') at position start, or -1 when the text
// ends first. Nested delimiters, double-quoted strings, and escape sequences
// inside strings are handled so that braces embedded in string values do not
// affect the depth count.
func matchingDelimiter(text string, start int) int {
	openCh := text[start]
	var closeCh byte
	switch openCh {
	case '{':
		closeCh = '}'
	case '[':
		closeCh = ']'
	default:
		return -1
	}

	depth := 0
	inString := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch ch {
			case '\\':
				i++ // skip the escaped character
			case '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
