package utils

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	fencedBlock    = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.+?)\\s*```")
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey    = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
	errEmptyOutput = eris.New("empty model output")
)

// ParseAIJSON decodes a JSON object from model output. Models wrap JSON in
// markdown fences, surround it with prose, or emit near-JSON with trailing
// commas and bare keys; each form is tried in turn.
func ParseAIJSON(input string, target any) error {
	input = strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	if input == "" {
		return errEmptyOutput
	}

	for _, candidate := range jsonCandidates(input) {
		if candidate == "" {
			continue
		}
		if json.Unmarshal([]byte(candidate), target) == nil {
			return nil
		}
		if json.Unmarshal([]byte(repairJSON(candidate)), target) == nil {
			return nil
		}
	}

	return eris.Errorf("no JSON object found in model output: %s", truncate(input, 100))
}

func jsonCandidates(input string) []string {
	candidates := []string{input}
	if m := fencedBlock.FindStringSubmatch(input); len(m) > 1 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if i := strings.IndexByte(input, '{'); i >= 0 {
		candidates = append(candidates, balanced(input[i:], '{', '}'))
	}
	return candidates
}

// balanced returns the prefix of s up to the brace that closes s[0],
// ignoring braces inside string literals
func balanced(s string, open, close byte) string {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func repairJSON(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	return controlChars.ReplaceAllString(s, "")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
