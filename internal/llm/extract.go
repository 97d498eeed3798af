package llm

import "encoding/json"

// ExtractJSON scans text for the first balanced brace-delimited block
// that decodes as a JSON object. The reasoning service is not guaranteed
// to emit pure structured output, so surrounding prose, markdown fences,
// and stray braces inside string literals are all tolerated. Returns
// false when no decodable object is found.
func ExtractJSON(text string) (map[string]any, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end, ok := balancedEnd(text, start)
		if !ok {
			// This opener never closes, but an inner opener can still be
			// balanced on its own. Keep scanning.
			continue
		}

		var parsed map[string]any
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil {
			return parsed, true
		}
		// Not valid JSON; keep scanning after this opener.
	}
	return nil, false
}

// balancedEnd returns the index of the brace closing the block opened at
// start, tracking nesting and skipping braces inside JSON strings.
func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
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
				return i, true
			}
		}
	}
	return 0, false
}
