package brain

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	thinkRE = regexp.MustCompile(`(?is)<think>.*?</think>`)
	fenceRE = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\r?\\n?(.*?)```")
)

// StripNoise removes model reasoning blocks and markdown code fences from
// a raw completion. Reasoning spans (<think>…</think>, any case, possibly
// multi-line) are dropped entirely; fenced blocks keep their content with
// the delimiters and language tag removed. Pure and idempotent.
func StripNoise(raw string) string {
	s := thinkRE.ReplaceAllString(raw, "")
	s = fenceRE.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// ExtractJSON locates and parses the first JSON object inside a noisy
// completion. Failure is a normal outcome (the orchestrator retries), so
// it is reported with a bool rather than an error.
func ExtractJSON(raw string) (map[string]interface{}, bool) {
	clean := StripNoise(raw)

	// Fast path: the whole cleaned string is the object.
	if strings.HasPrefix(clean, "{") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(clean), &m); err == nil {
			return m, true
		}
	}

	span, ok := firstObjectSpan(clean)
	if !ok {
		return nil, false
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(span), &m); err != nil {
		return nil, false
	}
	return m, true
}

// firstObjectSpan finds the first balanced top-level {...} span using
// depth-counted brace matching that is string-aware: braces inside quoted
// strings do not affect depth, and escape sequences are tracked so an
// escaped quote does not end the string early. Iterating bytes is safe
// because the ASCII delimiters never appear inside a UTF-8 multi-byte
// sequence. Returns false when no object opens or the input is truncated.
func firstObjectSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	var depth int
	var inString, escape bool
	for i := start; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
