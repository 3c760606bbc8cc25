package openclaw

import (
	"regexp"
	"strings"
)

// MaxLogChars bounds the digest handed back to the UI and the model.
const MaxLogChars = 500

const summaryTailLines = 10

var (
	errorLineRE   = regexp.MustCompile(`(?i)(error|fail(ed|ure)?|exception|失敗|エラー)`)
	successLineRE = regexp.MustCompile(`(?i)(success|result|完了|成功|取得)`)
)

// SummarizeLog reduces an arbitrary execution log to a bounded digest.
// Error-keyword lines take strict priority over success/result lines,
// which take priority over the unfiltered log; of the selected lines the
// last ten are kept (most recent context first). The result is truncated
// to maxChars with a … marker when cut.
func SummarizeLog(rawLog string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = MaxLogChars
	}

	var lines []string
	for _, l := range strings.Split(rawLog, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	selected := filterLines(lines, errorLineRE)
	if len(selected) == 0 {
		selected = filterLines(lines, successLineRE)
	}
	if len(selected) == 0 {
		selected = lines
	}

	if len(selected) > summaryTailLines {
		selected = selected[len(selected)-summaryTailLines:]
	}
	return truncateRunes(strings.Join(selected, "\n"), maxChars)
}

func filterLines(lines []string, re *regexp.Regexp) []string {
	var out []string
	for _, l := range lines {
		if re.MatchString(l) {
			out = append(out, l)
		}
	}
	return out
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
