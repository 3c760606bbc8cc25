package openclaw

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSummarizeLogShortVerbatim(t *testing.T) {
	log := "opened browser\nnavigated to page\nclicked button"
	if got := SummarizeLog(log, MaxLogChars); got != log {
		t.Errorf("short no-keyword log should pass through verbatim:\n%q", got)
	}
}

func TestSummarizeLogErrorPriority(t *testing.T) {
	log := strings.Join([]string{
		"step 1 success",
		"step 2 result: found page",
		"step 3 ERROR: timeout waiting for element",
		"step 4 success",
	}, "\n")
	got := SummarizeLog(log, MaxLogChars)
	if !strings.Contains(got, "ERROR: timeout") {
		t.Errorf("error line missing: %q", got)
	}
	// Strict priority: once any error line exists, success lines are out.
	if strings.Contains(got, "success") {
		t.Errorf("success lines must not appear alongside error lines: %q", got)
	}
}

func TestSummarizeLogSuccessFallback(t *testing.T) {
	log := strings.Join([]string{
		"launching",
		"search completed with result: sunny 25C",
		"closing",
	}, "\n")
	got := SummarizeLog(log, MaxLogChars)
	if !strings.Contains(got, "result: sunny 25C") {
		t.Errorf("result line missing: %q", got)
	}
	if strings.Contains(got, "launching") {
		t.Errorf("non-matching lines dropped when success lines exist: %q", got)
	}
}

func TestSummarizeLogJapaneseKeywords(t *testing.T) {
	log := "起動中\n処理が失敗しました\n終了"
	got := SummarizeLog(log, MaxLogChars)
	if !strings.Contains(got, "失敗") {
		t.Errorf("Japanese error keyword not prioritized: %q", got)
	}
	if strings.Contains(got, "起動中") {
		t.Errorf("unrelated line kept: %q", got)
	}
}

func TestSummarizeLogKeepsLastTenLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 25; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	got := SummarizeLog(strings.Join(lines, "\n"), MaxLogChars)
	kept := strings.Split(got, "\n")
	if len(kept) != summaryTailLines {
		t.Fatalf("kept %d lines, want %d", len(kept), summaryTailLines)
	}
	if kept[0] != "line 16" || kept[len(kept)-1] != "line 25" {
		t.Errorf("wrong tail window: first=%q last=%q", kept[0], kept[len(kept)-1])
	}
}

func TestSummarizeLogBounded(t *testing.T) {
	long := strings.Repeat("エラーが発生しました。詳細は次の通りです。", 200)
	got := SummarizeLog(long, MaxLogChars)
	if n := utf8.RuneCountInString(got); n > MaxLogChars {
		t.Errorf("summary length = %d runes, want <= %d", n, MaxLogChars)
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated summary should carry the ellipsis marker")
	}
}

func TestSummarizeLogEmptyAndBlankLines(t *testing.T) {
	if got := SummarizeLog("", MaxLogChars); got != "" {
		t.Errorf("empty log = %q", got)
	}
	got := SummarizeLog("\n\n  \nreal line\n\n", MaxLogChars)
	if got != "real line" {
		t.Errorf("blank lines should be stripped: %q", got)
	}
}
