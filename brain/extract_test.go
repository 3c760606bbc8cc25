package brain

import "testing"

func TestStripNoise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean passthrough", `{"text":"hi"}`, `{"text":"hi"}`},
		{"think block removed", "<think>reasoning here</think>{\"text\":\"hi\"}", `{"text":"hi"}`},
		{"think block case insensitive", "<THINK>x</THINK>answer", "answer"},
		{"multiline think", "<think>line one\nline two</think>ok", "ok"},
		{"fence unwrapped", "```json\n{\"text\":\"hi\"}\n```", "{\"text\":\"hi\"}"},
		{"fence without language", "```\nplain\n```", "plain"},
		{"think then fence", "<think>hm</think>```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"whitespace trimmed", "  hello  ", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripNoise(tt.in); got != tt.want {
				t.Errorf("StripNoise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripNoiseIdempotent(t *testing.T) {
	in := "<think>x</think>```json\n{\"text\":\"hi\"}\n```"
	once := StripNoise(in)
	twice := StripNoise(once)
	if once != twice {
		t.Errorf("StripNoise not idempotent: %q vs %q", once, twice)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantOK   bool
		wantText string
	}{
		{
			"bare object",
			`{"text":"こんにちは","emotion":"happy"}`,
			true, "こんにちは",
		},
		{
			"object with leading prose",
			`Sure! Here is the answer: {"text":"hi","emotion":"neutral"}`,
			true, "hi",
		},
		{
			"object with trailing prose",
			`{"text":"hi"} hope that helps!`,
			true, "hi",
		},
		{
			"nested object with escaped quote",
			`{"text":"a\"b","task":{"goal":"g","constraints":{"no_credential":true}}}`,
			true, `a"b`,
		},
		{
			"brace inside string does not break matching",
			`{"text":"use { and } freely","emotion":"neutral"}`,
			true, "use { and } freely",
		},
		{
			"fenced object",
			"```json\n{\"text\":\"hi\"}\n```",
			true, "hi",
		},
		{
			"think block then object",
			"<think>I should greet</think>{\"text\":\"やあ\"}",
			true, "やあ",
		},
		{"no braces", "just some prose without json", false, ""},
		{"truncated object", `{"text":"hi","emotion":`, false, ""},
		{"empty input", "", false, ""},
		{"unbalanced close only", "}}}", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ExtractJSON(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ExtractJSON(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got, _ := m["text"].(string); got != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestFirstObjectSpanSkipsProseBeforeBrace(t *testing.T) {
	// A stray quote in leading prose must not poison the string tracking:
	// scanning starts at the first brace.
	in := `The user said "hello there, {"text":"hi","emotion":"happy"}`
	m, ok := ExtractJSON(in)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if m["emotion"] != "happy" {
		t.Errorf("emotion = %v, want happy", m["emotion"])
	}
}
