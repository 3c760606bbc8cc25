package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestContextCombinesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "persona.md", "Alice is a cheerful companion.")
	writeFile(t, dir, "user_profile.md", "- likes coffee")

	got := NewStore(dir).Context()
	if !strings.Contains(got, "## persona.md") || !strings.Contains(got, "Alice is a cheerful companion.") {
		t.Errorf("persona section missing: %q", got)
	}
	if !strings.Contains(got, "## user_profile.md") || !strings.Contains(got, "- likes coffee") {
		t.Errorf("profile section missing: %q", got)
	}
	// persona comes first
	if strings.Index(got, "persona.md") > strings.Index(got, "user_profile.md") {
		t.Error("persona should precede user profile")
	}
}

func TestContextMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if got := NewStore(dir).Context(); got != "" {
		t.Errorf("empty dir should yield empty context, got %q", got)
	}

	writeFile(t, dir, "persona.md", "only persona")
	got := NewStore(dir).Context()
	if !strings.Contains(got, "only persona") {
		t.Errorf("single file should still load: %q", got)
	}
}

func TestContextBounded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "persona.md", strings.Repeat("あ", 3000))

	got := NewStore(dir).Context()
	if n := utf8.RuneCountInString(got); n > MaxMemoryChars {
		t.Errorf("context length = %d runes, want <= %d", n, MaxMemoryChars)
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated context should carry the ellipsis marker")
	}
}

func TestApplyUpdate(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := s.ApplyUpdate("- user's name is Ishigaki"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "user_profile.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "- user's name is Ishigaki" {
		t.Errorf("first update should be written as-is: %q", data)
	}

	if err := s.ApplyUpdate("- prefers tea"); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "user_profile.md"))
	if !strings.Contains(string(data), "- user's name is Ishigaki") {
		t.Error("existing content must be preserved")
	}
	if !strings.Contains(string(data), "<!-- updated ") {
		t.Error("appended update should carry a timestamp header")
	}
	if !strings.Contains(string(data), "- prefers tea") {
		t.Error("new content missing")
	}
}

func TestApplyUpdateNoop(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	for _, diff := range []string{"", "   ", Noop, "  NOOP  "} {
		if err := s.ApplyUpdate(diff); err != nil {
			t.Fatalf("ApplyUpdate(%q): %v", diff, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "user_profile.md")); !os.IsNotExist(err) {
		t.Error("no-op diffs must not create the profile file")
	}
}

func TestWriteEpisode(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	if err := s.WriteEpisode("2026-08-28", "# first summary"); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteEpisode("2026-08-28", "# second summary"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "episodes", "2026-08-28.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# first summary\n\n---\n\n# second summary"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}

func TestMemoryUpdaterAppliesAsync(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)

	m.EnqueueUpdate("- async note")
	m.Close() // drains the queue

	data, err := os.ReadFile(filepath.Join(dir, "user_profile.md"))
	if err != nil {
		t.Fatalf("profile not written: %v", err)
	}
	if !strings.Contains(string(data), "- async note") {
		t.Errorf("profile = %q", data)
	}
}
