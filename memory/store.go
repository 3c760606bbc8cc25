// Package memory holds the avatar's persistent context: file-backed
// persona and user-profile markdown plus a Redis-backed per-day archive
// of conversation turns.
package memory

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxMemoryChars bounds the combined context string handed to the model.
const MaxMemoryChars = 2000

// Noop is the sentinel meaning "no memory change".
const Noop = "NOOP"

var contextFiles = []string{"persona.md", "user_profile.md"}

// Store reads persona/user-profile context and applies model-proposed
// free-text diffs.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Context returns the combined persona + user-profile text, truncated to
// MaxMemoryChars. Missing files are skipped silently; they may not exist
// yet on a fresh install.
func (s *Store) Context() string {
	var parts []string
	for _, name := range contextFiles {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		parts = append(parts, "## "+name+"\n"+string(data))
	}
	return truncateRunes(strings.Join(parts, "\n\n"), MaxMemoryChars)
}

// ApplyUpdate appends a model-proposed diff to user_profile.md under a
// timestamp header. A blank or NOOP diff is a no-op.
func (s *Store) ApplyUpdate(diff string) error {
	trimmed := strings.TrimSpace(diff)
	if trimmed == "" || trimmed == Noop {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}
	path := filepath.Join(s.dir, "user_profile.md")
	existing, _ := os.ReadFile(path)

	var updated string
	if len(existing) > 0 {
		ts := time.Now().UTC().Format("2006-01-02 15:04:05")
		updated = string(existing) + "\n\n<!-- updated " + ts + " -->\n" + trimmed
	} else {
		updated = trimmed
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write user profile: %w", err)
	}
	log.Printf("💾 [MEMORY] user_profile.md updated")
	return nil
}

// WriteEpisode appends a daily conversation summary to episodes/<date>.md.
func (s *Store) WriteEpisode(date, summary string) error {
	dir := filepath.Join(s.dir, "episodes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create episodes dir: %w", err)
	}
	path := filepath.Join(dir, date+".md")
	existing, _ := os.ReadFile(path)

	var updated string
	if len(existing) > 0 {
		updated = string(existing) + "\n\n---\n\n" + summary
	} else {
		updated = summary
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write episode: %w", err)
	}
	log.Printf("💾 [MEMORY] episode written to %s", path)
	return nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
