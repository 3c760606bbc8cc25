package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Consolidator folds the previous day's archived turns into a markdown
// episode file shortly after midnight, then drops the Redis copy.
type Consolidator struct {
	archive *EpisodeArchive
	store   *Store
	cron    *cron.Cron
}

func NewConsolidator(archive *EpisodeArchive, store *Store) *Consolidator {
	return &Consolidator{archive: archive, store: store}
}

// Start schedules the nightly run at 00:05 local time.
func (c *Consolidator) Start() error {
	c.cron = cron.New()
	if _, err := c.cron.AddFunc("5 0 * * *", c.runNightly); err != nil {
		return fmt.Errorf("schedule consolidation: %w", err)
	}
	c.cron.Start()
	return nil
}

func (c *Consolidator) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}

func (c *Consolidator) runNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	if err := c.Consolidate(ctx, date); err != nil {
		log.Printf("⚠️ [MEMORY] consolidation for %s failed: %v", date, err)
	}
}

// Consolidate writes one date's turns into episodes/<date>.md and drops
// the archive. A date with no turns is a no-op.
func (c *Consolidator) Consolidate(ctx context.Context, date string) error {
	turns, err := c.archive.Turns(ctx, date)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%d turns)\n\n", date, len(turns))
	for _, t := range turns {
		ts := t.Timestamp.UTC().Format("15:04")
		fmt.Fprintf(&sb, "- %s **user**: %s\n", ts, t.UserMessage)
		fmt.Fprintf(&sb, "- %s **alice** (%s/%s): %s\n", ts, t.Emotion, t.Motion, t.AssistantText)
	}

	if err := c.store.WriteEpisode(date, sb.String()); err != nil {
		return err
	}
	if err := c.archive.Drop(ctx, date); err != nil {
		return fmt.Errorf("drop archived turns: %w", err)
	}
	log.Printf("🧹 [MEMORY] consolidated %d turns into episode %s", len(turns), date)
	return nil
}
