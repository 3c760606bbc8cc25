package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	episodeKeyPrefix = "avatar:episode:"
	episodeTTL       = 7 * 24 * time.Hour
	maxTurnsPerDay   = 200
)

// Turn is one archived conversation exchange.
type Turn struct {
	Timestamp     time.Time `json:"timestamp"`
	UserMessage   string    `json:"user_message"`
	AssistantText string    `json:"assistant_text"`
	Emotion       string    `json:"emotion"`
	Motion        string    `json:"motion"`
}

// EpisodeArchive keeps a rolling per-day record of conversation turns in
// Redis so the nightly consolidator can fold them into episode files.
// A nil archive is valid and records nothing (Redis is optional).
type EpisodeArchive struct {
	rdb *redis.Client
}

func NewEpisodeArchive(rdb *redis.Client) *EpisodeArchive {
	return &EpisodeArchive{rdb: rdb}
}

func episodeKey(date string) string { return episodeKeyPrefix + date }

// RecordTurn appends a turn to today's list, trimmed to the most recent
// maxTurnsPerDay entries, with a 7-day expiry.
func (a *EpisodeArchive) RecordTurn(ctx context.Context, t Turn) error {
	if a == nil || a.rdb == nil {
		return nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := episodeKey(t.Timestamp.UTC().Format("2006-01-02"))

	pipe := a.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -maxTurnsPerDay, -1)
	pipe.Expire(ctx, key, episodeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// Turns returns all archived turns for a date (YYYY-MM-DD), oldest first.
// Entries that fail to unmarshal are skipped.
func (a *EpisodeArchive) Turns(ctx context.Context, date string) ([]Turn, error) {
	if a == nil || a.rdb == nil {
		return nil, nil
	}
	items, err := a.rdb.LRange(ctx, episodeKey(date), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	var turns []Turn
	for _, item := range items {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Drop removes a date's archive after consolidation.
func (a *EpisodeArchive) Drop(ctx context.Context, date string) error {
	if a == nil || a.rdb == nil {
		return nil
	}
	return a.rdb.Del(ctx, episodeKey(date)).Err()
}
