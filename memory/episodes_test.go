package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testArchive(t *testing.T) *EpisodeArchive {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewEpisodeArchive(rdb)
}

func testTurn(ts time.Time, msg string) Turn {
	return Turn{
		Timestamp:     ts,
		UserMessage:   msg,
		AssistantText: "reply to " + msg,
		Emotion:       "neutral",
		Motion:        "none",
	}
}

func TestRecordAndLoadTurns(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := a.RecordTurn(ctx, testTurn(ts.Add(time.Duration(i)*time.Minute), fmt.Sprintf("msg %d", i))); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}

	turns, err := a.Turns(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].UserMessage != "msg 0" || turns[2].UserMessage != "msg 2" {
		t.Errorf("turns out of order: %v", turns)
	}
	if turns[1].AssistantText != "reply to msg 1" {
		t.Errorf("assistant text = %q", turns[1].AssistantText)
	}
}

func TestTurnsEmptyDate(t *testing.T) {
	a := testArchive(t)
	turns, err := a.Turns(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("got %d turns for empty date", len(turns))
	}
}

func TestRecordTurnTrimsPerDay(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxTurnsPerDay+10; i++ {
		if err := a.RecordTurn(ctx, testTurn(ts, fmt.Sprintf("msg %d", i))); err != nil {
			t.Fatalf("RecordTurn: %v", err)
		}
	}
	turns, err := a.Turns(ctx, "2026-08-28")
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != maxTurnsPerDay {
		t.Fatalf("got %d turns, want %d", len(turns), maxTurnsPerDay)
	}
	// Oldest entries were trimmed away.
	if turns[0].UserMessage != "msg 10" {
		t.Errorf("oldest kept = %q, want msg 10", turns[0].UserMessage)
	}
}

func TestDrop(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	if err := a.RecordTurn(ctx, testTurn(ts, "hello")); err != nil {
		t.Fatal(err)
	}
	if err := a.Drop(ctx, "2026-08-28"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	turns, err := a.Turns(ctx, "2026-08-28")
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 0 {
		t.Errorf("turns survived drop: %v", turns)
	}
}

func TestNilArchiveIsNoop(t *testing.T) {
	var a *EpisodeArchive
	ctx := context.Background()
	if err := a.RecordTurn(ctx, testTurn(time.Now(), "hi")); err != nil {
		t.Errorf("nil archive RecordTurn: %v", err)
	}
	if turns, err := a.Turns(ctx, "2026-08-28"); err != nil || turns != nil {
		t.Errorf("nil archive Turns = %v, %v", turns, err)
	}
	if err := a.Drop(ctx, "2026-08-28"); err != nil {
		t.Errorf("nil archive Drop: %v", err)
	}
}
