// Package brain drives the conversation pipeline: it calls the completion
// service, normalizes the model's noisy reply into a validated render
// event, triggers task delegation and memory updates, and guarantees the
// caller always gets a usable event back.
package brain

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ishigaki0302/avatar-desktop-agent/eventbus"
	"github.com/ishigaki0302/avatar-desktop-agent/llm"
)

// MaxRetries is the number of extra attempts after the first; three
// attempts total.
const MaxRetries = 2

const (
	memoryNoop   = "NOOP"
	fallbackText = "すみません、うまく応答できませんでした。もう一度お試しください。"

	// What goes into history when every attempt failed, so the next turn's
	// context shows a well-formed assistant reply.
	fallbackHistoryEntry = `{"text":"すみません、うまく応答できませんでした。","emotion":"confused","motion":"none","memory_update":"NOOP","task":null}`
)

// CompletionClient is the language-model collaborator.
type CompletionClient interface {
	Chat(ctx context.Context, system string, messages []llm.Message) (string, error)
}

// TaskDelegator runs a goal on the automation gateway. Every outcome —
// summary, policy denial, transport failure — comes back as a plain
// user-facing string; the brain never distinguishes them.
type TaskDelegator interface {
	Delegate(ctx context.Context, goal string) string
}

// MemoryProvider supplies persona/user context and accepts model-proposed
// free-text diffs. EnqueueUpdate must not block the response path.
type MemoryProvider interface {
	Context() string
	EnqueueUpdate(diff string)
}

// Broadcast pushes one event toward the UI.
type Broadcast func(evt eventbus.UIEvent)

type Brain struct {
	llm       CompletionClient
	delegator TaskDelegator
	memory    MemoryProvider
	history   *History
}

func New(llmClient CompletionClient, delegator TaskDelegator, memory MemoryProvider) *Brain {
	return &Brain{
		llm:       llmClient,
		delegator: delegator,
		memory:    memory,
		history:   NewHistory(MaxHistoryMessages),
	}
}

// History exposes the session window for the relay's history endpoints.
func (b *Brain) History() *History { return b.history }

// Ask processes one user message and always returns a render event. Parse
// failures, empty text and transport errors each consume a retry; when all
// attempts are exhausted the fixed apologetic fallback is returned. This
// call never fails outward.
func (b *Brain) Ask(ctx context.Context, userMessage string, broadcast Broadcast) eventbus.RenderEvent {
	system := buildSystemPrompt(b.memory.Context())
	b.history.Append(llm.RoleUser, userMessage)

	connectivityReported := false
	for attempt := 1; attempt <= MaxRetries+1; attempt++ {
		raw, err := b.llm.Chat(ctx, system, b.history.Messages())
		if err != nil {
			log.Printf("⚠️ [BRAIN] attempt %d: completion failed: %v", attempt, err)
			if !connectivityReported && isConnectivityError(err) {
				broadcast(eventbus.NewStatus(eventbus.StateError, "Ollama に接続できません"))
				connectivityReported = true
			}
			continue
		}
		log.Printf("🧠 [BRAIN] attempt %d: raw completion (%d chars)", attempt, utf8.RuneCountInString(raw))

		parsed, ok := ExtractJSON(raw)
		if !ok {
			log.Printf("⚠️ [BRAIN] attempt %d: no JSON found", attempt)
			continue
		}

		text := strings.TrimSpace(stringField(parsed, "text"))
		if text == "" {
			log.Printf("⚠️ [BRAIN] attempt %d: empty text", attempt)
			continue
		}

		// Delegation and memory updates ride on the successful attempt;
		// their failures are reported via events or logs, never retried.
		b.handleTask(ctx, parsed, broadcast)
		b.handleMemoryUpdate(parsed)

		evt := eventbus.NormalizeRender(text, parsed["emotion"], parsed["motion"])
		if assistantRaw, err := json.Marshal(parsed); err == nil {
			b.history.Append(llm.RoleAssistant, string(assistantRaw))
		}
		return evt
	}

	log.Printf("❌ [BRAIN] all attempts exhausted, using fallback")
	b.history.Append(llm.RoleAssistant, fallbackHistoryEntry)
	return eventbus.NewRender(fallbackText, eventbus.EmotionConfused, eventbus.MotionNone)
}

// handleTask delegates a requested goal and reports the outcome. The
// delegator embeds the policy gate, so a blocked goal comes back as a
// denial message without the gateway ever being contacted.
func (b *Brain) handleTask(ctx context.Context, parsed map[string]interface{}, broadcast Broadcast) {
	taskField, ok := parsed["task"].(map[string]interface{})
	if !ok {
		return
	}
	goal := strings.TrimSpace(stringField(taskField, "goal"))
	if goal == "" {
		return
	}

	broadcast(eventbus.NewStatus(eventbus.StateRunning, "タスク実行中: "+truncateRunes(goal, 40)))
	summary := b.delegator.Delegate(ctx, goal)
	broadcast(eventbus.NewResult(summary, nil))
}

func (b *Brain) handleMemoryUpdate(parsed map[string]interface{}) {
	update, ok := parsed["memory_update"].(string)
	if !ok {
		return
	}
	update = strings.TrimSpace(update)
	if update == "" || update == memoryNoop {
		return
	}
	b.memory.EnqueueUpdate(update)
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// isConnectivityError reports whether a completion failure looks like the
// model server being unreachable, which is worth a one-time status event.
func isConnectivityError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
