package brain

import "github.com/ishigaki0302/avatar-desktop-agent/llm"

// MaxHistoryMessages bounds the rolling window of user+assistant turns
// sent to the model.
const MaxHistoryMessages = 20

// History is the session-scoped conversation window. It is owned by
// exactly one Brain and mutated only through Append; the bridge processes
// one conversation at a time, so there is no locking. If concurrent
// sessions are ever introduced, each needs its own History instance or an
// explicit lock around Append.
type History struct {
	max  int
	msgs []llm.Message
}

func NewHistory(max int) *History {
	if max <= 0 {
		max = MaxHistoryMessages
	}
	return &History{max: max}
}

// Append adds a turn and trims to the most recent max entries.
func (h *History) Append(role, content string) {
	h.msgs = append(h.msgs, llm.Message{Role: role, Content: content})
	if len(h.msgs) > h.max {
		h.msgs = h.msgs[len(h.msgs)-h.max:]
	}
}

// Messages returns a copy of the current window, oldest first.
func (h *History) Messages() []llm.Message {
	out := make([]llm.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

func (h *History) Len() int { return len(h.msgs) }

// Reset clears the window.
func (h *History) Reset() { h.msgs = nil }
