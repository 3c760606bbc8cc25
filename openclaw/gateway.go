// Package openclaw delegates desktop tasks to an OpenClaw automation
// gateway and keeps the bridge's side of that boundary safe: a lexical
// policy gate in front, a bounded log digest behind.
package openclaw

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// delegateTimeout bounds one gateway exchange end to end.
const delegateTimeout = 70 * time.Second

const deniedMessage = "このタスクは許可されていません。"

// TaskConstraints accompany every delegated goal. The bridge always sends
// the conservative set: no credentials, no shell.
type TaskConstraints struct {
	NoCredential  bool `json:"no_credential"`
	AllowShell    bool `json:"allow_shell"`
	TimeBudgetSec int  `json:"time_budget_sec"`
}

type gatewayRequest struct {
	Type        string          `json:"type"`
	Goal        string          `json:"goal"`
	Constraints TaskConstraints `json:"constraints"`
}

type gatewayFrame struct {
	Type    string `json:"type"`
	Log     string `json:"log,omitempty"`
	Summary string `json:"summary,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client delegates goals over a WebSocket connection to the gateway.
// Every outcome — execution summary, policy denial, transport failure —
// is reported as a plain string so callers never branch on error types.
type Client struct {
	gatewayURL string
	apiKey     string
	policy     *Policy
	dialer     *websocket.Dialer
}

func NewClient(gatewayURL, apiKey string, policy *Policy) *Client {
	if policy == nil {
		policy = NewPolicy()
	}
	return &Client{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		policy:     policy,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Delegate gates the goal, executes it on the gateway and returns a
// user-facing summary string. A blocked goal never reaches the gateway.
func (c *Client) Delegate(ctx context.Context, goal string) string {
	if allowed, pattern := c.policy.Check(goal); !allowed {
		log.Printf("🚫 [OPENCLAW] goal blocked by deny pattern %q: %q", pattern, goal)
		return deniedMessage
	}

	if c.gatewayURL == "" {
		log.Printf("⚠️ [OPENCLAW] gateway URL not set — returning stub result")
		return fmt.Sprintf("[OpenClaw] ゲートウェイが未設定のため、タスク「%s」は実行されませんでした。", truncateRunes(goal, 60))
	}

	summary, err := c.execute(ctx, goal)
	if err != nil {
		log.Printf("❌ [OPENCLAW] delegation failed: %v", err)
		return "タスク実行中にエラーが発生しました: " + truncateRunes(err.Error(), 100)
	}
	return summary
}

// execute performs one request/response exchange: a single execute frame
// out, then frames in until a result or error arrives or the time budget
// expires. The connection is closed before any failure is surfaced.
func (c *Client) execute(ctx context.Context, goal string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, delegateTimeout)
	defer cancel()

	header := http.Header{}
	if c.apiKey != "" {
		header.Set("Authorization", "Bearer "+c.apiKey)
	}
	conn, resp, err := c.dialer.DialContext(ctx, c.gatewayURL, header)
	if err != nil {
		return "", fmt.Errorf("gateway dial: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	req := gatewayRequest{
		Type: "execute",
		Goal: goal,
		Constraints: TaskConstraints{
			NoCredential:  true,
			AllowShell:    false,
			TimeBudgetSec: 60,
		},
	}
	if err := conn.WriteJSON(req); err != nil {
		return "", fmt.Errorf("gateway send: %w", err)
	}

	var progress strings.Builder
	for {
		var frame gatewayFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return "", fmt.Errorf("gateway read: %w", err)
		}
		switch frame.Type {
		case "log":
			if frame.Log != "" {
				progress.WriteString(frame.Log)
				progress.WriteString("\n")
			}
		case "result":
			logText := frame.Log
			if logText == "" {
				logText = progress.String()
			}
			if logText == "" {
				if frame.Summary != "" {
					return truncateRunes(frame.Summary, MaxLogChars), nil
				}
				return "タスクは完了しましたが、実行ログはありませんでした。", nil
			}
			return SummarizeLog(logText, MaxLogChars), nil
		case "error":
			if frame.Message != "" {
				return "", errors.New(frame.Message)
			}
			return "", errors.New("gateway reported an error")
		default:
			// Unknown frame types are ignored for forward compatibility.
		}
	}
}
