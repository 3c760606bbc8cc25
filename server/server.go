// Package server is the local relay between the UI process and the brain:
// it accepts chat messages over HTTP and streams render/status/result
// events back over SSE. It holds no decision logic of its own.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/ishigaki0302/avatar-desktop-agent/brain"
	"github.com/ishigaki0302/avatar-desktop-agent/eventbus"
	"github.com/ishigaki0302/avatar-desktop-agent/memory"
)

const maxMessageChars = 4000

// Conversant is the brain as the relay sees it: one message in, one
// render event out, never an error.
type Conversant interface {
	Ask(ctx context.Context, userMessage string, broadcast brain.Broadcast) eventbus.RenderEvent
	History() *brain.History
}

type ChatRequest struct {
	Message string `json:"message"`
}

type Server struct {
	brain   Conversant
	hub     *eventbus.Hub
	memory  *memory.Memory
	archive *memory.EpisodeArchive // optional, may be nil

	// Serializes chat processing: the bridge is single-flight by
	// construction, concurrent submissions queue here.
	chatMu sync.Mutex

	router *mux.Router
}

func New(b Conversant, hub *eventbus.Hub, mem *memory.Memory, archive *memory.EpisodeArchive) *Server {
	s := &Server{brain: b, hub: hub, memory: mem, archive: archive}
	s.router = mux.NewRouter()
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/chat", s.handleChat).Methods("POST")
	s.router.HandleFunc("/events", s.handleEvents).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/history", s.handleGetHistory).Methods("GET")
	s.router.HandleFunc("/history", s.handleClearHistory).Methods("DELETE")
	s.router.HandleFunc("/memory", s.handleGetMemory).Methods("GET")
}

// Router exposes the handler for tests and for ListenAndServe.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		// No write timeout: /events holds its connection open.
	}
	return srv.ListenAndServe()
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		s.writeError(w, "message is required", http.StatusBadRequest)
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageChars {
		s.writeError(w, "message too long", http.StatusBadRequest)
		return
	}

	s.chatMu.Lock()
	defer s.chatMu.Unlock()

	s.hub.Broadcast(eventbus.NewStatus(eventbus.StateRunning, "考え中..."))
	evt := s.brain.Ask(r.Context(), req.Message, s.hub.Broadcast)
	s.hub.Broadcast(evt)
	s.hub.Broadcast(eventbus.NewStatus(eventbus.StateIdle, "Ready"))

	if s.archive != nil {
		turn := memory.Turn{
			Timestamp:     time.Now(),
			UserMessage:   req.Message,
			AssistantText: evt.Text,
			Emotion:       string(evt.Emotion),
			Motion:        string(evt.Motion),
		}
		if err := s.archive.RecordTurn(r.Context(), turn); err != nil {
			log.Printf("⚠️ [SERVER] failed to archive turn: %v", err)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, cancel := s.hub.Subscribe()
	defer cancel()
	log.Printf("📡 [SERVER] SSE client connected (total: %d)", s.hub.SubscriberCount())
	defer func() {
		log.Printf("📡 [SERVER] SSE client disconnected (total: %d)", s.hub.SubscriberCount()-1)
	}()

	// Initial idle status so a freshly connected UI renders "Ready".
	writeSSE(w, eventbus.NewStatus(eventbus.StateIdle, "Ready"))
	flusher.Flush()

	for {
		select {
		case evt, open := <-ch:
			if !open {
				return
			}
			writeSSE(w, evt)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, evt eventbus.UIEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("⚠️ [SERVER] failed to marshal %s event: %v", evt.EventType(), err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": s.brain.History().Messages(),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.brain.History().Reset()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"context": s.memory.Context(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	s.writeJSON(w, status, map[string]interface{}{"ok": false, "error": msg})
}
