// Bridge entrypoint: wires the memory store, Ollama client, OpenClaw
// delegator and event hub together and serves the local relay API.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ishigaki0302/avatar-desktop-agent/brain"
	"github.com/ishigaki0302/avatar-desktop-agent/config"
	"github.com/ishigaki0302/avatar-desktop-agent/eventbus"
	"github.com/ishigaki0302/avatar-desktop-agent/llm"
	"github.com/ishigaki0302/avatar-desktop-agent/memory"
	"github.com/ishigaki0302/avatar-desktop-agent/openclaw"
	"github.com/ishigaki0302/avatar-desktop-agent/server"
)

func main() {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()
	cfg := config.Load()

	log.Printf("🚀 [BRIDGE] starting avatar bridge")

	mem := memory.New(cfg.Memory.Dir)
	defer mem.Close()

	llmClient := llm.NewClient(llm.Config{
		BaseURL:          cfg.Ollama.BaseURL,
		Model:            cfg.Ollama.Model,
		MaxPredictTokens: cfg.Ollama.MaxPredictTokens,
		Timeout:          cfg.Ollama.Timeout,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := llmClient.Ping(pingCtx); err != nil {
		log.Printf("⚠️ [BRIDGE] Ollama not reachable at %s: %v", cfg.Ollama.BaseURL, err)
	}
	cancel()

	policy := openclaw.NewPolicy()
	if cfg.OpenClaw.PolicyFile != "" {
		pc, err := openclaw.LoadPolicyFile(cfg.OpenClaw.PolicyFile)
		if err != nil {
			log.Printf("⚠️ [BRIDGE] could not load policy file: %v", err)
		} else {
			policy.Extend(pc)
			log.Printf("🔒 [BRIDGE] loaded %d extra deny patterns", len(pc.DenyPatterns))
		}
	}
	claw := openclaw.NewClient(cfg.OpenClaw.GatewayURL, cfg.OpenClaw.APIKey, policy)

	b := brain.New(llmClient, claw, mem)

	hub := eventbus.NewHub()
	if cfg.NATS.URL != "" {
		bus, err := eventbus.NewNATSBus(eventbus.NATSConfig{URL: cfg.NATS.URL, Subject: cfg.NATS.Subject})
		if err != nil {
			log.Printf("⚠️ [BRIDGE] NATS mirror disabled: %v", err)
		} else {
			hub.AttachMirror(bus)
			defer bus.Close()
			log.Printf("📨 [BRIDGE] mirroring UI events to NATS subject %s", cfg.NATS.Subject)
		}
	}

	var archive *memory.EpisodeArchive
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Printf("⚠️ [BRIDGE] Redis not reachable, episode archive disabled: %v", err)
		} else {
			archive = memory.NewEpisodeArchive(rdb)
			consolidator := memory.NewConsolidator(archive, mem.Store)
			if err := consolidator.Start(); err != nil {
				log.Printf("⚠️ [BRIDGE] episode consolidation disabled: %v", err)
			} else {
				defer consolidator.Stop()
			}
		}
	}

	srv := server.New(b, hub, mem, archive)
	addr := cfg.BridgeAddr()
	log.Printf("📡 [BRIDGE] listening on http://%s", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("❌ [BRIDGE] server failed: %v", err)
	}
}
