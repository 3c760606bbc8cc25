// Package config reads the bridge configuration from environment
// variables. cmd/bridge loads a .env file first, so a checked-in env file
// and real environment variables both work.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type OllamaConfig struct {
	BaseURL          string
	Model            string
	MaxPredictTokens int
	Timeout          time.Duration
}

type BridgeConfig struct {
	Host string
	Port int
}

type OpenClawConfig struct {
	GatewayURL string
	APIKey     string
	PolicyFile string
}

type MemoryConfig struct {
	Dir string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NATSConfig struct {
	URL     string
	Subject string
}

type Config struct {
	Ollama   OllamaConfig
	Bridge   BridgeConfig
	OpenClaw OpenClawConfig
	Memory   MemoryConfig
	Redis    RedisConfig
	NATS     NATSConfig
}

// Load reads the configuration, falling back to defaults suitable for a
// local single-user install. Redis and NATS are disabled unless their
// address is set.
func Load() Config {
	return Config{
		Ollama: OllamaConfig{
			BaseURL:          env("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:            env("OLLAMA_MODEL", "qwen3:8b"),
			MaxPredictTokens: envInt("OLLAMA_MAX_PREDICT_TOKENS", 512),
			Timeout:          time.Duration(envInt("OLLAMA_TIMEOUT_MS", 60000)) * time.Millisecond,
		},
		Bridge: BridgeConfig{
			Host: env("BRIDGE_HOST", "127.0.0.1"),
			Port: envInt("BRIDGE_PORT", 3000),
		},
		OpenClaw: OpenClawConfig{
			GatewayURL: env("OPENCLAW_GATEWAY_URL", ""),
			APIKey:     env("OPENCLAW_API_KEY", ""),
			PolicyFile: env("OPENCLAW_POLICY_FILE", ""),
		},
		Memory: MemoryConfig{
			Dir: env("MEMORY_DIR", "./storage/memory"),
		},
		Redis: RedisConfig{
			Addr:     env("REDIS_ADDR", ""),
			Password: env("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     env("NATS_URL", ""),
			Subject: env("NATS_SUBJECT", "avatar.ui.events"),
		},
	}
}

// BridgeAddr returns the host:port the relay listens on.
func (c Config) BridgeAddr() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Host, c.Bridge.Port)
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ [CONFIG] invalid int for %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
