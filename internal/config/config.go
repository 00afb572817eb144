package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port"`
}

type ClusterConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MockSeed     int64         `yaml:"mock_seed"`
}

type AIConfig struct {
	Provider      string        `yaml:"provider"` // "gemini", "openai", or empty to pick by key
	GeminiModel   string        `yaml:"gemini_model"`
	OpenAIModel   string        `yaml:"openai_model"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	Timeout       time.Duration `yaml:"timeout"`

	// Keys come from the environment only, never from the config file.
	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend"` // "bolt" (default), "redis", "memory"
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type NATSConfig struct {
	URL string `yaml:"url"` // empty disables event publishing
}

type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"` // empty means stdout exporter
}

type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	AI        AIConfig        `yaml:"ai"`
	Store     StoreConfig     `yaml:"store"`
	NATS      NATSConfig      `yaml:"nats"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Load reads the yaml config at path (missing file is fine: defaults
// apply), then layers environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case os.IsNotExist(err):
			// run on defaults + env
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port: 8080,
		},
		Cluster: ClusterConfig{
			Endpoint:     "https://api.devnet.xandeum.com:8899",
			Timeout:      3 * time.Second,
			PollInterval: 30 * time.Second,
			MockSeed:     time.Now().UnixNano(),
		},
		AI: AIConfig{
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend: "bolt",
			Path:    "./xandalyze.db",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = env("XANDALYZE_ENV", cfg.Env)
	cfg.Server.Port = envInt("PORT", cfg.Server.Port)
	cfg.Cluster.Endpoint = env("XANDALYZE_RPC_URL", cfg.Cluster.Endpoint)
	cfg.Cluster.Timeout = envDuration("XANDALYZE_RPC_TIMEOUT", cfg.Cluster.Timeout)
	cfg.Cluster.PollInterval = envDuration("XANDALYZE_POLL_INTERVAL", cfg.Cluster.PollInterval)

	cfg.AI.Provider = env("XANDALYZE_AI_PROVIDER", cfg.AI.Provider)
	cfg.AI.GeminiAPIKey = env("GOOGLE_API_KEY", env("GEMINI_API_KEY", ""))
	cfg.AI.OpenAIAPIKey = env("OPENAI_API_KEY", "")
	cfg.AI.GeminiModel = env("GEMINI_MODEL_NAME", cfg.AI.GeminiModel)
	cfg.AI.Timeout = envDuration("XANDALYZE_AI_TIMEOUT", cfg.AI.Timeout)

	cfg.Store.Backend = env("XANDALYZE_STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Path = env("XANDALYZE_STORE_PATH", cfg.Store.Path)
	cfg.Store.RedisAddr = env("XANDALYZE_REDIS_ADDR", cfg.Store.RedisAddr)

	cfg.NATS.URL = env("XANDALYZE_NATS_URL", cfg.NATS.URL)
	cfg.Telemetry.OTLPEndpoint = env("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("unknown environment: %s", c.Env)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Cluster.Endpoint == "" {
		return fmt.Errorf("cluster endpoint is required")
	}
	if c.Cluster.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	switch c.Store.Backend {
	case "bolt", "redis", "memory":
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "bolt" && c.Store.Path == "" {
		return fmt.Errorf("store path is required for the bolt backend")
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required for the redis backend")
	}
	return nil
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
