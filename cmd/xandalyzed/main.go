package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xandalyze/xandalyze/internal/api"
	"github.com/xandalyze/xandalyze/internal/assistant"
	"github.com/xandalyze/xandalyze/internal/cluster"
	"github.com/xandalyze/xandalyze/internal/completion"
	"github.com/xandalyze/xandalyze/internal/config"
	"github.com/xandalyze/xandalyze/internal/events"
	"github.com/xandalyze/xandalyze/internal/logger"
	"github.com/xandalyze/xandalyze/internal/metrics"
	"github.com/xandalyze/xandalyze/internal/pnode"
	"github.com/xandalyze/xandalyze/internal/registry"
	"github.com/xandalyze/xandalyze/internal/settings"
	"github.com/xandalyze/xandalyze/internal/store"
	"github.com/xandalyze/xandalyze/internal/telemetry"
)

func init() {
	if err := godotenv.Load("./.env"); err != nil {
		log.Println("No .env file found, reading from system environment")
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.KV, error) {
	switch cfg.Backend {
	case "redis":
		return store.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		return store.NewMemoryKV(), nil
	default:
		return store.OpenBolt(cfg.Path)
	}
}

func main() {
	configPath := flag.String("config", "./configs/xandalyzed.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("can't initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, "xandalyzed", cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			zlog.Fatal("telemetry init failed", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	metrics.Init()

	kv, err := openStore(ctx, cfg.Store)
	if err != nil {
		zlog.Fatal("store open failed", zap.Error(err))
	}
	defer kv.Close()

	rpcClient := cluster.NewClient(cfg.Cluster.Endpoint, cfg.Cluster.Timeout)
	reg := registry.New(rpcClient, cfg.Cluster.MockSeed, zlog)

	hub := api.NewHub(zlog)
	defer hub.Close()
	reg.OnUpdate(hub.Broadcast)

	var broker *events.Broker
	if cfg.NATS.URL != "" {
		broker, err = events.New(cfg.NATS.URL)
		if err != nil {
			zlog.Fatal("nats connect failed", zap.Error(err))
		}
		defer broker.Close()
		reg.OnUpdate(func(snap pnode.Snapshot) {
			if err := broker.PublishSnapshot(snap); err != nil {
				zlog.Warn("event publish failed", zap.Error(err))
			}
		})
	}

	gateway := completion.New(completion.Options{
		Provider:      cfg.AI.Provider,
		GeminiAPIKey:  cfg.AI.GeminiAPIKey,
		GeminiModel:   cfg.AI.GeminiModel,
		OpenAIAPIKey:  cfg.AI.OpenAIAPIKey,
		OpenAIModel:   cfg.AI.OpenAIModel,
		OpenAIBaseURL: cfg.AI.OpenAIBaseURL,
		Timeout:       cfg.AI.Timeout,
	})
	zlog.Info("completion backend selected", zap.String("provider", gateway.Name()))

	conv := assistant.NewConversation(ctx, kv)
	settingsSvc := settings.NewService(ctx, kv)
	orch := assistant.NewOrchestrator(conv, gateway, reg.Nodes, zlog)

	go reg.Run(ctx, cfg.Cluster.PollInterval)

	router := api.NewRouter(api.Deps{
		Registry:     reg,
		Orchestrator: orch,
		Settings:     settingsSvc,
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zlog.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("server shutdown failed", zap.Error(err))
	}
}
