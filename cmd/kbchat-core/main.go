package main

// @title           KBChat Core API
// @version         1.0
// @description     Chat front-end over a hosted document-retrieval assistant service. Select a knowledge-base collection, ask questions, get grounded answers with resolved source links.

// @contact.name   KBChat OSS
// @contact.url    https://github.com/custodia-labs/kbchat-core/issues

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/kbchat-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/kbchat-core/internal/adapters/driven/memory"
	"github.com/custodia-labs/kbchat-core/internal/adapters/driven/openai"
	"github.com/custodia-labs/kbchat-core/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/kbchat-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/kbchat-core/internal/adapters/driving/http"
	"github.com/custodia-labs/kbchat-core/internal/config"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/services"
	"github.com/custodia-labs/kbchat-core/internal/runtime"
)

var version = "dev"

func main() {
	log.Printf("kbchat-core %s starting", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()

	// ===== Model selection =====
	model := runtime.ResolveModel(cfg.Model)
	if model.Fallback {
		log.Printf("Warning: model %q is not supported, using %s", model.Requested, model.Model)
	}
	log.Printf("Using assistant model %s", model.Model)

	// ===== Remote assistant service =====
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		log.Printf("Warning: assistant service unreachable at startup: %v", err)
	}

	// ===== Quota backend (Redis if available, otherwise Postgres, otherwise memory) =====
	var counter driven.UsageCounter
	switch {
	case cfg.RedisURL != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		counter = redisadapter.NewUsageCounter(redisClient)
		log.Println("Using Redis quota backend")

	case cfg.DatabaseURL != "":
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		counter = postgres.NewUsageCounter(db)
		log.Println("Using PostgreSQL quota backend")

	default:
		counter = memory.NewUsageCounter()
		log.Println("Using in-memory quota backend (single instance only)")
	}

	// ===== Gate =====
	gateAdapter := auth.NewAdapter(cfg.GateSecret)
	adminPassHash := ""
	if cfg.AdminPassword != "" {
		adminPassHash, err = gateAdapter.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
	} else {
		log.Println("ADMIN_PASSWORD not set; admin role disabled")
	}

	// ===== Attribute overrides (optional) =====
	overrides, err := config.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		log.Fatalf("Failed to load attribute overrides: %v", err)
	}
	if overrides != nil {
		log.Printf("Loaded attribute overrides from %s", cfg.OverridesFile)
	}

	// ===== Services (core business logic) =====
	resolver := services.NewResolverService(client, overrides, cfg.CacheTTL)
	directory := services.NewDirectoryService(client, cfg.CacheTTL)
	sessions := services.NewSessionService(client, resolver, model.Model, nil)
	access := services.NewAccessService(gateAdapter, counter, adminPassHash, nil)
	queries := services.NewQueryService(client, services.PollConfig{
		Interval: cfg.PollInterval,
		MaxWait:  cfg.PollMaxWait,
	}, nil)
	composer := services.NewComposerService(client, resolver)
	chat := services.NewChatService(directory, sessions, access, queries, composer, nil)

	// ===== HTTP server =====
	server := http.NewServer(
		http.Config{Host: cfg.Host, Port: cfg.Port, Version: version},
		model,
		access, chat, directory, resolver,
		client, counter,
	)

	log.Printf("API server starting on %s:%d", cfg.Host, cfg.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
