package main

import (
	"context"
	"errors"
	"fmt"
	"go-reviewlens/config"
	"go-reviewlens/cronjobs"
	"go-reviewlens/handlers"
	"go-reviewlens/nlp"
	"go-reviewlens/routes"
	"go-reviewlens/sentiment"
	"go-reviewlens/session"
	"log"

	language "cloud.google.com/go/language/apiv2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	warnings := cfg.Warnings()
	if cfg.SentimentEnabled() {
		log.Println("OPENAI_API_KEY loaded")
	}

	// Entity model client, built once and shared read-only
	var langClient *language.Client
	langClient, err = nlp.NewClient(context.Background(), cfg.LanguageCredentials)
	if err != nil {
		if cfg.RequireEntityModel {
			log.Fatalf("Failed to create Natural Language client: %v", err)
		}
		log.Printf("Entity extraction disabled: %v", err)
		if !errors.Is(err, nlp.ErrMissingCredentials) {
			warnings = append(warnings, fmt.Sprintf("Entity model failed to load (%v): entity extraction will return no results.", err))
		}
	} else {
		defer langClient.Close()
	}

	for _, w := range warnings {
		log.Printf("WARNING: %s", w)
	}

	analyzer := sentiment.NewAnalyzer(sentiment.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL), cfg.OpenAIModel)
	extractor := nlp.NewExtractor(langClient, nlp.Options{
		IncludeCommon: cfg.IncludeCommonNouns,
		CacheSize:     cfg.EntityCacheSize,
	})

	store, err := session.NewStore(cfg.SessionCapacity, cfg.SessionIdleTimeout)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}

	jobs, err := cronjobs.InitCronJobs(cfg.SessionPurgeSpec, store)
	if err != nil {
		log.Fatalf("Failed to start cron jobs: %v", err)
	}
	defer jobs.Stop()

	r := routes.SetupRouter(handlers.NewEnv(store, analyzer, extractor, warnings))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
