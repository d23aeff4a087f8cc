package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
)

const (
	openAIKeyEnv          = "OPENAI_API_KEY"
	openAIModelEnv        = "OPENAI_MODEL"
	openAIBaseURLEnv      = "OPENAI_BASE_URL"
	languageCredsEnv      = "NATURAL_LANGUAGE_CREDENTIALS"
	includeCommonEnv      = "ENTITY_INCLUDE_COMMON"
	requireEntityEnv      = "REQUIRE_ENTITY_MODEL"
	entityCacheSizeEnv    = "ENTITY_CACHE_SIZE"
	portEnv               = "PORT"
	sessionCapacityEnv    = "SESSION_CAPACITY"
	sessionIdleTimeoutEnv = "SESSION_IDLE_TIMEOUT"
	sessionPurgeEnv       = "SESSION_PURGE_SCHEDULE"
)

// Config is resolved once at startup and shared read-only afterwards.
type Config struct {
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Base64 encoded service account JSON for the Natural Language API.
	LanguageCredentials string
	IncludeCommonNouns  bool
	RequireEntityModel  bool
	EntityCacheSize     int

	Port               string
	SessionCapacity    int
	SessionIdleTimeout time.Duration
	SessionPurgeSpec   string
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded (%v), using process environment", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup, so tests can skip the real environment.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		OpenAIKey:           get(openAIKeyEnv, ""),
		OpenAIModel:         get(openAIModelEnv, openai.GPT4),
		OpenAIBaseURL:       get(openAIBaseURLEnv, ""),
		LanguageCredentials: get(languageCredsEnv, ""),
		Port:                get(portEnv, "8080"),
		SessionPurgeSpec:    get(sessionPurgeEnv, "*/5 * * * *"),
	}

	var err error
	if cfg.IncludeCommonNouns, err = parseBool(includeCommonEnv, get(includeCommonEnv, "false")); err != nil {
		return Config{}, err
	}
	if cfg.RequireEntityModel, err = parseBool(requireEntityEnv, get(requireEntityEnv, "false")); err != nil {
		return Config{}, err
	}
	if cfg.EntityCacheSize, err = parsePositiveInt(entityCacheSizeEnv, get(entityCacheSizeEnv, "256")); err != nil {
		return Config{}, err
	}
	if cfg.SessionCapacity, err = parsePositiveInt(sessionCapacityEnv, get(sessionCapacityEnv, "1024")); err != nil {
		return Config{}, err
	}

	idle := get(sessionIdleTimeoutEnv, "30m")
	cfg.SessionIdleTimeout, err = time.ParseDuration(idle)
	if err != nil || cfg.SessionIdleTimeout <= 0 {
		return Config{}, fmt.Errorf("%s must be a positive duration, got %q", sessionIdleTimeoutEnv, idle)
	}

	return cfg, nil
}

func (c Config) SentimentEnabled() bool {
	return c.OpenAIKey != ""
}

// Warnings lists configuration problems that disable a feature without stopping the server.
func (c Config) Warnings() []string {
	var warnings []string
	if !c.SentimentEnabled() {
		warnings = append(warnings, fmt.Sprintf("%s is not set: sentiment analysis is unavailable.", openAIKeyEnv))
	}
	if c.LanguageCredentials == "" {
		warnings = append(warnings, fmt.Sprintf("%s is not set: entity extraction will return no results.", languageCredsEnv))
	}
	return warnings
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	return b, nil
}

func parsePositiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}
