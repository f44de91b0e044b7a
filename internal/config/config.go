// Package config loads runtime configuration from flags and the environment.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"copysmith/internal/category"
	"copysmith/internal/telemetry"
)

type Config struct {
	Port string
	Env  string
	App  string

	Provider  ProviderConfig
	Telemetry telemetry.Config
	Scoring   category.Weights
}

type ProviderConfig struct {
	// Kind selects the client: "gemini", "openai" or "fake".
	Kind          string
	GeminiModel   string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	Timeout       time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:      *port,
		Env:       env,
		App:       firstNonEmpty(strings.TrimSpace(os.Getenv("APP_NAME")), "copysmith"),
		Provider:  loadProviderConfig(env),
		Telemetry: loadTelemetryConfig(env),
		Scoring:   loadScoringConfig(),
	}, nil
}

func loadProviderConfig(env string) ProviderConfig {
	kind := strings.ToLower(strings.TrimSpace(os.Getenv("PROVIDER")))
	if kind == "" {
		if strings.EqualFold(env, "local") {
			kind = "fake"
		} else {
			kind = "gemini"
		}
	}
	return ProviderConfig{
		Kind:          kind,
		GeminiModel:   firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.5-flash"),
		OpenAIModel:   firstNonEmpty(strings.TrimSpace(os.Getenv("OPENAI_MODEL")), "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Timeout:       envDuration("PROVIDER_TIMEOUT", 60*time.Second),
	}
}

func loadTelemetryConfig(env string) telemetry.Config {
	return telemetry.Config{
		Endpoint:       strings.TrimSpace(os.Getenv("TELEMETRY_ENDPOINT")),
		Token:          strings.TrimSpace(os.Getenv("TELEMETRY_TOKEN")),
		App:            firstNonEmpty(strings.TrimSpace(os.Getenv("APP_NAME")), "copysmith"),
		Env:            env,
		MaxAttempts:    envInt("TELEMETRY_MAX_ATTEMPTS", 3),
		MinDelay:       envDuration("TELEMETRY_MIN_DELAY", 200*time.Millisecond),
		MaxDelay:       envDuration("TELEMETRY_MAX_DELAY", 5*time.Second),
		JitterRatio:    envFloat("TELEMETRY_JITTER_RATIO", 0.2),
		Deadline:       envDuration("TELEMETRY_DEADLINE", 15*time.Second),
		AttemptTimeout: envDuration("TELEMETRY_ATTEMPT_TIMEOUT", 3*time.Second),
	}
}

// loadScoringConfig exposes the category scoring weights. The defaults are
// untuned production heuristics, so they stay overridable.
func loadScoringConfig() category.Weights {
	w := category.DefaultWeights()
	w.Alias = envInt("CATEGORY_ALIAS_WEIGHT", w.Alias)
	w.AllowedWord = envInt("CATEGORY_WORD_WEIGHT", w.AllowedWord)
	w.MinAliasRunes = envInt("CATEGORY_MIN_ALIAS_RUNES", w.MinAliasRunes)
	w.MinWordRunes = envInt("CATEGORY_MIN_WORD_RUNES", w.MinWordRunes)
	return w
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
