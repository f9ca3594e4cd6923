package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ExtractorPDF     = "pdf"
	ExtractorFixture = "fixture"
)

type Config struct {
	LogLevel  string
	LogFormat string

	RawDocumentsDir string
	MetadataDir     string
	PoliciesDir     string

	TextExtractor   string
	ExtractMaxChars int

	SourceManifest      string
	FetchTimeout        time.Duration
	FetchRatePerSecond  float64
	FetchUserAgent      string
	FetchRetryAttempts  int
	FetchBreakerEnabled bool

	NATSURL           string
	NATSSubjectPrefix string

	MetricsTextfile string
}

func Load() Config {
	return Config{
		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		LogFormat: mustEnv("LOG_FORMAT", "json"),

		RawDocumentsDir: mustEnv("RAW_DOCUMENTS_DIR", "./raw_documents"),
		MetadataDir:     mustEnv("METADATA_DIR", "./metadata"),
		PoliciesDir:     mustEnv("POLICIES_DIR", "./policies"),

		TextExtractor:   strings.ToLower(mustEnv("TEXT_EXTRACTOR", ExtractorPDF)),
		ExtractMaxChars: mustEnvInt("EXTRACT_MAX_CHARS", 20000),

		SourceManifest:      mustEnv("SOURCE_MANIFEST", ""),
		FetchTimeout:        mustEnvDuration("FETCH_TIMEOUT", 60*time.Second),
		FetchRatePerSecond:  mustEnvFloat("FETCH_RATE_PER_SECOND", 1),
		FetchUserAgent:      mustEnv("FETCH_USER_AGENT", ""),
		FetchRetryAttempts:  mustEnvInt("FETCH_RETRY_ATTEMPTS", 1),
		FetchBreakerEnabled: mustEnvBool("FETCH_BREAKER_ENABLED", true),

		NATSURL:           mustEnv("NATS_URL", ""),
		NATSSubjectPrefix: mustEnv("NATS_SUBJECT_PREFIX", "policies.lifecycle"),

		MetricsTextfile: mustEnv("METRICS_TEXTFILE", ""),
	}
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if secs, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
