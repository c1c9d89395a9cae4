package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ewintr.nl/ytinsight/fetcher"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

type Config struct {
	Port           int
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	YoutubeAPIKey  string
	OEmbedURL      string
	InnertubeURL   string
	CaptionLang    string
	TranscriberURL string
	TranscriberKey string
	HTTPTimeout    time.Duration
	LogLevel       slog.Level
}

// loadConfig reads the environment, after merging in a .env file when one
// is present.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid API_PORT: %w", err)
	}
	timeout, err := time.ParseDuration(getParam("HTTP_TIMEOUT", fetcher.DefaultHTTPTimeout.String()))
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getParam("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return Config{
		Port:           port,
		OpenAIKey:      getParam("OPENAI_API_KEY", ""),
		OpenAIModel:    getParam("OPENAI_MODEL", ""),
		OpenAIBaseURL:  getParam("OPENAI_BASE_URL", ""),
		YoutubeAPIKey:  getParam("YOUTUBE_API_KEY", ""),
		OEmbedURL:      getParam("OEMBED_URL", fetcher.DefaultOEmbedEndpoint),
		InnertubeURL:   getParam("INNERTUBE_URL", fetcher.DefaultInnertubeEndpoint),
		CaptionLang:    getParam("CAPTION_LANGUAGE", "en"),
		TranscriberURL: getParam("TRANSCRIBER_URL", ""),
		TranscriberKey: getParam("TRANSCRIBER_API_KEY", ""),
		HTTPTimeout:    timeout,
		LogLevel:       level,
	}, nil
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return def
}
