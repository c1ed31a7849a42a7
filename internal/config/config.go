package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	// HTTP server
	Addr           string
	FrontendOrigin string

	// Persistence
	DatabasePath string

	// LLM provider selection: "gemini", "groq" or "none".
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// Optional Telegram notifications for finished planning jobs.
	TelegramBotToken string
	TelegramChatID   int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		Addr:           envOr("ECOFOOD_ADDR", ":8000"),
		FrontendOrigin: envOr("FRONTEND_ORIGIN", "http://localhost:3000"),
		DatabasePath:   envOr("ECOFOOD_DB_PATH", "data/ecofood.db"),
		LLMProvider:    strings.ToLower(envOr("LLM_PROVIDER", "gemini")),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqModel:      envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
	}

	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "groq":
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	case "none":
		// The planner falls back to the built-in recipe catalogue.
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (expected gemini, groq or none)", cfg.LLMProvider)
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		parsed, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatID, err)
		}
		cfg.TelegramChatID = parsed
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
