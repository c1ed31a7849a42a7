package config

import (
	"testing"
)

func TestNewFromEnvDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ECOFOOD_ADDR", "")
	t.Setenv("ECOFOOD_DB_PATH", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv failed: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Errorf("Expected default addr :8000, got %s", cfg.Addr)
	}
	if cfg.DatabasePath != "data/ecofood.db" {
		t.Errorf("Expected default db path, got %s", cfg.DatabasePath)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("Expected default provider gemini, got %s", cfg.LLMProvider)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("Expected default gemini model, got %s", cfg.GeminiModel)
	}
}

func TestNewFromEnvMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "gemini")

	if _, err := NewFromEnv(); err == nil {
		t.Fatal("Expected error when GEMINI_API_KEY is missing")
	}
}

func TestNewFromEnvProviderNone(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "none")

	cfg, err := NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv failed: %v", err)
	}
	if cfg.LLMProvider != "none" {
		t.Errorf("Expected provider none, got %s", cfg.LLMProvider)
	}
}

func TestNewFromEnvBadChatID(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	if _, err := NewFromEnv(); err == nil {
		t.Fatal("Expected error for malformed TELEGRAM_CHAT_ID")
	}
}
