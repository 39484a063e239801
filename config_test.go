package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if config.Port != "5000" {
		t.Errorf("Expected Port to be '5000', got '%s'", config.Port)
	}

	if config.ViewportWidth != 1366 {
		t.Errorf("Expected ViewportWidth to be 1366, got %d", config.ViewportWidth)
	}

	if config.ViewportHeight != 768 {
		t.Errorf("Expected ViewportHeight to be 768, got %d", config.ViewportHeight)
	}

	if config.TypingDelayMs != 200 {
		t.Errorf("Expected TypingDelayMs to be 200, got %d", config.TypingDelayMs)
	}

	if config.MarkIntervalMs != 800 {
		t.Errorf("Expected MarkIntervalMs to be 800, got %d", config.MarkIntervalMs)
	}

	if config.LoginPollAttempts != 15 {
		t.Errorf("Expected LoginPollAttempts to be 15, got %d", config.LoginPollAttempts)
	}

	if config.Headless != false {
		t.Error("Expected Headless to be false")
	}

	if config.BaseURL == "" || config.LoginURL == "" || config.GameURL == "" {
		t.Error("Expected site URLs to be set")
	}

	if config.Locale != "ko-KR" {
		t.Errorf("Expected Locale to be 'ko-KR', got '%s'", config.Locale)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dhlotto-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "test-config.yaml")

	config := DefaultConfig()
	config.Port = "8080"
	config.Headless = true
	config.MarkIntervalMs = 500

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.Port != config.Port {
		t.Errorf("Expected Port to be '%s', got '%s'", config.Port, loadedConfig.Port)
	}

	if loadedConfig.Headless != config.Headless {
		t.Errorf("Expected Headless to be %v, got %v", config.Headless, loadedConfig.Headless)
	}

	if loadedConfig.MarkIntervalMs != config.MarkIntervalMs {
		t.Errorf("Expected MarkIntervalMs to be %d, got %d", config.MarkIntervalMs, loadedConfig.MarkIntervalMs)
	}
}

func TestLoadConfigCreatesDefaultIfMissing(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dhlotto-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "new-config.yaml")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Expected default config file to be created")
	}

	if config.GameURL != DefaultConfig().GameURL {
		t.Errorf("Expected default GameURL, got '%s'", config.GameURL)
	}
}

func TestConfigPacingFallbacks(t *testing.T) {
	config := &Config{}

	if config.typingDelay() != 200 {
		t.Errorf("Expected typingDelay fallback 200, got %d", config.typingDelay())
	}
	if config.fieldSettle() != 800 {
		t.Errorf("Expected fieldSettle fallback 800, got %d", config.fieldSettle())
	}
	if config.markInterval() != 800 {
		t.Errorf("Expected markInterval fallback 800, got %d", config.markInterval())
	}
	if config.loginPolls() != 15 {
		t.Errorf("Expected loginPolls fallback 15, got %d", config.loginPolls())
	}

	config.TypingDelayMs = 50
	if config.typingDelay() != 50 {
		t.Errorf("Expected configured typingDelay 50, got %d", config.typingDelay())
	}
}
