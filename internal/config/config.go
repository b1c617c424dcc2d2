package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	coreconfig "github.com/go-core-fx/config"
)

const (
	DefaultBaseURL  = "http://localhost:3000"
	defaultCurrency = "USD"
	defaultLanguage = "en-US"
)

type Config struct {
	APIBaseURL  string        `koanf:"api_base_url"`
	APIToken    string        `koanf:"api_token"`
	TokenFile   string        `koanf:"token_file"`
	Timeout     time.Duration `koanf:"timeout"`
	ExportDir   string        `koanf:"export_dir"`
	Currency    string        `koanf:"currency"`
	Language    string        `koanf:"language"`
	Concurrency int           `koanf:"concurrency"`
	LLMBaseURL  string        `koanf:"llm_base_url"`
	LLMAPIKey   string        `koanf:"llm_api_key"`
	LLMModel    string        `koanf:"llm_model"`
	LLMTimeout  time.Duration `koanf:"llm_timeout"`
	LogFile     string        `koanf:"log_file"`
	Debug       bool          `koanf:"debug"`
}

func New() (Config, error) {
	cfg := Config{
		APIBaseURL:  DefaultBaseURL,
		TokenFile:   defaultTokenFile(),
		Timeout:     20 * time.Second,
		ExportDir:   ".",
		Currency:    defaultCurrency,
		Language:    defaultLanguage,
		Concurrency: 4,
		LLMTimeout:  60 * time.Second,
		LogFile:     "./bi-dashboard.log",
		Debug:       false,
	}

	if err := coreconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bi-dashboard", "token")
}
