// Package config provides configuration for the prompt-forge backend.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is built once at process start and passed down explicitly; core
// packages never read the environment themselves.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	StoreBackend string // file | sqlite
	SessionsDir  string
	DatabaseURL  string
	IndexPath    string

	// Gemini
	GeminiAPIKey string
	ModelName    string
	LLMTimeout   time.Duration

	// Auth
	JWTSecret string
	JWTExpiry time.Duration
}

// Load reads configuration from environment variables (and an optional
// config.yml next to the binary) with sane defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8080)
	v.SetDefault("store_backend", BackendFile)
	v.SetDefault("sessions_dir", "sessions")
	v.SetDefault("database_url", "file:promptforge.db?cache=shared&mode=rwc")
	v.SetDefault("index_path", "sessions/index.json")
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("llm_timeout_ms", 60000)
	v.SetDefault("jwt_secret", "change-me-in-production")
	v.SetDefault("jwt_expire_minutes", 1440)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Original deployments export the Gemini key as GOOGLE_API_KEY.
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		HTTPPort:     v.GetInt("http_port"),
		StoreBackend: v.GetString("store_backend"),
		SessionsDir:  v.GetString("sessions_dir"),
		DatabaseURL:  v.GetString("database_url"),
		IndexPath:    v.GetString("index_path"),
		GeminiAPIKey: v.GetString("gemini_api_key"),
		ModelName:    v.GetString("model_name"),
		LLMTimeout:   time.Duration(v.GetInt("llm_timeout_ms")) * time.Millisecond,
		JWTSecret:    v.GetString("jwt_secret"),
		JWTExpiry:    time.Duration(v.GetInt("jwt_expire_minutes")) * time.Minute,
	}, nil
}
