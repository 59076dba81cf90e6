package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// ErrNoStore is returned when neither document store connection string is set.
var ErrNoStore = errors.New("MONGODB_URI or DATABASE_URL environment variable is required")

// Config holds everything the server reads from the environment at startup.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogNoColor bool   `env:"LOG_NO_COLOR"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectURL   string `env:"OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/auth/callback"`

	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	SecureCookies bool          `env:"SECURE_COOKIES"`

	MongoURI        string `env:"MONGODB_URI"`
	MongoDatabase   string `env:"MONGODB_DATABASE" envDefault:"chatbot"`
	MongoCollection string `env:"MONGODB_COLLECTION" envDefault:"chats"`
	DatabaseURL     string `env:"DATABASE_URL"`

	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	CompletionBaseURL string `env:"COMPLETION_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai"`
	CompletionModel   string `env:"COMPLETION_MODEL" envDefault:"gemini-1.5-flash"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.warnMissing()
	return cfg, nil
}

// Validate reports configuration the server cannot start without.
func (c Config) Validate() error {
	if c.MongoURI == "" && c.DatabaseURL == "" {
		return ErrNoStore
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// StoreDriver names the document store backend selected by the connection strings.
// MongoDB wins when both are set.
func (c Config) StoreDriver() string {
	if c.MongoURI != "" {
		return "mongo"
	}
	return "postgres"
}

func (c Config) warnMissing() {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		slog.Warn("google client credentials are not set, sign-in will fail")
	}
	if c.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, completions will fail")
	}
}
