package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server configuration
	ServerPort  string   `yaml:"port"`
	Environment string   `yaml:"env"`
	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Database configuration
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	// Redis configuration
	RedisAddress string `yaml:"redis_address"`

	// JWT configuration
	JWTSecret string        `yaml:"jwt_secret"`
	AccessTTL time.Duration `yaml:"-"`

	Notify NotifyConfig `yaml:"notify"`
}

// NotifyConfig selects how watcher notifications leave the process.
type NotifyConfig struct {
	Backend     string `yaml:"backend"` // log, redis or mailgun
	QueueKey    string `yaml:"queue_key"`
	MailgunURL  string `yaml:"mailgun_url"`
	MailgunKey  string `yaml:"mailgun_key"`
	From        string `yaml:"from"`
	WorkerCount int    `yaml:"worker_count"`
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=disable",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
	)
}

func defaults() Config {
	return Config{
		ServerPort:   "8080",
		Environment:  "development",
		LogLevel:     "info",
		CORSOrigins:  []string{"https://gosshub.com"},
		DBHost:       "localhost",
		DBPort:       "5432",
		DBUser:       "postgres",
		DBPassword:   "postgres",
		DBName:       "gosshub",
		RedisAddress: "localhost:6379",
		AccessTTL:    time.Hour,
		Notify: NotifyConfig{
			Backend:     "log",
			QueueKey:    "gosshub:notifications",
			MailgunURL:  "https://api.eu.mailgun.net/v3/mail.gosshub.com",
			From:        "GossHub <mail@gosshub.com>",
			WorkerCount: 4,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, a .env file and finally the process environment.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	loadDotEnv()

	cfg.ServerPort = getEnv("PORT", cfg.ServerPort)
	cfg.Environment = getEnv("ENV", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.RedisAddress = getEnv("REDIS_ADDRESS", cfg.RedisAddress)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AccessTTL = time.Duration(getEnvInt("ACCESS_TTL_MINUTES", int(cfg.AccessTTL/time.Minute))) * time.Minute
	cfg.Notify.Backend = getEnv("NOTIFY_BACKEND", cfg.Notify.Backend)
	cfg.Notify.QueueKey = getEnv("NOTIFY_QUEUE_KEY", cfg.Notify.QueueKey)
	cfg.Notify.MailgunURL = getEnv("MAILGUN_URL", cfg.Notify.MailgunURL)
	cfg.Notify.MailgunKey = getEnv("MAILGUN_KEY", cfg.Notify.MailgunKey)
	cfg.Notify.From = getEnv("MAIL_FROM", cfg.Notify.From)
	cfg.Notify.WorkerCount = getEnvInt("WORKER_COUNT", cfg.Notify.WorkerCount)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateRandomSecret(32)
		log.Warn().Msg("JWT_SECRET not set, generated a random secret")
	}

	switch cfg.Notify.Backend {
	case "log", "redis", "mailgun":
	default:
		return cfg, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}

	return cfg, nil
}

func loadDotEnv() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Warn().Err(err).Str("path", envPath).Msg("error loading .env file")
		}
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// generateRandomSecret returns a hex secret built from length random bytes
func generateRandomSecret(length int) string {
	secret := make([]byte, length)
	_, _ = rand.Read(secret)
	return hex.EncodeToString(secret)
}
