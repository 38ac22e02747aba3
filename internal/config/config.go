package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Parser    ParserConfig
	Consensus ConsensusConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Email     EmailConfig
}

// EmailConfig holds email delivery settings for review notifications.
type EmailConfig struct {
	Provider     string `mapstructure:"provider"`
	Region       string `mapstructure:"region"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	ReviewerList string `mapstructure:"reviewer_list"`
	FrontendURL  string `mapstructure:"frontend_url"`
}

// QueueConfig holds parse queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM parser provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds LLM extraction settings for the fast/expert pair.
// Fast answers quickly and cheaply; expert is the slower, stronger model
// whose answer wins conflicts under the default weight policy.
type ParserConfig struct {
	Fast   ParserProviderConfig `mapstructure:"fast"`
	Expert ParserProviderConfig `mapstructure:"expert"`
}

// ConsensusConfig holds the merge policy settings.
type ConsensusConfig struct {
	// ModelWeight is one of prefer_fast, prefer_expert, require_match.
	ModelWeight string `mapstructure:"model_weight"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the VERIDOC_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VERIDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "veridoc")
	v.SetDefault("db.password", "veridoc_secret")
	v.SetDefault("db.name", "veridoc_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "veridoc")

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "veridoc-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 5)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-west-1")
	v.SetDefault("email.from_address", "noreply@veridoc.example")
	v.SetDefault("email.from_name", "Veridoc")
	v.SetDefault("email.reviewer_list", "")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Parser defaults: openai as the fast model, claude as the expert
	v.SetDefault("parser.fast.provider", "openai")
	v.SetDefault("parser.fast.api_key", "")
	v.SetDefault("parser.fast.default_model", "gpt-4o-mini")
	v.SetDefault("parser.fast.max_retries", 2)
	v.SetDefault("parser.fast.timeout_secs", 60)
	v.SetDefault("parser.expert.provider", "claude")
	v.SetDefault("parser.expert.api_key", "")
	v.SetDefault("parser.expert.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("parser.expert.max_retries", 2)
	v.SetDefault("parser.expert.timeout_secs", 120)

	// Consensus defaults
	v.SetDefault("consensus.model_weight", "prefer_expert")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "VERIDOC_SERVER_PORT",
		"server.read_timeout":  "VERIDOC_SERVER_READ_TIMEOUT",
		"server.write_timeout": "VERIDOC_SERVER_WRITE_TIMEOUT",
		"server.environment":   "VERIDOC_SERVER_ENVIRONMENT",
		"db.host":              "VERIDOC_DB_HOST",
		"db.port":              "VERIDOC_DB_PORT",
		"db.user":              "VERIDOC_DB_USER",
		"db.password":          "VERIDOC_DB_PASSWORD",
		"db.name":              "VERIDOC_DB_NAME",
		"db.sslmode":           "VERIDOC_DB_SSLMODE",
		"db.max_open":          "VERIDOC_DB_MAX_OPEN",
		"db.max_idle":          "VERIDOC_DB_MAX_IDLE",
		"jwt.secret":           "VERIDOC_JWT_SECRET",
		"jwt.access_expiry":    "VERIDOC_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":   "VERIDOC_JWT_REFRESH_EXPIRY",
		"jwt.issuer":           "VERIDOC_JWT_ISSUER",
		"s3.region":            "VERIDOC_S3_REGION",
		"s3.bucket":            "VERIDOC_S3_BUCKET",
		"s3.endpoint":          "VERIDOC_S3_ENDPOINT",
		"s3.access_key":        "VERIDOC_S3_ACCESS_KEY",
		"s3.secret_key":        "VERIDOC_S3_SECRET_KEY",
		"s3.max_file_size_mb":  "VERIDOC_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":    "VERIDOC_S3_PRESIGN_EXPIRY",
		"log.level":            "VERIDOC_LOG_LEVEL",
		"log.format":           "VERIDOC_LOG_FORMAT",
		"cors.allowed_origins":        "VERIDOC_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":    "VERIDOC_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":           "VERIDOC_QUEUE_MAX_RETRIES",
		"queue.concurrency":           "VERIDOC_QUEUE_CONCURRENCY",
		"parser.fast.provider":        "VERIDOC_PARSER_FAST_PROVIDER",
		"parser.fast.api_key":         "VERIDOC_PARSER_FAST_API_KEY",
		"parser.fast.default_model":   "VERIDOC_PARSER_FAST_DEFAULT_MODEL",
		"parser.fast.max_retries":     "VERIDOC_PARSER_FAST_MAX_RETRIES",
		"parser.fast.timeout_secs":    "VERIDOC_PARSER_FAST_TIMEOUT_SECS",
		"parser.expert.provider":      "VERIDOC_PARSER_EXPERT_PROVIDER",
		"parser.expert.api_key":       "VERIDOC_PARSER_EXPERT_API_KEY",
		"parser.expert.default_model": "VERIDOC_PARSER_EXPERT_DEFAULT_MODEL",
		"parser.expert.max_retries":   "VERIDOC_PARSER_EXPERT_MAX_RETRIES",
		"parser.expert.timeout_secs":  "VERIDOC_PARSER_EXPERT_TIMEOUT_SECS",
		"consensus.model_weight":      "VERIDOC_CONSENSUS_MODEL_WEIGHT",
		"email.provider":              "VERIDOC_EMAIL_PROVIDER",
		"email.region":                "VERIDOC_EMAIL_REGION",
		"email.from_address":          "VERIDOC_EMAIL_FROM_ADDRESS",
		"email.from_name":             "VERIDOC_EMAIL_FROM_NAME",
		"email.reviewer_list":         "VERIDOC_EMAIL_REVIEWER_LIST",
		"email.frontend_url":          "VERIDOC_EMAIL_FRONTEND_URL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if VERIDOC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("VERIDOC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parser = ParserConfig{
		Fast: ParserProviderConfig{
			Provider:     v.GetString("parser.fast.provider"),
			APIKey:       v.GetString("parser.fast.api_key"),
			DefaultModel: v.GetString("parser.fast.default_model"),
			MaxRetries:   v.GetInt("parser.fast.max_retries"),
			TimeoutSecs:  v.GetInt("parser.fast.timeout_secs"),
		},
		Expert: ParserProviderConfig{
			Provider:     v.GetString("parser.expert.provider"),
			APIKey:       v.GetString("parser.expert.api_key"),
			DefaultModel: v.GetString("parser.expert.default_model"),
			MaxRetries:   v.GetInt("parser.expert.max_retries"),
			TimeoutSecs:  v.GetInt("parser.expert.timeout_secs"),
		},
	}

	cfg.Consensus = ConsensusConfig{
		ModelWeight: v.GetString("consensus.model_weight"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Email = EmailConfig{
		Provider:     v.GetString("email.provider"),
		Region:       v.GetString("email.region"),
		FromAddress:  v.GetString("email.from_address"),
		FromName:     v.GetString("email.from_name"),
		ReviewerList: v.GetString("email.reviewer_list"),
		FrontendURL:  v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
