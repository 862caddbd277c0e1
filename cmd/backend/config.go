package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Session    SessionConfig
	Storage    StorageConfig
	Log        LogConfig
	Generation GenerationConfig
	Output     OutputConfig
	Runner     RunnerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver         string // "mysql" or "sqlite"
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	Path           string
	MaxOpenConns   int
	MaxIdleConns   int
	AutoMigrate    bool
	MigrationsPath string
}

// SessionConfig holds session management configuration.
type SessionConfig struct {
	CookieName      string
	CookieSecret    string
	Duration        time.Duration
	Secure          bool
	CleanupInterval time.Duration
}

// StorageConfig holds blob storage configuration for generation history.
type StorageConfig struct {
	Type            string // "local" or "s3"
	BaseDir         string
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	S3PresignExpiry time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// GenerationConfig holds model provider and prompt configuration.
type GenerationConfig struct {
	Provider             string
	Model                string
	APIKey               string
	FrameworkAwarePrompt bool
	BedrockRegion        string
	BedrockAccessKey     string
	BedrockSecretKey     string
	MaxTokens            int
	MaxImageBytes        int64
	MaxBaseURLLength     int
}

// OutputConfig holds where generated artifacts are written.
type OutputConfig struct {
	Dir string
}

// RunnerConfig holds the downstream test command.
type RunnerConfig struct {
	Command string
	Args    []string
}

// loadDotEnv loads variables from envFile into the process environment.
// A missing file is not an error.
func loadDotEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// LoadConfig loads configuration from .env, the config file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The plain variable name is what the hosted API documents.
	if err := v.BindEnv("generation.api_key", "GENERATION_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "design_testgen")
	v.SetDefault("database.path", "./design-testgen.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.migrations_path", "database/migrations")

	v.SetDefault("session.cookie_name", "testgen_session")
	v.SetDefault("session.cookie_secret", "change-this-secret-in-production-min-32-chars")
	v.SetDefault("session.duration", "24h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.cleanup_interval", "5m")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_prefix", "")
	v.SetDefault("storage.s3_presign_expiry", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("generation.provider", "gemini")
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.framework_aware_prompt", false)
	v.SetDefault("generation.bedrock_region", "us-east-1")
	v.SetDefault("generation.bedrock_access_key", "")
	v.SetDefault("generation.bedrock_secret_key", "")
	v.SetDefault("generation.max_tokens", 8192)
	v.SetDefault("generation.max_image_bytes", 10<<20)
	v.SetDefault("generation.max_base_url_length", 2048)

	v.SetDefault("output.dir", "../playwright_project")

	v.SetDefault("runner.command", "pytest")
	v.SetDefault("runner.args", []string{"-s"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Database.Driver = v.GetString("database.driver")
	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.Path = v.GetString("database.path")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	config.Database.AutoMigrate = v.GetBool("database.auto_migrate")
	config.Database.MigrationsPath = v.GetString("database.migrations_path")

	config.Session.CookieName = v.GetString("session.cookie_name")
	config.Session.CookieSecret = v.GetString("session.cookie_secret")
	config.Session.Duration = v.GetDuration("session.duration")
	config.Session.Secure = v.GetBool("session.secure")
	config.Session.CleanupInterval = v.GetDuration("session.cleanup_interval")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3Prefix = v.GetString("storage.s3_prefix")
	config.Storage.S3PresignExpiry = v.GetDuration("storage.s3_presign_expiry")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Generation.Provider = v.GetString("generation.provider")
	config.Generation.Model = v.GetString("generation.model")
	config.Generation.APIKey = v.GetString("generation.api_key")
	config.Generation.FrameworkAwarePrompt = v.GetBool("generation.framework_aware_prompt")
	config.Generation.BedrockRegion = v.GetString("generation.bedrock_region")
	config.Generation.BedrockAccessKey = v.GetString("generation.bedrock_access_key")
	config.Generation.BedrockSecretKey = v.GetString("generation.bedrock_secret_key")
	config.Generation.MaxTokens = v.GetInt("generation.max_tokens")
	config.Generation.MaxImageBytes = v.GetInt64("generation.max_image_bytes")
	config.Generation.MaxBaseURLLength = v.GetInt("generation.max_base_url_length")

	config.Output.Dir = v.GetString("output.dir")

	config.Runner.Command = v.GetString("runner.command")
	config.Runner.Args = v.GetStringSlice("runner.args")

	return &config, nil
}
