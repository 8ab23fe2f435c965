// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server   ServerConfig
	YouTube  YouTubeConfig
	Quota    QuotaConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// YouTubeConfig contains YouTube Data API access settings.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type YouTubeConfig struct {
	APIKey           string
	CallDelay        time.Duration
	CommentsPerVideo int
}

// QuotaConfig contains the daily API quota budget.
type QuotaConfig struct {
	DailyLimit int
}

// AnalysisConfig bounds analysis requests.
type AnalysisConfig struct {
	MaxLookbackMonths int
	MaxResults        int
	KeywordLimit      int
}

// DatabaseConfig contains report storage configuration. Storage is optional.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Enabled        bool
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RabbitMQConfig contains report publishing configuration. Publishing is optional.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// APP_YOUTUBE_APIKEY maps onto youtube.apikey
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate reports missing or out-of-range settings.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.YouTube.APIKey) == "" {
		errs = append(errs, errors.New("youtube.apikey is required"))
	}
	if c.YouTube.CallDelay < 0 {
		errs = append(errs, fmt.Errorf("youtube.calldelay must not be negative, got %s", c.YouTube.CallDelay))
	}
	if c.Quota.DailyLimit <= 0 {
		errs = append(errs, fmt.Errorf("quota.dailylimit must be positive, got %d", c.Quota.DailyLimit))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.calldelay", 500*time.Millisecond)
	viper.SetDefault("youtube.commentspervideo", 20)

	// Quota
	viper.SetDefault("quota.dailylimit", 10000)

	// Analysis
	viper.SetDefault("analysis.maxlookbackmonths", 24)
	viper.SetDefault("analysis.maxresults", 100)
	viper.SetDefault("analysis.keywordlimit", 30)

	// Database
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "keyword_analytics")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "keyword.analytics")
	viper.SetDefault("rabbitmq.queue", "keyword.analytics.reports")
	viper.SetDefault("rabbitmq.routingkey", "report.generated")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
