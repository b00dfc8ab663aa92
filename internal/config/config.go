package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	AWS      AWSConfig
	Satscan  SatscanConfig
	Watch    WatchConfig
}

// DatabaseConfig holds database configuration. An empty URL disables the discovery log.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AWSConfig holds AWS/S3 configuration. An empty bucket disables the spectrum archive.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
}

// SatscanConfig holds the locations shared with the acquisition process
type SatscanConfig struct {
	InputDir    string
	OutputDir   string
	SearchDepth int
}

// WatchConfig holds the watch client configuration
type WatchConfig struct {
	APIURL       string
	PollInterval time.Duration
	InputWait    time.Duration
	Tick         time.Duration
}

var keys = []string{
	"DATABASE_URL",
	"PORT",
	"ENVIRONMENT",
	"ALLOWED_ORIGINS",
	"AWS_REGION",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"S3_BUCKET",
	"S3_ENDPOINT",
	"SATSCAN_INPUT_DIR",
	"SATSCAN_OUTPUT_DIR",
	"SATSCAN_SEARCH_DEPTH",
	"SATSCAN_API_URL",
	"WATCH_POLL_INTERVAL",
	"WATCH_INPUT_WAIT",
	"WATCH_TICK",
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("SATSCAN_INPUT_DIR", "satscandata/input")
	v.SetDefault("SATSCAN_OUTPUT_DIR", "satscandata/output")
	v.SetDefault("SATSCAN_SEARCH_DEPTH", 2)
	v.SetDefault("SATSCAN_API_URL", "http://localhost:8080")
	v.SetDefault("WATCH_POLL_INTERVAL", "20s")
	v.SetDefault("WATCH_INPUT_WAIT", "60s")
	v.SetDefault("WATCH_TICK", "1s")

	// Environment variables bind first so ENVIRONMENT can pick the .env file
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	env := v.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev" // Use "dev" to match .env.dev filename
	}

	v.SetConfigName(".env." + env)
	v.SetConfigType("env")
	v.AddConfigPath(".")

	// Read .env file (ignore error if file doesn't exist)
	_ = v.ReadInConfig()

	var config Config
	config.Database.URL = v.GetString("DATABASE_URL")
	config.Server.Port = v.GetString("PORT")
	config.Server.Env = env
	config.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	config.AWS.Region = v.GetString("AWS_REGION")
	config.AWS.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Bucket = v.GetString("S3_BUCKET")
	config.AWS.S3Endpoint = v.GetString("S3_ENDPOINT")
	config.Satscan.InputDir = v.GetString("SATSCAN_INPUT_DIR")
	config.Satscan.OutputDir = v.GetString("SATSCAN_OUTPUT_DIR")
	config.Satscan.SearchDepth = v.GetInt("SATSCAN_SEARCH_DEPTH")
	config.Watch.APIURL = strings.TrimRight(v.GetString("SATSCAN_API_URL"), "/")
	config.Watch.PollInterval = v.GetDuration("WATCH_POLL_INTERVAL")
	config.Watch.InputWait = v.GetDuration("WATCH_INPUT_WAIT")
	config.Watch.Tick = v.GetDuration("WATCH_TICK")

	log.Debug().
		Str("env", env).
		Str("inputDir", config.Satscan.InputDir).
		Str("outputDir", config.Satscan.OutputDir).
		Strs("allowedOrigins", config.Server.AllowedOrigins).
		Msg("Configuration loaded")

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
