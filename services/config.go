package services

import (
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LiveKit   LiveKitConfig
	Storage   StorageConfig
	Interview InterviewConfig
	Retention RetentionConfig
	WebSocket WebSocketConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL          string
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

type LiveKitConfig struct {
	URL       string
	APIKey    string
	APISecret string
}

type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type InterviewConfig struct {
	MaxQuestionsPerPhase int
}

type RetentionConfig struct {
	Days          int
	SweepInterval string
}

type WebSocketConfig struct {
	AllowedOrigins string
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.log_level", "silent")
	viper.SetDefault("database.max_idle_conns", "10")
	viper.SetDefault("database.max_open_conns", "100")
	viper.SetDefault("livekit.url", "")
	viper.SetDefault("livekit.api_key", "")
	viper.SetDefault("livekit.api_secret", "")
	viper.SetDefault("storage.bucket", "")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("storage.endpoint", "")
	viper.SetDefault("storage.access_key", "")
	viper.SetDefault("storage.secret_key", "")
	viper.SetDefault("interview.max_questions_per_phase", "5")
	viper.SetDefault("retention.days", "30")
	viper.SetDefault("retention.sweep_interval", "24h")
	viper.SetDefault("websocket.allowed_origins", "")

	// Map environment variables to config keys
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("database.log_level", "DATABASE_LOG_LEVEL")
	viper.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	viper.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	viper.BindEnv("livekit.url", "LIVEKIT_URL")
	viper.BindEnv("livekit.api_key", "LIVEKIT_API_KEY")
	viper.BindEnv("livekit.api_secret", "LIVEKIT_API_SECRET")
	viper.BindEnv("storage.bucket", "STORAGE_BUCKET")
	viper.BindEnv("storage.region", "STORAGE_REGION")
	viper.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	viper.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	viper.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	viper.BindEnv("interview.max_questions_per_phase", "INTERVIEW_MAX_QUESTIONS_PER_PHASE")
	viper.BindEnv("retention.days", "RETENTION_DAYS")
	viper.BindEnv("retention.sweep_interval", "RETENTION_SWEEP_INTERVAL")
	viper.BindEnv("websocket.allowed_origins", "WEBSOCKET_ALLOWED_ORIGINS")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Warn("Config file not found, using defaults and environment variables")
		} else {
			slog.Error("Error reading config file", "error", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
		},
		Database: DatabaseConfig{
			URL:          viper.GetString("database.url"),
			LogLevel:     viper.GetString("database.log_level"),
			MaxIdleConns: viper.GetInt("database.max_idle_conns"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
		},
		LiveKit: LiveKitConfig{
			URL:       viper.GetString("livekit.url"),
			APIKey:    viper.GetString("livekit.api_key"),
			APISecret: viper.GetString("livekit.api_secret"),
		},
		Storage: StorageConfig{
			Bucket:    viper.GetString("storage.bucket"),
			Region:    viper.GetString("storage.region"),
			Endpoint:  viper.GetString("storage.endpoint"),
			AccessKey: viper.GetString("storage.access_key"),
			SecretKey: viper.GetString("storage.secret_key"),
		},
		Interview: InterviewConfig{
			MaxQuestionsPerPhase: viper.GetInt("interview.max_questions_per_phase"),
		},
		Retention: RetentionConfig{
			Days:          viper.GetInt("retention.days"),
			SweepInterval: viper.GetString("retention.sweep_interval"),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins: viper.GetString("websocket.allowed_origins"),
		},
	}
}
