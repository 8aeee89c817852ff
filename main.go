package main

import (
	"log/slog"
	"os"

	"github.com/intervox-ai/backend/repository"
	"github.com/intervox-ai/backend/services"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Setup structured logging with JSON format
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	config := services.LoadConfig()

	server := services.NewServer(config)

	if config.Database.URL != "" {
		db, err := gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{
			Logger: logger.Default.LogMode(gormLogLevel(config.Database.LogLevel)),
		})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		sqlDB, err := db.DB()
		if err != nil {
			slog.Error("Failed to access underlying connection pool", "error", err)
			os.Exit(1)
		}
		sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
		defer sqlDB.Close()

		store := repository.NewSessionStore(db)
		if err := store.AutoMigrate(); err != nil {
			slog.Error("Failed to migrate database schema", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to database")

		server.SetDatabase(store, db)
	} else {
		slog.Warn("Database URL not configured, running without persistence")
	}

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
