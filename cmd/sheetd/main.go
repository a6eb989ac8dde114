package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/ad/telegram-bolao-bot/internal/config"
	"github.com/ad/telegram-bolao-bot/internal/logger"
	"github.com/ad/telegram-bolao-bot/internal/sheetserver"
	"github.com/ad/telegram-bolao-bot/internal/storage"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.LoadSheetd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logLevel)
	log.Info("Starting sheet server", "log_level", cfg.LogLevel)

	if cfg.APIKey == "" {
		log.Warn("SHEETS_API_KEY is not set, all writes will be rejected")
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Error("Failed to enable WAL mode", "error", err)
		os.Exit(1)
	}

	log.Info("Database opened", "path", cfg.DatabasePath)

	dbQueue := storage.NewDBQueue(db)
	defer dbQueue.Close()

	if err := sheetserver.InitSchema(dbQueue); err != nil {
		log.Error("Failed to initialize database schema", "error", err)
		os.Exit(1)
	}
	log.Info("Database schema initialized")

	store := sheetserver.NewRowStore(dbQueue, log)
	server := sheetserver.New(store, cfg.APIKey, log)

	log.Info("Sheet server listening", "bind", cfg.Bind)
	if err := http.ListenAndServe(cfg.Bind, server.Handler()); err != nil {
		log.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
