package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/telegram-bolao-bot/internal/bot"
	"github.com/ad/telegram-bolao-bot/internal/config"
	"github.com/ad/telegram-bolao-bot/internal/domain"
	"github.com/ad/telegram-bolao-bot/internal/locale"
	"github.com/ad/telegram-bolao-bot/internal/logger"
	"github.com/ad/telegram-bolao-bot/internal/sheets"
	"github.com/ad/telegram-bolao-bot/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logLevel := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logLevel)
	log.Info("Starting Bolao Registration Bot", "log_level", cfg.LogLevel)

	// Initialize database
	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Error("Failed to enable WAL mode", "error", err)
		os.Exit(1)
	}

	log.Info("Database opened", "path", cfg.DatabasePath)

	// Initialize DBQueue for safe concurrent access
	dbQueue := storage.NewDBQueue(db)
	defer dbQueue.Close()

	// Initialize database schema
	if err := storage.InitSchema(dbQueue); err != nil {
		log.Error("Failed to initialize database schema", "error", err)
		os.Exit(1)
	}
	log.Info("Database schema initialized")

	// Run database migrations
	if err := storage.RunMigrations(dbQueue); err != nil {
		log.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	log.Info("Database migrations completed")

	// Create stores
	sessionStorage := storage.NewSessionStorage(dbQueue, log)
	weeklyGuard := storage.NewWeeklyGuard(dbQueue, log)

	log.Info("Stores created")

	// Cleanup stale conversation sessions on startup
	cleanupCtx := context.Background()
	if err := sessionStorage.CleanupStale(cleanupCtx); err != nil {
		log.Error("Failed to cleanup stale sessions", "error", err)
		// Don't exit, just log the error
	} else {
		log.Info("Stale sessions cleaned up")
	}

	// Prune guard entries older than the retention window
	oldest := domain.WeekKey(time.Now().UTC().AddDate(0, 0, -7*cfg.GuardRetentionWeeks))
	if err := weeklyGuard.PruneBefore(cleanupCtx, oldest); err != nil {
		log.Error("Failed to prune old guard entries", "error", err)
	} else {
		log.Info("Old guard entries pruned", "oldest_week", oldest)
	}

	// Create sheets gateway client
	gateway := sheets.New(cfg.SheetsWebAppURL, cfg.SheetsAPIKey, cfg.HTTPTimeout, log)
	log.Info("Sheets gateway client created")

	// Create localizer
	localizer, err := locale.NewLocalizer(cleanupCtx, locale.NewLocale(cfg.Locale))
	if err != nil {
		log.Error("Failed to create localizer", "error", err)
		os.Exit(1)
	}
	log.Info("Localizer created", "locale", cfg.Locale)

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize Telegram bot
	b, err := tgbot.New(cfg.TelegramToken)
	if err != nil {
		log.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	log.Info("Telegram bot created")

	// Get bot info for the referral deep link
	botInfo, err := b.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		os.Exit(1)
	}
	log.Info("Bot info retrieved", "username", botInfo.Username)

	// Create signup FSM
	signupFSM := bot.NewSignupFSM(
		sessionStorage,
		weeklyGuard,
		gateway,
		b,
		cfg,
		localizer,
		log,
		botInfo.Username,
	)
	log.Info("Signup FSM created")

	// Create bot handler
	handler := bot.NewBotHandler(
		b,
		signupFSM,
		weeklyGuard,
		cfg,
		localizer,
		log,
	)

	log.Info("Bot handler created")

	// Register command handlers
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, handler.HandleStart)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, handler.HandleHelp)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/semana", tgbot.MatchTypeExact, handler.HandleWeek)

	// Register message handler for the conversation flow
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "", tgbot.MatchTypePrefix, handler.HandleMessage)

	log.Info("Command handlers registered")

	// Start bot polling in a goroutine
	go func() {
		log.Info("Starting bot polling")
		b.Start(ctx)
	}()

	log.Info("Bot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("Shutdown signal received, stopping bot...")

	log.Info("Bot stopped successfully")
}
