// Package main contains the entrypoint for the Telegram userbot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/tguserbot/internal/api"
	"github.com/edgard/tguserbot/internal/bot"
	"github.com/edgard/tguserbot/internal/bot/handlers"
	"github.com/edgard/tguserbot/internal/bot/tasks"
	"github.com/edgard/tguserbot/internal/config"
	"github.com/edgard/tguserbot/internal/database"
	"github.com/edgard/tguserbot/internal/gemini"
	"github.com/edgard/tguserbot/internal/logger"
	"github.com/edgard/tguserbot/internal/purge"
	"github.com/edgard/tguserbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components and returns an
// exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var gemClient gemini.Client
	if cfg.TranslationEnabled() {
		gemClient, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
	} else {
		log.Info("Gemini API key not set, translation disabled")
	}

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Store:        store,
		Locker:       purge.NewChatLocker(cfg.Purge.Timeout + time.Minute),
		GeminiClient: gemClient,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.RecordHistory(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	transport := telegram.NewTransport(tg, store, telegram.NewDeleteLimiter(cfg.Purge), log)
	engine, err := purge.NewEngine(transport, purge.Config{
		BatchSize:   cfg.Purge.BatchSize,
		PageSize:    cfg.Purge.PageSize,
		GracePeriod: cfg.Purge.GracePeriod,
		Timeout:     cfg.Purge.Timeout,
		NoticeText:  cfg.Messages.PurgeCompleteMsg,
	}, purge.WithLogger(log))
	if err != nil {
		log.Error("Failed to create purge engine", "error", err)
		return 1
	}
	// The engine sends through the bot, so it is wired after the bot exists.
	hDeps.PurgeEngine = engine

	if err := telegram.RegisterHandlers(ctx, tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var apiServer *api.Server
	if cfg.Metrics.Addr != "" {
		apiServer = api.NewServer(cfg.Metrics.Addr, store, log)
	}

	app := bot.NewBot(log, tg, sched, apiServer)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
