package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	medivault "github.com/set-night/medivault"
	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/handler"
	"github.com/set-night/medivault/internal/middleware"
	"github.com/set-night/medivault/internal/repository"
	"github.com/set-night/medivault/internal/service"
	"github.com/set-night/medivault/internal/telegram"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("storage ready", "backend", cfg.StorageBackend)

	// Initialize services
	backend := service.NewBackendClient(cfg.BackendURL)
	objects := service.NewCloudinaryClient(cfg.ObjectStoreURL, cfg.UploadPreset, cfg.UploadFolder)
	workspaces := service.NewWorkspaces(store, objects, service.NewOrchestrator(backend))
	selection := service.NewSelectionCache(config.SelectionTTL)

	// The ops logger needs the bot, so the recover middleware reads it late
	var ops *telegram.OpsLogger
	recoverMW := func(next bot.HandlerFunc) bot.HandlerFunc {
		return middleware.Recover(ops)(next)
	}

	opts := []bot.Option{
		bot.WithMiddlewares(
			recoverMW,
			middleware.Logging(),
			middleware.Access(cfg.IsAllowed),
			middleware.WorkspaceLoader(workspaces),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message != nil && update.Message.Text != "" {
				_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   "Unknown command. Send /help to see what I can do.",
				})
			}
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}
	ops = telegram.NewOpsLogger(b, cfg)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	h := handler.New(handler.Deps{
		Bot:        b,
		Cfg:        cfg,
		Workspaces: workspaces,
		Selection:  selection,
		Backend:    backend,
		Ops:        ops,
		InFlight:   middleware.NewInFlight(),
	})
	h.Register()

	if title, err := backend.Ping(ctx); err != nil {
		slog.Warn("backend not reachable at startup", "url", backend.BaseURL(), "error", err)
	} else {
		slog.Info("backend reachable", "url", backend.BaseURL(), "title", title)
	}

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}

// openStore connects the configured key-value backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageBolt:
		s, err := repository.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.StoragePostgres:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		migrationsFS, err := fs.Sub(medivault.MigrationsFS, "migrations")
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("load embedded migrations: %w", err)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil

	case config.StorageRedis:
		s, err := repository.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.StorageMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
