package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/NochesTranquilas/internal/api"
	"github.com/Kerhoff/NochesTranquilas/internal/config"
	"github.com/Kerhoff/NochesTranquilas/internal/handlers"
	"github.com/Kerhoff/NochesTranquilas/internal/metrics"
	"github.com/Kerhoff/NochesTranquilas/internal/notify"
	"github.com/Kerhoff/NochesTranquilas/internal/repository/memory"
	"github.com/Kerhoff/NochesTranquilas/internal/repository/postgres"
	"github.com/Kerhoff/NochesTranquilas/internal/service"
	"github.com/Kerhoff/NochesTranquilas/internal/telegram"
	"github.com/Kerhoff/NochesTranquilas/pkg/jwt"
	"github.com/Kerhoff/NochesTranquilas/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	l.Info("Starting Noches Tranquilas...")

	loc, err := cfg.Location()
	if err != nil {
		l.Fatalf("Invalid timezone: %v", err)
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	repos, closeStorage, err := openRepositories(ctx, cfg, l)
	if err != nil {
		l.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStorage()

	m := metrics.New()

	// Telegram bot, optional
	var bot *telegram.Bot
	notifier := notify.Notifier(notify.NewLogNotifier(l))
	if cfg.TelegramEnabled() {
		bot, err = telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		if cfg.OwnerChatID != 0 {
			notifier = notify.NewTelegramNotifier(bot, cfg.OwnerChatID)
		} else {
			l.Warn("OWNER_CHAT_ID not set, owner notifications go to the log")
		}
	}

	// Service layer
	svc := service.New(l, repos,
		service.WithNotifier(notifier),
		service.WithMetrics(m),
		service.WithLocation(loc),
	)

	if cfg.AdminUsername != "" {
		if _, err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			l.Fatalf("Failed to bootstrap admin: %v", err)
		}
	} else {
		l.Warn("ADMIN_USERNAME not set, no administrator is created")
	}

	if bot != nil {
		registerCommands(bot, svc, l)
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	// Metrics server
	metricsServer := m.NewServer(cfg.PrometheusPort)
	go func() {
		l.Infof("Metrics server listening on :%s", cfg.PrometheusPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("Metrics server error: %v", err)
		}
	}()

	// HTTP API
	tokens := jwt.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL, "noches-tranquilas")
	apiServer := api.NewServer(svc, tokens, l, api.WithMetrics(m))
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	l.Info("Noches Tranquilas started successfully")

	<-ctx.Done()
	l.Info("Received shutdown signal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Metrics server shutdown error: %v", err)
	}

	l.Info("Noches Tranquilas stopped")
}

// openRepositories returns the repositories of the configured storage and a
// function releasing it.
func openRepositories(ctx context.Context, cfg *config.Config, l *logrus.Logger) (service.Repositories, func(), error) {
	if cfg.Storage == config.StorageMemory {
		l.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return service.Repositories{
			Users:         store.Users(),
			Credentials:   store.Credentials(),
			Babies:        store.Babies(),
			Events:        store.Events(),
			Summaries:     store.Summaries(),
			Notifications: store.Notifications(),
		}, func() {}, nil
	}

	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		return service.Repositories{}, nil, err
	}

	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		db.Close()
		return service.Repositories{}, nil, err
	}

	return service.Repositories{
		Users:         postgres.NewUserRepository(db.DB),
		Credentials:   postgres.NewCredentialRepository(db.DB),
		Babies:        postgres.NewBabyRepository(db.DB),
		Events:        postgres.NewEventRepository(db.DB),
		Summaries:     postgres.NewSummaryRepository(db.DB),
		Notifications: postgres.NewNotificationRepository(db.DB),
	}, func() { db.Close() }, nil
}

func registerCommands(bot *telegram.Bot, svc *service.Service, l *logrus.Logger) {
	bot.RegisterCommand("start", "", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", "Ver la ayuda", handlers.NewHelpHandler())
	bot.RegisterCommand("vincular", "Vincular tu cuenta de padre o madre", handlers.NewLinkHandler(svc, l))

	// Routine
	bot.RegisterCommand("evento", "Registrar un evento", handlers.NewEventHandler(svc, l))
	bot.RegisterCommand("tipos", "Ver los tipos de evento", handlers.NewTypesHandler())
	bot.RegisterCommand("inicio", "Iniciar la rutina nocturna", handlers.NewRoutineStartHandler(svc, l))
	bot.RegisterCommand("fin", "Finalizar la rutina y ver el resumen", handlers.NewRoutineEndHandler(svc, l))
	bot.RegisterCommand("hoy", "Ver los eventos de hoy", handlers.NewTodayHandler(svc, l))
}
