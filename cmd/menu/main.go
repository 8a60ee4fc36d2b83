package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"indigo/internal/bot"
	"indigo/internal/catalog"
	"indigo/internal/config"
	"indigo/internal/database"
	"indigo/internal/domain"
	"indigo/internal/events"
	"indigo/internal/google"
	"indigo/internal/logging"
	"indigo/internal/metrics"
	"indigo/internal/models"
	"indigo/internal/recommend"
	"indigo/internal/repository"
	"indigo/internal/session"
	"indigo/internal/view"
	"indigo/internal/web"
	"indigo/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// publishingStore is a catalog store that announces its writes on the bus.
type publishingStore interface {
	domain.CatalogStore
	SetEventPublisher(publisher domain.EventPublisher)
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, seed, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()

	store, err := initStore(ctx, cfg, eventBus, &logger)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient, cache := initSnapshotCache(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	feed := catalog.NewFeed(store, cache, logging.Component(&logger, "catalog-feed"))
	feed.Attach(eventBus)
	defer feed.Close()

	if bridge := startBridge(ctx, redisClient, cfg, feed, eventBus, &logger); bridge != nil {
		defer bridge.Close()
	}

	startMetrics(ctx, cfg, &logger)

	if sqliteDB, ok := store.(*database.DB); ok && cfg.Backup.Enabled {
		backupService := database.NewBackupService(sqliteDB, cfg.Backup, logging.Component(&logger, "backup"))
		go backupService.Start(ctx)
	}

	startMirror(ctx, cfg, feed, &logger)

	recommender := recommend.NewClient(recommend.Config{
		APIKey:      cfg.Assistant.APIKey,
		Model:       cfg.Assistant.Model,
		BaseURL:     cfg.Assistant.BaseURL,
		Temperature: cfg.Assistant.Temperature,
		TopP:        cfg.Assistant.TopP,
	}, logging.Component(&logger, "assistant"))

	live := catalog.NewLive(feed, store)
	viewLogger := logging.Component(&logger, "view")
	newController := func(extra ...view.Option) *view.Controller {
		opts := []view.Option{view.WithPIN(cfg.Admin.PIN)}
		if len(seed) > 0 {
			opts = append(opts, view.WithSeed(seed))
		}
		return view.NewController(live, recommender, viewLogger, append(opts, extra...)...)
	}

	sessions := session.NewRegistry(func(onChange func()) *view.Controller {
		return newController(view.WithOnChange(onChange))
	}, cfg.Session.IdleTTL, logging.Component(&logger, "sessions"))
	go sessions.Run(ctx, time.Minute)
	defer sessions.Close()

	if cfg.Telegram.Enabled {
		customerView := newController()
		customerView.Start(ctx)
		defer customerView.Close()

		telegramBot, err := initBot(cfg, customerView, recommender, &logger)
		if err != nil {
			return err
		}
		go telegramBot.Start(ctx)
		defer telegramBot.Stop()
	}

	server := web.NewServer(cfg.HTTP, cfg.Session.CookieName, sessions, store, logging.Component(&logger, "http"))
	return serve(ctx, cfg, server, &logger)
}

func loadConfigAndLogger() (*config.Config, []models.MenuItem, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "menu-main").Logger()

	seedPath := os.Getenv("SEED_PATH")
	if seedPath == "" {
		seedPath = cfg.Seed.Path
	}
	if seedPath == "" {
		return cfg, nil, logger, closer, nil
	}

	seed, err := config.LoadSeed(seedPath)
	if err != nil {
		logger.Error().Err(err).Str("path", seedPath).Msg("Seed catalog validation failed")
		return nil, nil, zerolog.Logger{}, closer, err
	}
	logger.Info().Int("items", len(seed)).Str("path", seedPath).Msg("Seed catalog loaded")
	return cfg, seed, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if cfg.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
			return err
		}
	}
	if cfg.Backup.Enabled {
		if err := os.MkdirAll(cfg.Backup.StoragePath, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для бэкапов")
			return err
		}
	}
	return nil
}

func initStore(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) (domain.CatalogStore, error) {
	var (
		store publishingStore
		err   error
	)
	storeLogger := logging.Component(logger, "store")

	switch cfg.Database.Driver {
	case "postgres":
		store, err = database.NewPGStore(ctx, cfg.Database.Postgres.DSN(), storeLogger)
	default:
		store, err = database.NewDB(cfg.Database.Path, storeLogger)
	}
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("Ошибка инициализации базы данных")
		return nil, err
	}

	store.SetEventPublisher(bus)
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Catalog store ready")
	return store, nil
}

func initSnapshotCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SnapshotCache) {
	fallback := repository.NewMemorySnapshotCache(models.DefaultSnapshotTTL)
	if cfg.Redis.Address == "" {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if errPing := repository.Ping(ctx, redisClient); errPing != nil {
		logger.Warn().Err(errPing).Msg("Redis unavailable")
	}

	primary := repository.NewRedisSnapshotCache(redisClient, models.DefaultSnapshotTTL)
	return redisClient, repository.NewFailoverSnapshotCache(primary, fallback, logging.Component(logger, "snapshot-cache"))
}

func startBridge(
	ctx context.Context,
	client *redis.Client,
	cfg *config.Config,
	feed *catalog.Feed,
	bus *events.EventBus,
	logger *zerolog.Logger,
) *catalog.RedisBridge {
	if client == nil {
		return nil
	}

	bridge := catalog.NewRedisBridge(client, cfg.Redis.Channel, feed, logging.Component(logger, "catalog-bridge"))
	if err := bridge.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("catalog bridge disabled, changes from other instances will not be seen")
		return nil
	}
	bridge.Attach(bus)
	return bridge
}

func startMirror(ctx context.Context, cfg *config.Config, feed *catalog.Feed, logger *zerolog.Logger) {
	if !cfg.Google.MirrorEnabled() {
		return
	}

	mirror, err := google.NewSheetsMirror(ctx, cfg.Google.CredentialsFile, cfg.Google.MenuSpreadsheetID, cfg.Google.SheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without mirror")
		return
	}
	if err := mirror.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("Google Sheets connection test failed")
		return
	}

	logger.Info().Str("sheet", cfg.Google.SheetName).Msg("google sheets mirror connected")
	mirrorWorker := worker.NewMirrorWorker(feed, mirror, worker.DefaultRetryPolicy(), logging.Component(logger, "sheets-mirror"))
	go func() {
		if err := mirrorWorker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("sheets mirror stopped")
		}
	}()
}

func initBot(cfg *config.Config, menu bot.MenuView, recommender domain.Recommender, logger *zerolog.Logger) (*bot.Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return nil, err
	}
	botAPI.Debug = cfg.Telegram.Debug

	tgService := bot.NewTelegramService(bot.NewBotWrapper(botAPI))
	logger.Info().Str("username", botAPI.Self.UserName).Msg("Бот запущен...")
	return bot.NewBot(tgService, menu, recommender, logging.Component(logger, "telegram")), nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, cfg *config.Config, server *web.Server, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}
