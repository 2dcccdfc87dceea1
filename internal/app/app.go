package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"newswizard/internal/adapter/directive"
	"newswizard/internal/adapter/fetcher"
	"newswizard/internal/adapter/parser"
	"newswizard/internal/config"
	"newswizard/internal/dialog"
	"newswizard/internal/domain"
	"newswizard/internal/logger"
	"newswizard/internal/migrations"
	server "newswizard/internal/transport/http"
	"newswizard/internal/usecase"
	"newswizard/internal/worker"
	"newswizard/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App связывает HTTP-сервер навыка, хранилище разговоров и воркер очистки
// и управляет их запуском и остановкой.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	closeLog func()
	server   *http.Server
	worker   *worker.Worker
	store    storage.Store
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New собирает приложение по конфигурации.
func New(cfg *config.Config) (*App, error) {
	appLogger, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)

	store, err := newStore(context.Background(), cfg, appLogger)
	if err != nil {
		closeLog()
		return nil, err
	}

	httpFetcher := fetcher.NewHTTPFetcher(appLogger,
		max(cfg.Feeds.News.Timeout, cfg.Feeds.Rates.Timeout), cfg.Feeds.RequestsPerSecond)
	var ratesParser usecase.FeedParser = parser.NewRatesXMLParser(appLogger)
	if cfg.Feeds.Rates.Format == "json" {
		ratesParser = parser.NewRatesJSONParser(appLogger)
	}
	sources := map[domain.Topic]dialog.FeedSource{
		domain.TopicNews: usecase.NewFeedLoader(domain.TopicNews, cfg.Feeds.News.URL, cfg.Feeds.News.Timeout,
			httpFetcher, parser.NewNewsParser(appLogger), appLogger),
		domain.TopicRates: usecase.NewFeedLoader(domain.TopicRates, cfg.Feeds.Rates.URL, cfg.Feeds.Rates.Timeout,
			httpFetcher, ratesParser, appLogger),
	}

	router := dialog.NewRouter(appLogger, sources, directive.NewClient(nil, appLogger), dialog.Options{
		SkillName:          cfg.Skill.Name,
		PageSize:           cfg.Skill.PageSize,
		Progressive:        cfg.Progressive.Enabled,
		ProgressiveTimeout: cfg.Progressive.Timeout,
		Messages: dialog.Messages{
			Welcome:  cfg.Speech.Welcome,
			Help:     cfg.Speech.Help,
			Goodbye:  cfg.Speech.Goodbye,
			Sorry:    cfg.Speech.Sorry,
			Reprompt: cfg.Speech.Reprompt,
			About:    cfg.Speech.About,
		},
	})

	var convStore usecase.ConversationStore
	if store != nil {
		convStore = store
	}
	conversation := usecase.NewConversationUseCase(router, convStore, appLogger)

	handler, err := server.NewHandler(appLogger, conversation, cfg.Skill.ID)
	if err != nil {
		closeStore(store)
		closeLog()
		return nil, fmt.Errorf("failed to create handler: %w", err)
	}

	var sweepWorker *worker.Worker
	if sweeper, ok := store.(worker.Sweeper); ok {
		sweepWorker = worker.New(map[string]worker.Sweeper{cfg.Session.Backend: sweeper}, cfg.Session.SweepInterval, appLogger)
	}

	return &App{
		config:   cfg,
		logger:   appLogger,
		closeLog: closeLog,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           server.NewServer(appLogger, handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:   sweepWorker,
		store:    store,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// newStore открывает хранилище разговоров. Для backend envelope возвращает nil.
func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Store, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(cfg.Session.TTL, log), nil
	case config.BackendRedis:
		store := storage.NewRedisStore(storage.NewRedisClient(cfg.Redis), cfg.Session.TTL, log)
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case config.BackendPostgres:
		dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := migrations.Apply(ctx, log, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		return storage.NewPostgresStore(dbPool, cfg.Session.TTL, log), nil
	default:
		return nil, nil
	}
}

func closeStore(store storage.Store) {
	if store != nil {
		store.Close()
	}
}

// Run запускает воркер и HTTP-сервер и блокируется до сигнала завершения.
func (a *App) Run() error {
	a.logger.Info("Starting newswizard",
		slog.String("component", "app"),
		slog.String("session_backend", a.config.Session.Backend),
		slog.Int("page_size", a.config.Skill.PageSize),
	)
	if a.worker != nil {
		a.worker.Start()
		a.logger.Info("Conversation sweep started",
			slog.String("component", "app"),
			slog.Duration("interval", a.worker.Interval()),
		)
	}
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
			serveErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serveErr:
		a.Shutdown()
		return fmt.Errorf("http server: %w", err)
	}
	return a.Shutdown()
}

// Shutdown останавливает воркер и HTTP-сервер, закрывает хранилище и журналы.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown")
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	a.wg.Wait()
	closeStore(a.store)
	a.logger.Info("Application stopped gracefully")
	a.closeLog()
	return nil
}
