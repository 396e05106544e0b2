package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenbasket/farmdash/config"
	cachemem "github.com/greenbasket/farmdash/internal/cache/memory"
	"github.com/greenbasket/farmdash/internal/domain"
	"github.com/greenbasket/farmdash/internal/kafka"
	"github.com/greenbasket/farmdash/internal/notify"
	"github.com/greenbasket/farmdash/internal/orderapi"
	"github.com/greenbasket/farmdash/internal/ports"
	rest "github.com/greenbasket/farmdash/internal/transport/http"
	"github.com/greenbasket/farmdash/internal/usecase"
	"github.com/greenbasket/farmdash/pkg/logger"
	"github.com/greenbasket/farmdash/pkg/metrics"
	"github.com/greenbasket/farmdash/pkg/telemetry"
	"github.com/greenbasket/farmdash/pkg/validate"
)

// App — собранное приложение и его внешние интерфейсы.
type App struct {
	Logger          ports.Logger
	HTTPServer      *http.Server
	Sync            *usecase.SyncEngine
	syncInterval    time.Duration
	gracefulTimeout time.Duration
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Шина событий смены статуса (опциональна).
	var events ports.EventPublisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		events = kafka.NewPublisher(kafka.PublisherConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logg)
		logg.Infof(ctx, "status events enabled topic=%s brokers=%v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}

	// Сборка зависимостей доменного слоя.
	requester := domain.Requester{ID: cfg.Farmer.ID, Email: cfg.Farmer.Email, Name: cfg.Farmer.Name}
	orderCache := cachemem.NewCollectionCache(cfg.Cache.TTL)
	gateway := orderapi.NewClient(cfg.OrderAPI.BaseURL, cfg.OrderAPI.Timeout, logg)
	orderValidator := validate.NewOrderValidator()
	store := usecase.NewOrderStore()
	bus := notify.NewBus()

	retry := usecase.RetryPolicy{MaxRetries: cfg.Sync.RetryMax, Base: cfg.Sync.RetryDelay}
	syncEngine := usecase.NewSyncEngine(gateway, orderCache, store, bus, orderValidator, logg, requester, retry)
	mutations := usecase.NewMutationCoordinator(gateway, orderCache, store, bus, events, logg, requester)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(syncEngine, mutations, store, bus, logg)
	router := rest.NewRouter(httpHandler, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		Sync:            syncEngine,
		syncInterval:    cfg.Sync.Interval,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if cerr := events.Close(); cerr != nil {
			logg.Warnf(ctx, "event publisher close error: %v", cerr)
		}
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и цикл фоновой синхронизации; ждёт отмены
// контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Первичная загрузка коллекции; неуспех не фатален — фоновый цикл
	// и ручное обновление попробуют ещё.
	if err := a.Sync.FetchOrders(ctx, false); err != nil {
		a.Logger.Warnf(ctx, "initial orders fetch failed: %v", err)
	}

	// Цикл фоновой синхронизации.
	go a.backgroundSync(ctx)

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		a.Logger.Warnf(ctx, "background error: %v", err)
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}

// backgroundSync — периодическое фоновое обновление: кэш-first, без
// видимого индикатора; новые заказы всплывают уведомлением.
func (a *App) backgroundSync(ctx context.Context) {
	interval := a.syncInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Sync.FetchOrders(ctx, false); err != nil {
				a.Logger.Warnf(ctx, "background sync failed: %v", err)
			}
		}
	}
}
