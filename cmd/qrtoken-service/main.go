package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-shift-scheduler/internal/config"
	"github.com/pribylovaa/go-shift-scheduler/internal/notify"
	logctx "github.com/pribylovaa/go-shift-scheduler/internal/pkg/log"
	"github.com/pribylovaa/go-shift-scheduler/internal/service"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"
	mongostore "github.com/pribylovaa/go-shift-scheduler/internal/storage/mongo"
	redisstore "github.com/pribylovaa/go-shift-scheduler/internal/storage/redis"
	transport "github.com/pribylovaa/go-shift-scheduler/internal/transport/http"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Подключение к токен-хранилищу c таймаутом.
	str, err := openStorage(rootCtx, cfg)
	if err != nil {
		log.Error("storage_connect_failed",
			slog.String("backend", cfg.Token.Backend),
			slog.String("err", err.Error()),
		)
		rootCancel()
		os.Exit(1)
	}
	log.Info("storage_connected", slog.String("backend", cfg.Token.Backend))

	// Сервис валидации + issuer.
	srvc := service.New(str, cfg.Token)
	if cfg.Notify.WebhookURL != "" {
		srvc.SetNotifier(notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout))
		log.Info("notify_webhook_enabled")
	}

	issuer := service.NewIssuer(str, cfg.Token)
	go issuer.Run(logctx.Into(rootCtx, log))
	log.Info("issuer_started", slog.Duration("window", cfg.Token.Window))

	var ready int32 // 0 — not ready; 1 — ready
	opsAddr := cfg.Ops.Addr()

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:              opsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("ops_listen_start", "addr", opsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops_serve_failed", slog.String("err", err.Error()))
		}
	}()

	// Основной API-сервер.
	apiAddr := cfg.HTTP.Addr()
	apiSrv := &http.Server{
		Addr: apiAddr,
		Handler: transport.NewRouter(srvc, issuer, transport.Options{
			Logger:  log,
			Timeout: cfg.Timeouts.Service,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", apiAddr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	// Сервис готов: readiness=1.
	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = apiSrv.Close()
	}
	_ = opsSrv.Shutdown(context.Background())

	// Явная очистка перед выходом.
	shutdownCancel()
	rootCancel()
	_ = str.Close(context.Background())

	log.Info("service_stopped")
	os.Exit(0)
}

// openStorage — выбор токен-хранилища по конфигурации.
func openStorage(ctx context.Context, cfg *config.Config) (storage.TokenStorage, error) {
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.Token.Backend {
	case config.BackendRedis:
		return redisstore.New(cfg.Redis.URL, "qrtoken:"+cfg.Token.SlotID, cfg.Token.Retention)
	default:
		return mongostore.New(connCtx, cfg)
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
