package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flatfile-shop/internal/config"
	handler "flatfile-shop/internal/handler/http"
	"flatfile-shop/internal/health"
	"flatfile-shop/internal/logger"
	"flatfile-shop/internal/metrics"
	middleware_http "flatfile-shop/internal/middleware/http"
	"flatfile-shop/internal/repository"
	"flatfile-shop/internal/service"
	"flatfile-shop/internal/storage"
	"flatfile-shop/internal/tracer"
	"flatfile-shop/internal/version"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

func newAPIHandler(store storage.Store, m *metrics.Metrics) http.Handler {
	productService := service.NewProductService(repository.NewProductRepository(store), m)
	cartService := service.NewCartService(repository.NewCartRepository(store), m)

	router := handler.NewRouter(
		handler.NewProductHandler(productService),
		handler.NewCartHandler(cartService),
	)
	return middleware_http.TraceMiddleware(m)(router)
}

func newOpsHandler(dataDir string) http.Handler {
	healthHandler := health.NewHandler(version.Version)
	healthHandler.Register("data_dir", health.DirWritable(dataDir))

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /healthz", healthHandler)
	mux.HandleFunc("GET /livez", health.LivenessHandler)
	mux.HandleFunc("GET /readyz", healthHandler.ReadinessHandler)
	return mux
}

func serve(ctx context.Context, server *http.Server, name string) {
	logger.Info(ctx, "HTTP server running", slog.String("server", name), slog.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, "Server failed", slog.String("server", name), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func main() {
	globalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Instance()
	logger.SetRemote(cfg.RemoteLogHttpURI, cfg.AppName)

	logger.Info(globalCtx, cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
	)

	shutdownTracer, err := tracer.Instance(globalCtx, cfg)
	if err != nil {
		logger.Warn(globalCtx, "Tracing disabled", slog.String("error", err.Error()))
	}
	defer shutdownTracer()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error(globalCtx, "Failed to prepare data directory", slog.String("dir", cfg.DataDir), slog.String("error", err.Error()))
		os.Exit(1)
	}

	m := metrics.New()
	store := storage.NewFileStore(cfg.DataDir, m)

	apiServer := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      newAPIHandler(store, m),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go serve(globalCtx, apiServer, "api")

	var opsServer *http.Server
	if cfg.MetricsPort != "" {
		opsServer = &http.Server{
			Addr:         ":" + cfg.MetricsPort,
			Handler:      newOpsHandler(cfg.DataDir),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go serve(globalCtx, opsServer, "ops")
	}

	<-globalCtx.Done()
	logger.Info(context.Background(), "Shutting down HTTP servers")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "API server shutdown failed", slog.String("error", err.Error()))
	}
	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Ops server shutdown failed", slog.String("error", err.Error()))
		}
	}
	logger.Info(shutdownCtx, "HTTP servers exited cleanly")
}
