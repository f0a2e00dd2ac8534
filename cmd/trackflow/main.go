package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"trackflow/internal/actions"
	"trackflow/internal/cli"
	"trackflow/internal/config"
	"trackflow/internal/documents"
	"trackflow/internal/form"
	"trackflow/internal/gateway"
	"trackflow/internal/logging"
	"trackflow/internal/notify"
	"trackflow/internal/otel"
	"trackflow/internal/storage"
	"trackflow/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdown, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", zap.Error(err))
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	metrics, err := gateway.NewMetrics(reg)
	if err != nil {
		logger.Error("failed to register metrics", zap.Error(err))
		return err
	}

	gw := gateway.New(cfg.API.BaseURL,
		gateway.WithTimeout(cfg.API.Timeout()),
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics),
	)

	// Local paths by default; minio://<key> reads from the configured bucket
	files := documents.RoutedSource{Default: documents.LocalFiles{}}
	if cfg.MinIO.Enabled() {
		objects, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logger.Error("failed to initialize object storage", zap.Error(err))
			return err
		}
		files.Schemes = map[string]documents.FileSource{"minio": storage.NewObjectSource(objects)}
	}

	validator, err := form.NewValidator()
	if err != nil {
		logger.Error("failed to compile form schemas", zap.Error(err))
		return err
	}

	st := store.New(gw, store.WithLogger(logger))
	console := notify.NewConsole(os.Stderr, os.Stdin)
	handler := actions.NewHandler(actions.Deps{
		Store:     st,
		Documents: documents.NewService(gw, cfg.API.UploadsURL, logger),
		Files:     files,
		Validator: validator,
		Notifier:  console,
		Prompt:    console,
		Logger:    logger,
	})

	root := cli.NewRootCmd(&cli.App{
		Handler:  handler,
		Store:    st,
		Console:  console,
		Registry: reg,
	})
	return root.ExecuteContext(ctx)
}
