package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/umalmyha/leads/internal/cache"
	"github.com/umalmyha/leads/internal/config"
	"github.com/umalmyha/leads/internal/infra"
	"github.com/umalmyha/leads/internal/monitoring"
	"github.com/umalmyha/leads/internal/repository"
	"github.com/umalmyha/leads/internal/service"
	"github.com/umalmyha/leads/pkg/db/transactor"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// @title       Leads API
// @version     1.0
// @description Debt review client leads capture and export
// @BasePath    /
func main() {
	cfg, err := config.Build()
	if err != nil {
		logrus.Fatal(err)
	}

	logger, err := buildLogger(cfg.LogCfg)
	if err != nil {
		logrus.Fatal(err)
	}

	if cfg.SentryCfg.Dsn != "" {
		if err := monitoring.InitSentry(cfg.SentryCfg.Dsn, cfg.SentryCfg.Environment); err != nil {
			logger.Fatal(err)
		}
		defer monitoring.FlushSentry()
	}

	monitoring.Init()

	ctx := context.Background()

	trx, clientRps, closeStore, err := datastore(ctx, cfg)
	if err != nil {
		logger.Fatal(err)
	}
	defer closeStore()

	clientCache, closeCache, err := exportCache(ctx, cfg.RedisCfg)
	if err != nil {
		logger.Fatal(err)
	}
	defer closeCache()

	clientSvc := service.NewClientService(trx, clientRps, clientCache)

	app, err := infra.Router(clientSvc, cfg.ExportCfg.Dir, logger)
	if err != nil {
		logger.Fatal(err)
	}

	start(app, cfg.HTTPCfg, logger)
}

func buildLogger(cfg config.LogCfg) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level - %w", err)
	}

	logger := logrus.StandardLogger()
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

func datastore(ctx context.Context, cfg *config.Config) (transactor.Transactor, repository.ClientRepository, func(), error) {
	switch cfg.Datastore {
	case config.DatastoreMongo:
		client, err := infra.Mongodb(ctx, cfg.MongoCfg)
		if err != nil {
			return nil, nil, nil, err
		}

		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logrus.WithError(err).Error("failed to disconnect from mongodb")
			}
		}
		return transactor.NewNopTransactor(), repository.NewMongoClientRepository(client, cfg.MongoCfg.Database), closeFn, nil
	default:
		pool, err := infra.Postgresql(ctx, cfg.PostgresCfg)
		if err != nil {
			return nil, nil, nil, err
		}

		txExecutor := transactor.NewPgxWithinTransactionExecutor(pool)
		return transactor.NewPgxTransactor(pool), repository.NewPostgresClientRepository(txExecutor), pool.Close, nil
	}
}

func exportCache(ctx context.Context, cfg config.RedisCfg) (cache.ClientCache, func(), error) {
	if !cfg.Enabled() {
		return cache.Disabled(), func() {}, nil
	}

	client, err := infra.Redis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Error("failed to close connection to redis")
		}
	}
	return cache.NewRedisClientCache(client, cfg.ExportTTL), closeFn, nil
}

func start(app *echo.Echo, cfg config.HTTPCfg, logger *logrus.Logger) {
	shutdownCh := make(chan os.Signal, 1)
	errorCh := make(chan error, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		errorCh <- app.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-shutdownCh:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutdown signal has been sent, stopping the server...")
		if err := app.Shutdown(ctx); err != nil {
			logger.Errorf("failed to stop server gracefully - %s", err)
		}
	case err := <-errorCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("shutting down the server, unexpected error occurred - %s", err)
		}
	}
}
