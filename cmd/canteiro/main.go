package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/alexanderramin/canteiro/internal/auth"
	"github.com/alexanderramin/canteiro/internal/cli"
	"github.com/alexanderramin/canteiro/internal/config"
	"github.com/alexanderramin/canteiro/internal/db"
	"github.com/alexanderramin/canteiro/internal/logging"
	"github.com/alexanderramin/canteiro/internal/metrics"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/service"
	"github.com/alexanderramin/canteiro/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %s\n", cli.FormatError(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	registry := prometheus.NewRegistry()
	observers := []service.UseCaseObserver{
		service.NewZapUseCaseObserver(logger),
		metrics.NewUseCaseObserver(metrics.New(registry)),
	}
	defer func() {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, registry); err != nil {
			logger.Warn("writing metrics textfile", zap.Error(err))
		}
	}()

	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	repos := repository.NewSQLiteRepos(database)
	uow := db.NewSQLiteUnitOfWork(database)

	store, err := storage.NewFSStore(cfg.Storage.Root, cfg.Storage.BaseURL, cfg.Auth.Secret)
	if err != nil {
		return fmt.Errorf("opening photo store: %w", err)
	}

	limits := service.BulkLimits{
		UnitBatchSize:    cfg.Bulk.UnitBatchSize,
		StageBatchSize:   cfg.Bulk.StageBatchSize,
		MaxUnitsPerFloor: cfg.Bulk.MaxUnitsPerFloor,
	}
	bucket := cfg.Storage.PhotosBucket

	stages := service.NewStageService(repos, uow, observers...)
	propagation := service.NewPropagationService(repos, uow, stages, store, bucket, limits, observers...)

	app := &cli.App{
		Projects:    service.NewProjectService(repos, uow, store, bucket, observers...),
		Stages:      stages,
		Units:       service.NewUnitService(repos, uow, propagation, store, bucket, limits, observers...),
		Propagation: propagation,
		UnitStages:  service.NewUnitStageService(repos, uow, store, bucket, cfg.Storage.SignedURLTTL, observers...),
		Auth:        auth.NewAuthenticator(cfg.Auth.Secret, cfg.Auth.TokenTTL, repos.Users),
		Users:       repos.Users,
		SessionFile: cfg.Auth.SessionFile,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
