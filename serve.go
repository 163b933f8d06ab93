package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/backup"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/config"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/fileutils"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/httpapi"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/scheduler"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func serveCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	cfg, err := config.LoadFromFile(args.Serve.Config)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	store, err := database.Open(cfg.StorePath, logger)
	if err != nil {
		return fmt.Errorf("could not open store: %w", err)
	}
	defer store.Close()

	if cfg.SeedDemoData {
		if err := store.SeedDemoData(ctx); err != nil {
			return fmt.Errorf("could not seed demo data: %w", err)
		}
	}

	backups, err := newBackupService(cfg, store, logger)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(scheduler.SchedulerParams{Logger: logger})
	if err := addBackupJobFromConfig(ctx, sched, cfg, backups, logger); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := httpapi.NewServer(httpapi.ServerParams{
		Addr:    cfg.ListenAddr,
		Store:   store,
		Backups: backups,
		Users:   cfg.Users,
		Version: appVersion,
		Logger:  logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("could not start http server: %w", err)
		}
		<-gctx.Done()
		return srv.Stop()
	})
	if args.Serve.Config != "" {
		g.Go(func() error {
			watchConfigFile(gctx, args.Serve.Config, logger, func(cfg *config.Config) {
				sched.RemoveJobs()
				err := addBackupJobFromConfig(gctx, sched, cfg, backups, logger)
				if err != nil {
					logger.Error().Err(err).Msg("could not reschedule backups")
				}
			})
			return nil
		})
	}

	return g.Wait()
}

func newBackupService(cfg *config.Config, store *database.Store, logger zerolog.Logger) (*backup.Service, error) {
	backups, err := backup.NewService(backup.ServiceParams{
		Dir:             cfg.BackupDir,
		Store:           store,
		LogsDir:         cfg.LogsDir,
		AppVersion:      appVersion,
		DefaultName:     cfg.BackupPrefix,
		MaxArchiveBytes: cfg.MaxArchiveSize.Size,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create backup service: %w", err)
	}
	return backups, nil
}

func addBackupJobFromConfig(
	ctx context.Context,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	backups *backup.Service,
	logger zerolog.Logger,
) error {
	if cfg.BackupSchedule == "" {
		logger.Info().Msg("no backup schedule configured")
		return nil
	}

	job := &scheduler.BackupJob{
		Ctx:         ctx,
		Service:     backups,
		Name:        cfg.BackupPrefix,
		IncludeLogs: cfg.LogsDir != "",
		Keep:        cfg.RetentionKeep,
		Logger:      logger,
	}
	if err := sched.AddJob(cfg.BackupSchedule, job); err != nil {
		return fmt.Errorf("could not schedule backups: %w", err)
	}
	return nil
}

// watchConfigFile polls the config file and invokes onChanged with each
// successfully reloaded config. It returns when ctx is cancelled.
func watchConfigFile(ctx context.Context, path string, logger zerolog.Logger, onChanged func(cfg *config.Config)) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	logger.Info().Str("path", path).Msg("watching config file for changes")
	watcher, err := fileutils.WatchFile(ctx, path, when(ticker.C), func(err error) {
		logger.Error().Err(err).Msg("could not watch config file")
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not watch config file")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-watcher:
			logger.Info().Str("path", path).Msg("config file changed, reloading")

			cfg, err := config.LoadFromFile(path)
			if err != nil {
				logger.Error().Err(err).Msg("could not load config")
				break
			}
			onChanged(cfg)
		}
	}
}

func when[T any](ch <-chan T) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		for range ch {
			out <- struct{}{}
		}
	}()
	return out
}
