package main

import (
	"context"
	"fmt"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/config"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/rs/zerolog"
)

func backupCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	cfg, err := config.LoadFromFile(args.Backup.Config)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	store, err := database.Open(cfg.StorePath, logger)
	if err != nil {
		return fmt.Errorf("could not open store: %w", err)
	}
	defer store.Close()

	backups, err := newBackupService(cfg, store, logger)
	if err != nil {
		return err
	}

	result, err := backups.Create(ctx, args.Backup.Name, args.Backup.IncludeLogs)
	if err != nil {
		return err
	}

	logger.Info().
		Str("backup_file", result.BackupFile).
		Float64("size_mb", result.SizeMB).
		Msg("backup created")
	return nil
}
