package main

import (
	"context"
	"fmt"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/config"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/rs/zerolog"
)

func restoreCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	cfg, err := config.LoadFromFile(args.Restore.Config)
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

	if verify := backups.Verify(ctx, args.Restore.File); !verify.Valid {
		return fmt.Errorf("refusing to restore: %w", verify.Err)
	}

	if err := backups.Restore(ctx, args.Restore.File); err != nil {
		return err
	}

	logger.Info().Str("backup_file", args.Restore.File).Msg("store restored")
	return nil
}
