package scheduler

import (
	"context"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/backup"
	"github.com/rs/zerolog"
)

// BackupJob creates a scheduled backup and prunes archives beyond the
// retention count. Failures are logged; the next tick tries again.
type BackupJob struct {
	Ctx         context.Context
	Service     *backup.Service
	Name        string
	IncludeLogs bool
	Keep        int
	Logger      zerolog.Logger
}

func (b *BackupJob) Run() {
	result, err := b.Service.Create(b.Ctx, b.Name, b.IncludeLogs)
	if err != nil {
		b.Logger.Error().Err(err).Msg("scheduled backup failed")
		return
	}
	b.Logger.Info().
		Str("backup_file", result.BackupFile).
		Float64("size_mb", result.SizeMB).
		Msg("scheduled backup created")

	removed, err := b.Service.Prune(b.Ctx, b.Keep)
	if err != nil {
		b.Logger.Error().Err(err).Msg("could not prune old backups")
		return
	}
	if len(removed) > 0 {
		b.Logger.Info().Strs("removed", removed).Msg("pruned old backups")
	}
}
