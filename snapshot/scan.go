package snapshot

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ScanDirectory yields every regular file under dirPath. Yielded names are
// relative to dirPath joined under namePrefix, so an archive can place a
// whole directory tree under one entry prefix. Unreadable paths are logged
// and skipped.
func ScanDirectory(ctx context.Context, dirPath, namePrefix string, logger zerolog.Logger) iter.Seq[File] {
	return func(yield func(File) bool) {
		var scanned int

		logger = logger.With().Str("dir", dirPath).Logger()
		logger.Debug().Msg("scanning for files to archive")
		defer func() {
			logger.Debug().Int("scanned", scanned).Msg("done scanning")
		}()

		err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("could not scan path")
				return nil
			}
			if d.IsDir() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("could not stat path")
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(dirPath, path)
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("could not relativize path")
				return nil
			}

			if !yield(fromInfo(filepath.ToSlash(filepath.Join(namePrefix, rel)), path, info)) {
				return filepath.SkipAll
			}
			scanned++
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("could not scan directory")
		}
	}
}
