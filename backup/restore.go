package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/ziparchiver"
	"github.com/rs/zerolog"
)

// Restore replaces the live store with the archive's data snapshot. The new
// store file is staged completely before the swap, and the swap itself is a
// rename pair: a failure at any point before the final reopen puts the
// pre-restore file back. Serialized against Create, Delete and Prune by the
// service mutex.
func (s *Service) Restore(ctx context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With().Str("backup_file", filename).Logger()
	logger.Info().Msg("starting restore")

	path, err := s.archivePath(filename)
	if err != nil {
		return err
	}

	manifest, err := ziparchiver.Inspect(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	dataEntry, err := dataEntryName(manifest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	storePath := s.store.Path()

	// Stage on the store's filesystem so the swap is a pure rename.
	staging, err := os.MkdirTemp(filepath.Dir(storePath), ".restore-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRestoreFailure, err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn().Err(err).Msg("could not remove restore staging directory")
		}
	}()

	stagedPath := filepath.Join(staging, filepath.Base(storePath))
	written, err := ziparchiver.ExtractFile(ctx, path, dataEntry, stagedPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRestoreFailure, err)
	}
	if written == 0 {
		return fmt.Errorf("%w: archive data snapshot is empty", ErrRestoreFailure)
	}

	if err := s.store.Close(); err != nil {
		return fmt.Errorf("%w: could not close live store: %v", ErrRestoreFailure, err)
	}

	if err := s.swapStoreFile(storePath, stagedPath, logger); err != nil {
		return err
	}

	logger.Info().Int64("bytes", written).Msg("restore complete")
	return nil
}

// swapStoreFile moves the staged file into place. The previous store file is
// parked beside it until the swap and reopen both succeed, so every failure
// path can put it back.
func (s *Service) swapStoreFile(storePath, stagedPath string, logger zerolog.Logger) error {
	parkedPath := storePath + ".pre-restore"

	if err := os.Rename(storePath, parkedPath); err != nil {
		if reopenErr := s.store.Reopen(); reopenErr != nil {
			return fmt.Errorf("%w: could not park live store (%v) and could not reopen it: %v",
				ErrRestoreFailure, err, reopenErr)
		}
		return fmt.Errorf("%w: could not park live store: %v", ErrRestoreFailure, err)
	}

	if err := os.Rename(stagedPath, storePath); err != nil {
		if backErr := os.Rename(parkedPath, storePath); backErr != nil {
			return fmt.Errorf("%w: swap failed (%v) and pre-restore state could not be put back: %v",
				ErrRestoreFailure, err, backErr)
		}
		if reopenErr := s.store.Reopen(); reopenErr != nil {
			return fmt.Errorf("%w: swap failed (%v) and store could not be reopened: %v",
				ErrRestoreFailure, err, reopenErr)
		}
		return fmt.Errorf("%w: could not move restored data into place: %v", ErrRestoreFailure, err)
	}

	if err := s.store.Reopen(); err != nil {
		// Try to fall back to the pre-restore file.
		if backErr := os.Rename(storePath, stagedPath); backErr == nil {
			if backErr := os.Rename(parkedPath, storePath); backErr == nil {
				if reopenErr := s.store.Reopen(); reopenErr == nil {
					return fmt.Errorf("%w: restored data could not be opened, pre-restore state kept: %v",
						ErrRestoreFailure, err)
				}
			}
		}
		return fmt.Errorf("%w: restored data could not be opened: %v", ErrRestoreFailure, err)
	}

	if err := os.Remove(parkedPath); err != nil {
		logger.Warn().Err(err).Msg("could not remove pre-restore copy")
	}
	return nil
}

func dataEntryName(manifest *ziparchiver.Manifest) (string, error) {
	var found []string
	for _, f := range manifest.Files {
		if strings.HasPrefix(f.Name, "data/") {
			found = append(found, f.Name)
		}
	}
	if len(found) != 1 {
		return "", fmt.Errorf("expected one data snapshot entry, found %d", len(found))
	}
	return found[0], nil
}
