package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Store is the live ERP data store. It is the single owner of the SQLite
// file: the backup service snapshots it through Snapshot and swaps it out
// through Close/Reopen during a restore.
type Store struct {
	mu     sync.RWMutex
	path   string
	cli    *gorm.DB
	logger zerolog.Logger
}

func Open(path string, logger zerolog.Logger) (*Store, error) {
	cli, err := openSQLite(path, logger)
	if err != nil {
		return nil, fmt.Errorf("could not open store: %w", err)
	}

	return &Store{
		path:   path,
		cli:    cli,
		logger: logger.With().Str("store", path).Logger(),
	}, nil
}

// Path returns the location of the SQLite file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Snapshot writes a transactionally consistent copy of the store to dest
// while the store stays open for readers.
func (s *Store) Snapshot(ctx context.Context, dest string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.logger.Debug().Str("dest", dest).Msg("snapshotting store")

	err := s.cli.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error
	if err != nil {
		return fmt.Errorf("could not snapshot store: %w", err)
	}
	return nil
}

// Close releases the underlying SQLite handle. The store must not be queried
// again until Reopen.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlDB, err := s.cli.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reopen re-attaches the store to its file after a restore swapped it.
func (s *Store) Reopen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cli, err := openSQLite(s.path, s.logger)
	if err != nil {
		return fmt.Errorf("could not reopen store: %w", err)
	}
	s.cli = cli
	return nil
}

// conn reads the current gorm handle under the lock. Queries issued against
// a handle closed by a concurrent restore fail with a closed-database error,
// which callers surface as any other query failure.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	s.mu.RLock()
	cli := s.cli
	s.mu.RUnlock()
	return cli.WithContext(ctx)
}
