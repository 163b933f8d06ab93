package backup

import (
	"context"
	"fmt"
	"iter"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/fileutils"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/snapshot"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/ziparchiver"
	"github.com/rs/zerolog"
)

// LiveStore is the persisted state the service snapshots and replaces. The
// service is its only mutator.
type LiveStore interface {
	Path() string
	Snapshot(ctx context.Context, dest string) error
	Close() error
	Reopen() error
}

type ServiceParams struct {
	Dir             string // archive store directory
	Store           LiveStore
	LogsDir         string // optional, archived when a backup includes logs
	AppVersion      string
	DefaultName     string // name prefix when the caller provides none
	MaxArchiveBytes int64  // 0 = unlimited
	Logger          zerolog.Logger
}

// Service owns producing, validating, cataloguing and consuming backup
// archives. A single mutex serializes every operation that mutates the
// archive store or the live store; list, verify and download run without it.
type Service struct {
	dir             string
	store           LiveStore
	logsDir         string
	appVersion      string
	defaultName     string
	maxArchiveBytes int64

	mu     sync.Mutex
	logger zerolog.Logger
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("backup service needs a live store")
	}
	if err := os.MkdirAll(p.Dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create backup directory: %w", err)
	}
	if err := fileutils.VerifyWritable(p.Dir); err != nil {
		return nil, fmt.Errorf("backup directory must be writable: %w", err)
	}
	if p.DefaultName == "" {
		p.DefaultName = "backup"
	}

	return &Service{
		dir:             p.Dir,
		store:           p.Store,
		logsDir:         p.LogsDir,
		appVersion:      p.AppVersion,
		defaultName:     p.DefaultName,
		maxArchiveBytes: p.MaxArchiveBytes,
		logger:          p.Logger.With().Str("backup_dir", p.Dir).Logger(),
	}, nil
}

type CreateResult struct {
	BackupFile string    `json:"backup_file"`
	SizeMB     float64   `json:"size_mb"`
	Timestamp  time.Time `json:"timestamp"`
}

// Create snapshots the live store (and logs when asked) into a new archive.
// On failure no partial archive remains in the store.
func (s *Service) Create(ctx context.Context, name string, includeLogs bool) (*CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := time.Now().UTC()
	name = sanitizeName(name)
	if name == "" {
		name = s.defaultName
	}
	stamp := createdAt.Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.zip", name, stamp)
	for i := 2; fileutils.Exists(filepath.Join(s.dir, filename)); i++ {
		filename = fmt.Sprintf("%s_%s_%d.zip", name, stamp, i)
	}
	archivePath := filepath.Join(s.dir, filename)

	logger := s.logger.With().Str("backup_file", filename).Logger()
	logger.Info().Bool("include_logs", includeLogs).Msg("creating backup")

	staging, err := os.MkdirTemp(s.dir, ".staging-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailure, err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn().Err(err).Msg("could not remove staging directory")
		}
	}()

	snapPath := filepath.Join(staging, filepath.Base(s.store.Path()))
	if err := s.store.Snapshot(ctx, snapPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailure, err)
	}

	files, err := s.archiveContents(ctx, snapPath, includeLogs, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailure, err)
	}

	_, err = ziparchiver.WriteArchive(ctx, archivePath, ziparchiver.ArchiveInfo{
		Name:        name,
		AppVersion:  s.appVersion,
		IncludeLogs: includeLogs,
		CreatedAt:   createdAt,
	}, files, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailure, err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreationFailure, err)
	}
	if s.maxArchiveBytes > 0 && info.Size() > s.maxArchiveBytes {
		if err := os.Remove(archivePath); err != nil {
			logger.Warn().Err(err).Msg("could not remove oversized archive")
		}
		return nil, fmt.Errorf("%w: archive size %d exceeds limit %d",
			ErrCreationFailure, info.Size(), s.maxArchiveBytes)
	}

	logger.Info().Int64("bytes", info.Size()).Msg("backup created")

	return &CreateResult{
		BackupFile: filename,
		SizeMB:     toMB(info.Size()),
		Timestamp:  createdAt,
	}, nil
}

func (s *Service) archiveContents(
	ctx context.Context,
	snapPath string,
	includeLogs bool,
	logger zerolog.Logger,
) (iter.Seq[snapshot.File], error) {
	dataFile, err := snapshot.NewFile("data/"+filepath.Base(snapPath), snapPath)
	if err != nil {
		return nil, err
	}

	return func(yield func(snapshot.File) bool) {
		if !yield(dataFile) {
			return
		}
		if includeLogs && s.logsDir != "" && fileutils.Exists(s.logsDir) {
			for f := range snapshot.ScanDirectory(ctx, s.logsDir, "logs", logger) {
				if !yield(f) {
					return
				}
			}
		}
	}, nil
}

type VerifyResult struct {
	Valid     bool
	Err       error
	Manifest  *ziparchiver.Manifest
	FileCount int
}

// Verify structurally checks the named archive. It never fails: problems are
// reported through the result, with a missing archive distinguished from a
// corrupt one.
func (s *Service) Verify(ctx context.Context, filename string) VerifyResult {
	_ = ctx

	path, err := s.archivePath(filename)
	if err != nil {
		return VerifyResult{Err: err}
	}

	manifest, err := ziparchiver.Inspect(path)
	if err != nil {
		if os.IsNotExist(err) {
			return VerifyResult{Err: fmt.Errorf("%w: %s", ErrNotFound, filename)}
		}
		return VerifyResult{Err: fmt.Errorf("%w: %v", ErrInvalidArchive, err)}
	}

	return VerifyResult{Valid: true, Manifest: manifest, FileCount: manifest.FileCount}
}

type Entry struct {
	Filename string                `json:"filename"`
	Path     string                `json:"path"`
	SizeMB   float64               `json:"size_mb"`
	Created  time.Time             `json:"created"`
	Metadata *ziparchiver.Manifest `json:"metadata"`
}

// List recomputes the catalogue from the store directory, newest first.
// Archives whose manifest cannot be read are still listed, without metadata.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not read backup directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".zip") {
			continue
		}

		info, err := de.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("backup_file", de.Name()).Msg("could not stat archive")
			continue
		}

		entry := Entry{
			Filename: de.Name(),
			Path:     filepath.Join(s.dir, de.Name()),
			SizeMB:   toMB(info.Size()),
			Created:  info.ModTime().UTC(),
		}
		manifest, err := ziparchiver.Inspect(entry.Path)
		if err != nil {
			s.logger.Warn().Err(err).Str("backup_file", de.Name()).Msg("listing archive without metadata")
		} else {
			entry.Metadata = manifest
			entry.Created = manifest.CreatedAt
		}
		entries = append(entries, entry)
	}

	sortEntriesNewestFirst(entries)
	return entries, nil
}

// Delete removes the named archive. A missing archive and a filesystem
// failure are distinct errors.
func (s *Service) Delete(ctx context.Context, filename string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.archivePath(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return fmt.Errorf("could not delete %s: %w", filename, err)
	}

	s.logger.Info().Str("backup_file", filename).Msg("deleted backup")
	return nil
}

// Open returns a reader over the named archive for download streaming.
func (s *Service) Open(filename string) (*os.File, int64, error) {
	path, err := s.archivePath(filename)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Prune removes the oldest archives beyond keep. keep <= 0 disables pruning.
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) <= keep {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for _, entry := range entries[keep:] {
		if err := os.Remove(entry.Path); err != nil {
			return removed, fmt.Errorf("could not prune %s: %w", entry.Filename, err)
		}
		s.logger.Info().Str("backup_file", entry.Filename).Msg("pruned old backup")
		removed = append(removed, entry.Filename)
	}
	return removed, nil
}

func (s *Service) archivePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	return filepath.Join(s.dir, filename), nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

func sanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "")
}

func toMB(size int64) float64 {
	mb := math.Round(float64(size)/(1024*1024)*100) / 100
	if mb == 0 && size > 0 {
		return 0.01
	}
	return mb
}

func sortEntriesNewestFirst(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Created.After(entries[j].Created)
	})
}
