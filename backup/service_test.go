package backup_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/backup"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/snapshot"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/ziparchiver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore stands in for the live SQLite store: its state is a single file
// whose snapshot is a plain copy.
type fakeStore struct {
	path   string
	closed bool
}

func newFakeStore(t *testing.T, content string) *fakeStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "erp.db")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return &fakeStore{path: path}
}

func (f *fakeStore) Path() string { return f.path }

func (f *fakeStore) Snapshot(_ context.Context, dest string) error {
	if f.closed {
		return fmt.Errorf("store is closed")
	}
	content, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, content, 0600)
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func (f *fakeStore) Reopen() error {
	if _, err := os.Stat(f.path); err != nil {
		return err
	}
	f.closed = false
	return nil
}

func (f *fakeStore) content(t *testing.T) string {
	t.Helper()
	content, err := os.ReadFile(f.path)
	require.NoError(t, err)
	return string(content)
}

func newTestService(t *testing.T, store *fakeStore) *backup.Service {
	t.Helper()
	svc, err := backup.NewService(backup.ServiceParams{
		Dir:        t.TempDir(),
		Store:      store,
		AppVersion: "test",
		Logger:     zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	return svc
}

func TestCreate(t *testing.T) {
	store := newFakeStore(t, "live data v1")
	svc := newTestService(t, store)
	ctx := context.Background()

	result, err := svc.Create(ctx, "nightly", false)
	require.NoError(t, err)

	assert.Contains(t, result.BackupFile, "nightly")
	assert.Positive(t, result.SizeMB)
	assert.False(t, result.Timestamp.IsZero())

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.BackupFile, entries[0].Filename)
	assert.FileExists(t, entries[0].Path)

	verify := svc.Verify(ctx, result.BackupFile)
	assert.True(t, verify.Valid)
	require.NotNil(t, verify.Manifest)
	assert.Equal(t, "nightly", verify.Manifest.Name)
	assert.Equal(t, 1, verify.FileCount)
}

func TestCreate_GeneratedName(t *testing.T) {
	store := newFakeStore(t, "data")
	svc := newTestService(t, store)

	result, err := svc.Create(context.Background(), "", false)
	require.NoError(t, err)
	assert.Contains(t, result.BackupFile, "backup_")
}

func TestCreate_SanitizesName(t *testing.T) {
	store := newFakeStore(t, "data")
	svc := newTestService(t, store)

	result, err := svc.Create(context.Background(), "../../etc passwd!", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(result.BackupFile), result.BackupFile)
	assert.Contains(t, result.BackupFile, "etcpasswd")
}

func TestCreate_CollidingNames(t *testing.T) {
	store := newFakeStore(t, "data")
	svc := newTestService(t, store)
	ctx := context.Background()

	first, err := svc.Create(ctx, "same", false)
	require.NoError(t, err)
	second, err := svc.Create(ctx, "same", false)
	require.NoError(t, err)
	assert.NotEqual(t, first.BackupFile, second.BackupFile)
}

func TestCreate_SizeLimit(t *testing.T) {
	store := newFakeStore(t, "quite a lot of data for a tiny limit")
	svc, err := backup.NewService(backup.ServiceParams{
		Dir:             t.TempDir(),
		Store:           store,
		MaxArchiveBytes: 16,
		Logger:          zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "big", false)
	require.ErrorIs(t, err, backup.ErrCreationFailure)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreate_IncludeLogs(t *testing.T) {
	store := newFakeStore(t, "data")
	logsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "app.log"), []byte("log line"), 0600))

	svc, err := backup.NewService(backup.ServiceParams{
		Dir:     t.TempDir(),
		Store:   store,
		LogsDir: logsDir,
		Logger:  zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	result, err := svc.Create(context.Background(), "withlogs", true)
	require.NoError(t, err)

	verify := svc.Verify(context.Background(), result.BackupFile)
	require.True(t, verify.Valid)
	assert.True(t, verify.Manifest.IncludeLogs)
	assert.Equal(t, 2, verify.FileCount)
}

func TestVerify_Unknown(t *testing.T) {
	svc := newTestService(t, newFakeStore(t, "data"))

	verify := svc.Verify(context.Background(), "never_created.zip")
	assert.False(t, verify.Valid)
	assert.ErrorIs(t, verify.Err, backup.ErrNotFound)
}

func TestVerify_Corrupt(t *testing.T) {
	store := newFakeStore(t, "data")
	dir := t.TempDir()
	svc, err := backup.NewService(backup.ServiceParams{
		Dir:    dir,
		Store:  store,
		Logger: zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.zip"), []byte("not a zip"), 0600))

	verify := svc.Verify(context.Background(), "corrupt.zip")
	assert.False(t, verify.Valid)
	assert.ErrorIs(t, verify.Err, backup.ErrInvalidArchive)
	assert.NotErrorIs(t, verify.Err, backup.ErrNotFound)
}

func TestVerify_PathEscape(t *testing.T) {
	svc := newTestService(t, newFakeStore(t, "data"))

	verify := svc.Verify(context.Background(), "../outside.zip")
	assert.False(t, verify.Valid)
	assert.ErrorIs(t, verify.Err, backup.ErrNotFound)
}

func TestDelete_Twice(t *testing.T) {
	svc := newTestService(t, newFakeStore(t, "data"))
	ctx := context.Background()

	result, err := svc.Create(ctx, "victim", false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, result.BackupFile))
	err = svc.Delete(ctx, result.BackupFile)
	assert.ErrorIs(t, err, backup.ErrNotFound)
}

func TestList_CountsCreatesMinusDeletes(t *testing.T) {
	svc := newTestService(t, newFakeStore(t, "data"))
	ctx := context.Background()

	var created []string
	for i := range 3 {
		result, err := svc.Create(ctx, fmt.Sprintf("b%d", i), false)
		require.NoError(t, err)
		created = append(created, result.BackupFile)
	}
	require.NoError(t, svc.Delete(ctx, created[1]))

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, entry := range entries {
		assert.NotEqual(t, created[1], entry.Filename)
	}
}

func TestList_NewestFirst(t *testing.T) {
	store := newFakeStore(t, "data")
	dir := t.TempDir()
	svc, err := backup.NewService(backup.ServiceParams{
		Dir:    dir,
		Store:  store,
		Logger: zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	base := time.Date(2026, 1, 10, 2, 0, 0, 0, time.UTC)
	for i, name := range []string{"oldest", "middle", "newest"} {
		writeArchiveAt(t, dir, name, store.path, base.Add(time.Duration(i)*time.Hour))
	}

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0].Filename, "newest")
	assert.Contains(t, entries[2].Filename, "oldest")
}

func TestRestore_RoundTrip(t *testing.T) {
	store := newFakeStore(t, "state v1")
	svc := newTestService(t, store)
	ctx := context.Background()

	result, err := svc.Create(ctx, "checkpoint", false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.path, []byte("state v2, soon lost"), 0600))

	require.NoError(t, svc.Restore(ctx, result.BackupFile))

	assert.Equal(t, "state v1", store.content(t))
	assert.False(t, store.closed)
	// Parked pre-restore copy is cleaned up.
	assert.NoFileExists(t, store.path+".pre-restore")
}

func TestRestore_UnknownArchive(t *testing.T) {
	store := newFakeStore(t, "untouched")
	svc := newTestService(t, store)

	err := svc.Restore(context.Background(), "missing.zip")
	assert.ErrorIs(t, err, backup.ErrNotFound)
	assert.Equal(t, "untouched", store.content(t))
	assert.False(t, store.closed)
}

func TestRestore_InvalidArchive(t *testing.T) {
	store := newFakeStore(t, "untouched")
	dir := t.TempDir()
	svc, err := backup.NewService(backup.ServiceParams{
		Dir:    dir,
		Store:  store,
		Logger: zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.zip"), []byte("junk"), 0600))

	err = svc.Restore(context.Background(), "junk.zip")
	assert.ErrorIs(t, err, backup.ErrInvalidArchive)
	assert.Equal(t, "untouched", store.content(t))
	assert.False(t, store.closed)
}

func TestDownload_ByteIdentical(t *testing.T) {
	svc := newTestService(t, newFakeStore(t, "data"))
	ctx := context.Background()

	result, err := svc.Create(ctx, "dl", false)
	require.NoError(t, err)

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	onDisk, err := os.ReadFile(entries[0].Path)
	require.NoError(t, err)

	reader, size, err := svc.Open(result.BackupFile)
	require.NoError(t, err)
	defer reader.Close()

	downloaded, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.EqualValues(t, size, len(downloaded))
	assert.Equal(t, onDisk, downloaded)
}

func TestOpen_Unknown(t *testing.T) {
	svc := newTestService(t, newFakeStore(t, "data"))

	_, _, err := svc.Open("missing.zip")
	assert.ErrorIs(t, err, backup.ErrNotFound)
}

func TestPrune(t *testing.T) {
	store := newFakeStore(t, "data")
	dir := t.TempDir()
	svc, err := backup.NewService(backup.ServiceParams{
		Dir:    dir,
		Store:  store,
		Logger: zerolog.New(io.Discard),
	})
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 2, 0, 0, 0, time.UTC)
	oldest := writeArchiveAt(t, dir, "first", store.path, base)
	writeArchiveAt(t, dir, "second", store.path, base.Add(time.Hour))
	writeArchiveAt(t, dir, "third", store.path, base.Add(2*time.Hour))

	removed, err := svc.Prune(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{oldest}, removed)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Nothing left to prune.
	removed, err = svc.Prune(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

// writeArchiveAt drops a valid archive with a fixed creation time directly
// into the store directory.
func writeArchiveAt(t *testing.T, dir, name, dataPath string, createdAt time.Time) string {
	t.Helper()

	f, err := snapshot.NewFile("data/"+filepath.Base(dataPath), dataPath)
	require.NoError(t, err)

	filename := fmt.Sprintf("%s_%s.zip", name, createdAt.Format("20060102_150405"))
	_, err = ziparchiver.WriteArchive(
		context.Background(),
		filepath.Join(dir, filename),
		ziparchiver.ArchiveInfo{Name: name, CreatedAt: createdAt},
		func(yield func(snapshot.File) bool) { yield(f) },
		zerolog.New(io.Discard),
	)
	require.NoError(t, err)
	return filename
}
