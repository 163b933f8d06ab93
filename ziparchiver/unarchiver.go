package ziparchiver

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	ErrNotArchive   = errors.New("not a zip archive")
	ErrNoManifest   = errors.New("archive has no manifest")
	ErrBadManifest  = errors.New("archive manifest is unreadable")
	ErrEntryMissing = errors.New("archive entry missing")
	ErrSizeMismatch = errors.New("archive entry size mismatch")
)

// Inspect structurally verifies the archive at path: it must be a well
// formed zip, carry a parseable manifest, and contain every entry the
// manifest lists with the recorded uncompressed size. Entry contents are not
// read. A missing file surfaces as an fs.ErrNotExist-wrapping error, distinct
// from the corruption sentinels.
func Inspect(path string) (*Manifest, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrNotArchive, path)
	}
	defer reader.Close()

	entries := make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		entries[f.Name] = f
	}

	manifestEntry, ok := entries[ManifestName]
	if !ok {
		return nil, ErrNoManifest
	}

	rc, err := manifestEntry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	defer rc.Close()

	manifest := &Manifest{}
	if err := json.NewDecoder(rc).Decode(manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	if manifest.Version <= 0 || manifest.Version > ManifestVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadManifest, manifest.Version)
	}

	for _, mf := range manifest.Files {
		entry, ok := entries[mf.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEntryMissing, mf.Name)
		}
		if int64(entry.UncompressedSize64) != mf.Size {
			return nil, fmt.Errorf("%w: %s recorded %d, found %d",
				ErrSizeMismatch, mf.Name, mf.Size, entry.UncompressedSize64)
		}
	}

	return manifest, nil
}

// ExtractFile streams one named entry out of the archive into destPath,
// creating parent directories as needed. Returns the number of bytes written.
func ExtractFile(ctx context.Context, archivePath, entryName, destPath string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("could not open archive: %w", err)
	}
	defer reader.Close()

	src, err := reader.Open(entryName)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrEntryMissing, entryName)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0700); err != nil {
		return 0, err
	}
	dst, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dst, src)
	return written, errors.Join(err, dst.Close())
}
