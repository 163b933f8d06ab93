package ziparchiver

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/fileutils"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/snapshot"
	"github.com/ashidadhich33-source/PINAK-ERP-sub005/ziparchiver/zipwriter"
	"github.com/rs/zerolog"
)

// ArchiveInfo describes the archive being written; it seeds the embedded
// manifest.
type ArchiveInfo struct {
	Name        string
	AppVersion  string
	IncludeLogs bool
	CreatedAt   time.Time
}

// WriteArchive writes all files into a new zip at path, appends the manifest
// as the final entry and returns it. On any failure the partial file is
// removed, so path either holds a complete archive or nothing.
func WriteArchive(
	ctx context.Context,
	path string,
	info ArchiveInfo,
	files iter.Seq[snapshot.File],
	logger zerolog.Logger,
) (*Manifest, error) {
	logger = logger.With().Str("archive", path).Logger()
	logger.Info().Msg("writing archive")

	zipFile := zipwriter.NewLazyZipFile(path)

	manifest, err := writeFiles(ctx, zipFile, info, files, logger)
	if err != nil {
		if delErr := zipFile.Delete(); delErr != nil {
			logger.Warn().Err(delErr).Msg("could not remove partial archive")
		}
		return nil, err
	}

	if err := zipFile.Close(); err != nil {
		if delErr := zipFile.Delete(); delErr != nil {
			logger.Warn().Err(delErr).Msg("could not remove partial archive")
		}
		return nil, fmt.Errorf("could not finish archive: %w", err)
	}

	logger.Info().
		Int("files", manifest.FileCount).
		Int64("bytes", manifest.TotalSizeBytes).
		Msg("archive written")

	return manifest, nil
}

func writeFiles(
	ctx context.Context,
	zipFile *zipwriter.ZipFile,
	info ArchiveInfo,
	files iter.Seq[snapshot.File],
	logger zerolog.Logger,
) (*Manifest, error) {
	manifest := &Manifest{
		Version:     ManifestVersion,
		Name:        info.Name,
		AppVersion:  info.AppVersion,
		CreatedAt:   info.CreatedAt.UTC(),
		IncludeLogs: info.IncludeLogs,
	}

	for f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		w, err := zipFile.CreateHeader(&zip.FileHeader{
			Name:               f.Name,
			Modified:           f.ModTime,
			Method:             zip.Deflate,
			UncompressedSize64: uint64(f.Size),
		})
		if err != nil {
			return nil, fmt.Errorf("could not add %s: %w", f.Name, err)
		}

		hash, err := writeFile(f, w)
		if err != nil {
			return nil, fmt.Errorf("could not archive %s: %w", f.Name, err)
		}
		logger.Debug().Object("file", f).Msg("archived file")

		manifest.Files = append(manifest.Files, ManifestFile{
			Name: f.Name,
			Size: f.Size,
			Hash: hash,
		})
		manifest.FileCount++
		manifest.TotalSizeBytes += f.Size
	}

	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode manifest: %w", err)
	}
	w, err := zipFile.CreateHeader(&zip.FileHeader{
		Name:     ManifestName,
		Modified: manifest.CreatedAt,
		Method:   zip.Deflate,
	})
	if err != nil {
		return nil, fmt.Errorf("could not add manifest: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("could not write manifest: %w", err)
	}

	return manifest, nil
}

func writeFile(f snapshot.File, w io.Writer) (uint64, error) {
	reader, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	// Write to the zip entry while computing the content hash in one pass.
	tee := io.TeeReader(reader, w)
	return fileutils.ComputeHash(tee)
}
