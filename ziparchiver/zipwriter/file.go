package zipwriter

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/fileutils"
)

// ZipFile wraps an archive/zip writer that opens its backing file on first
// write, so an archive that ends up with no entries never touches disk, and
// a failed archive can be deleted in one call.
type ZipFile struct {
	init   bool
	path   string
	file   *os.File
	writer *zip.Writer
}

func NewLazyZipFile(path string) *ZipFile {
	return &ZipFile{path: path}
}

func (z *ZipFile) Path() string {
	return z.path
}

// Close the writer and file if they were opened.
func (z *ZipFile) Close() error {
	if !z.init {
		return nil
	}
	defer func() {
		z.init = false
	}()
	err := z.writer.Close()
	return errors.Join(err, z.file.Close())
}

// Delete removes the backing file if it was ever created. Safe to call after
// Close.
func (z *ZipFile) Delete() error {
	if z.file == nil {
		return nil
	}
	if z.init {
		_ = z.Close()
	}
	return os.Remove(z.path)
}

// CreateHeader creates a new entry in the archive, opening the backing file
// first if needed.
func (z *ZipFile) CreateHeader(fh *zip.FileHeader) (io.Writer, error) {
	if !z.init {
		if fileutils.Exists(z.path) {
			return nil, fmt.Errorf("file or directory already exists with this name: %s", z.path)
		}
		file, err := os.OpenFile(z.path, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}
		z.file = file
		z.writer = zip.NewWriter(file)
		z.init = true
	}

	return z.writer.CreateHeader(fh)
}
