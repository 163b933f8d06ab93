package fileutils

import (
	"errors"
	"io"
	"os"

	"github.com/cespare/xxhash"
)

// ComputeHash returns the xxhash of everything readable from r.
// The reader is consumed but not closed.
func ComputeHash(r io.Reader) (uint64, error) {
	hash := xxhash.New()
	if _, err := io.Copy(hash, r); err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}

// ComputeFileHash returns the xxhash of the file at path.
func ComputeFileHash(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	var hash uint64
	hash, err = ComputeHash(file)

	return hash, errors.Join(err, file.Close())
}
