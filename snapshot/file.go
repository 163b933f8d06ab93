package snapshot

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// File is a single file scheduled for inclusion in a backup archive. Name is
// the path the file takes inside the archive; Path is where it lives on disk.
type File struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

func NewFile(name, path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	return fromInfo(name, path, info), nil
}

func fromInfo(name, path string, info fs.FileInfo) File {
	return File{
		Name:    name,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func (f File) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f File) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", f.Name)
	e.Str("path", f.Path)
	e.Int64("size", f.Size)
}
