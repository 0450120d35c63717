package persistence

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// StoredFile describes bytes written to the upload directory.
type StoredFile struct {
	Path     string
	Size     int64
	MimeType string
}

// FileStorage persists raw upload bytes and hands back a stable
// reference. Metadata rows keep the reference; the workflow never
// reads the bytes back.
type FileStorage interface {
	Save(filename string, r io.Reader) (StoredFile, error)
	Remove(path string) error
}

type DiskStorage struct {
	dir string
}

func NewDiskStorage(dir string) *DiskStorage {
	return &DiskStorage{dir: dir}
}

// Save writes the upload under a uuid-prefixed name so two files with
// the same client filename never collide. The mime type is sniffed from
// the bytes, not trusted from the client.
func (s *DiskStorage) Save(filename string, r io.Reader) (StoredFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return StoredFile{}, errors.Wrap(err, "failed to create upload dir")
	}
	name := uuid.New().String() + "_" + filepath.Base(filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return StoredFile{}, errors.Wrap(err, "failed to create upload file")
	}
	size, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return StoredFile{}, errors.Wrap(err, "failed to write upload file")
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		_ = os.Remove(path)
		return StoredFile{}, errors.Wrap(err, "failed to detect mime type")
	}
	return StoredFile{Path: path, Size: size, MimeType: mime.String()}, nil
}

func (s *DiskStorage) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
