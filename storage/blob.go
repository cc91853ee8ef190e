package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tcriess/lightspeed-rooms/config"
)

// ErrTooLarge is returned by Save if an upload exceeds the configured maximum size.
var ErrTooLarge = errors.New("upload too large")

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// Upload is an uploaded file as handed over by the http layer.
type Upload struct {
	Filename string
	Body     io.Reader
}

// IsImage reports whether filename carries one of the accepted image extensions.
func IsImage(filename string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// BlobStore keeps uploaded images. References returned by Save are opaque to callers and persisted as-is.
type BlobStore interface {
	Save(ctx context.Context, upload *Upload) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// Blob is a stored file as seen by the sweeper.
type Blob struct {
	Ref     string
	ModTime time.Time
}

// LocalStore keeps blobs as files in a single directory.
type LocalStore struct {
	dir       string
	urlPrefix string
	maxSize   int64
}

func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("no upload dir configured")
	}
	err := os.MkdirAll(cfg.UploadDir, 0o755)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: cfg.UploadDir, urlPrefix: cfg.URLPrefix, maxSize: cfg.MaxUploadSize}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(ctx context.Context, upload *Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := uuid.NewString() + strings.ToLower(filepath.Ext(upload.Filename))
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name()) // no-op after the rename
	body := upload.Body
	if s.maxSize > 0 {
		body = io.LimitReader(body, s.maxSize+1)
	}
	n, err := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", closeErr
	}
	if s.maxSize > 0 && n > s.maxSize {
		return "", ErrTooLarge
	}
	err = os.Rename(tmp.Name(), filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return path.Join("/", s.urlPrefix, ref)
}

// List returns all stored blobs. Temporary files of uploads in progress are skipped.
func (s *LocalStore) List(ctx context.Context) ([]Blob, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	blobs := make([]Blob, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed in the meantime
		}
		blobs = append(blobs, Blob{Ref: e.Name(), ModTime: info.ModTime()})
	}
	return blobs, nil
}
