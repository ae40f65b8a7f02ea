package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/questionbank/internal/pkg/logger"
)

const maxCollisionAttempts = 5

// LocalStorage stores blobs on the local filesystem
type LocalStorage struct {
	basePath string // root directory of stored blobs
	baseURL  string // public prefix the blobs are served under
}

var _ BlobStore = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the storage root on disk
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

func (ls *LocalStorage) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("invalid blob path %q", rel)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Save implements BlobStore
func (ls *LocalStorage) Save(ctx context.Context, rel string, r io.Reader) (string, int64, error) {
	candidate := rel
	for attempt := 0; attempt < maxCollisionAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		full, err := ls.resolve(candidate)
		if err != nil {
			return "", 0, err
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			logger.Error().Err(err).Str("path", full).Msg("Failed to create subdirectory")
			return "", 0, fmt.Errorf("failed to create subdirectory: %w", err)
		}

		dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			candidate = withSuffix(rel, uuid.NewString()[:8])
			continue
		}
		if err != nil {
			logger.Error().Err(err).Str("path", full).Msg("Failed to create destination file")
			return "", 0, fmt.Errorf("failed to create destination file: %w", err)
		}

		written, err := io.Copy(dst, r)
		closeErr := dst.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			logger.Error().Err(err).Str("path", full).Msg("Failed to copy uploaded file content")
			_ = os.Remove(full)
			return "", 0, fmt.Errorf("failed to save file content: %w", err)
		}

		logger.Debug().Str("path", candidate).Int64("bytes", written).Msg("Blob saved")
		return candidate, written, nil
	}
	return "", 0, fmt.Errorf("no free path for %s after %d attempts", rel, maxCollisionAttempts)
}

// Open implements BlobStore
func (ls *LocalStorage) Open(_ context.Context, rel string) (io.ReadCloser, error) {
	full, err := ls.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete implements BlobStore
func (ls *LocalStorage) Delete(_ context.Context, rel string) error {
	if rel == "" {
		return nil
	}
	full, err := ls.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	logger.Info().Str("path", full).Msg("File deleted successfully")
	return nil
}

// URL implements BlobStore
func (ls *LocalStorage) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return ls.baseURL + "/" + strings.TrimPrefix(rel, "/")
}
