package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// FileStore keeps each entry as a file holding the raw payload. The file's
// modification time is the entry's write time.
type FileStore struct {
	dir    string
	clock  clock.Clock
	logger zerolog.Logger
}

// NewFileStore creates a store rooted at dir. Namespace directories are
// created on first write.
func NewFileStore(dir string, clk clock.Clock, logger zerolog.Logger) *FileStore {
	if clk == nil {
		clk = clock.New()
	}
	return &FileStore{
		dir:    dir,
		clock:  clk,
		logger: logger,
	}
}

func (s *FileStore) path(namespace, key string) string {
	return filepath.Join(s.dir, namespace, key)
}

// IsFresh checks the entry's modification time against ttl.
func (s *FileStore) IsFresh(_ context.Context, namespace, key string, ttl time.Duration) bool {
	if err := checkNames(namespace, key); err != nil {
		return false
	}

	info, err := os.Stat(s.path(namespace, key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			CacheErrors.WithLabelValues("fresh").Inc()
			s.logger.Warn().Err(err).Str("namespace", namespace).Str("key", key).Msg("Cache stat failed")
		}
		return false
	}

	entry := CacheEntry{CachedAt: info.ModTime()}
	return entry.IsFresh(s.clock.Now(), ttl)
}

// Read returns the stored payload.
func (s *FileStore) Read(_ context.Context, namespace, key string) ([]byte, error) {
	if err := checkNames(namespace, key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(namespace, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return data, nil
}

// Write stores payload through a temporary file and a rename so readers never
// observe a partial body, then stamps the file with the store clock.
func (s *FileStore) Write(_ context.Context, namespace, key string, payload []byte) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}

	nsDir := filepath.Join(s.dir, namespace)
	if err := os.MkdirAll(nsDir, 0o755); err != nil {
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(nsDir, key+".tmp-*")
	if err != nil {
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("close temp file: %w", err)
	}

	now := s.clock.Now()
	if err := os.Chtimes(tmpName, now, now); err != nil {
		os.Remove(tmpName)
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("stamp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(namespace, key)); err != nil {
		os.Remove(tmpName)
		CacheErrors.WithLabelValues("write").Inc()
		return fmt.Errorf("rename cache file: %w", err)
	}

	s.logger.Debug().
		Str("namespace", namespace).
		Str("key", key).
		Int("bytes", len(payload)).
		Msg("Cached response")

	return nil
}
