package repository

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/kappagen/internal/domain/catalogue"
	"github.com/okian/kappagen/internal/domain/kappa"
	"github.com/okian/kappagen/pkg/logger"
	"github.com/okian/kappagen/pkg/metrics"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0640
)

// Dataset kinds used for metrics labels.
const (
	kindCatalogue = "catalogue"
	kindMap       = "map"
)

var datasetExtensions = []string{".csv", ".fits"}

// FileStore writes datasets into a single directory.
type FileStore struct {
	dir     string
	logger  logger.Logger
	metrics *metrics.Manager
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed and returns a store writing into it.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOutputDir)
	}
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	s := &FileStore{
		dir:     dir,
		logger:  logger.Nop(),
		metrics: metrics.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the output directory.
func (s *FileStore) Dir() string { return s.dir }

// SaveCatalogue implements Store.
func (s *FileStore) SaveCatalogue(ctx context.Context, name string, cat catalogue.Catalogue) (string, error) {
	return s.save(ctx, name, kindCatalogue, func(w io.Writer) error { return WriteCatalogue(w, cat) })
}

// SaveSpectroscopic implements Store.
func (s *FileStore) SaveSpectroscopic(ctx context.Context, name string, cat []catalogue.SpecGalaxy) (string, error) {
	return s.save(ctx, name, kindCatalogue, func(w io.Writer) error { return WriteSpectroscopic(w, cat) })
}

// SavePhotometric implements Store.
func (s *FileStore) SavePhotometric(ctx context.Context, name string, cat []catalogue.PhotoGalaxy) (string, error) {
	return s.save(ctx, name, kindCatalogue, func(w io.Writer) error { return WritePhotometric(w, cat) })
}

// SaveMap implements Store. Existing files are overwritten.
func (s *FileStore) SaveMap(ctx context.Context, m kappa.Map) (string, error) {
	return s.save(ctx, MapFilename(m.Nside, m.ZSource), kindMap, func(w io.Writer) error { return WriteMap(w, m) })
}

// save writes into a temporary file and renames it into place so readers
// never observe a partial dataset.
func (s *FileStore) save(ctx context.Context, name, kind string, write func(io.Writer) error) (path string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path = filepath.Join(s.dir, filepath.Base(name))

	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			s.metrics.RecordErrorByComponent("repository", kind)
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
				s.logger.Warn(ctx, "failed to remove temporary file", logger.String("file", tmp.Name()), logger.Error(rmErr))
			}
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err = bw.Flush(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("flush %s: %w", name, err)
	}
	if err = tmp.Chmod(filePermission); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}

	s.metrics.RecordFileWritten(kind)
	s.logger.Debug(ctx, "dataset written", logger.String("path", path), logger.String("kind", kind))
	return path, nil
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range datasetExtensions {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
