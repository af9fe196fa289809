package artifactstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"utitriage/adapters/models"
	"utitriage/domain/artifacts"
	"utitriage/internal"
	"utitriage/internal/errors"
)

// FileStore loads a bundle from <Dir>/<name>.json files
type FileStore struct {
	Dir    string
	Logger *internal.Logger
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string, logger *internal.Logger) *FileStore {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &FileStore{Dir: dir, Logger: logger.With("ArtifactStore")}
}

// ReadFiles reads every registered artifact concurrently. The first failure
// cancels the rest and is reported as ARTIFACT_LOAD_FAILED naming the file.
func (s *FileStore) ReadFiles(ctx context.Context) (map[string][]byte, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return nil, errors.ArtifactLoadFailed(s.Dir, err)
	}
	if !info.IsDir() {
		return nil, errors.ArtifactLoadFailed(s.Dir, fmt.Errorf("not a directory"))
	}

	var mu sync.Mutex
	files := make(map[string][]byte, len(artifacts.Registry))

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range artifacts.Names() {
		schema := artifacts.Registry[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(s.Dir, schema.FileName())
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.ArtifactLoadFailed(path, err)
			}
			mu.Lock()
			files[schema.Name] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Load implements artifacts.Source. The directory's base name is the version.
func (s *FileStore) Load(ctx context.Context) (*artifacts.Set, error) {
	files, err := s.ReadFiles(ctx)
	if err != nil {
		s.Logger.Error("reading artifacts from %s: %v", s.Dir, err)
		return nil, err
	}

	version := filepath.Base(filepath.Clean(s.Dir))
	set, err := models.DecodeBundle(version, files)
	if err != nil {
		s.Logger.Error("decoding artifacts from %s: %v", s.Dir, err)
		return nil, err
	}

	s.Logger.Info("loaded bundle %s (%s) with classifiers %v", set.Version(), set.Checksum().Short(), set.ClassifierNames())
	return set, nil
}
