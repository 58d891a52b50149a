package storage

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LocalStorage keeps novel image files on disk under the configured data
// directory, one subtree per novel slug.
type LocalStorage struct {
	// Path to the storage directory
	Path string
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{Path: config.Opts.Data}
}

// NovelDir returns the directory holding a novel's files.
func (s *LocalStorage) NovelDir(slug string) string {
	return filepath.Join(s.Path, "novels", slug)
}

// SaveImage decodes base64 image data and writes it under the novel's
// directory, returning the stored path.
func (s *LocalStorage) SaveImage(slug, filename, data string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", errors.Wrapf(err, "failed to decode image %s", filename)
	}

	dir := s.NovelDir(slug)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %s", dir)
	}

	filePath := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write image %s", filePath)
	}

	log.Debug("Stored image", zap.String("path", filePath), zap.Int("size", len(raw)))
	return filePath, nil
}

// RemoveNovelDir deletes a novel's file subtree. Missing directories are fine.
func (s *LocalStorage) RemoveNovelDir(slug string) error {
	if slug == "" {
		return nil
	}
	return os.RemoveAll(s.NovelDir(slug))
}
