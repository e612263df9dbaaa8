package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store keeps uploaded files on disk under one directory per property, with
// uuid filenames so that user-supplied names never touch the filesystem.
type Store struct {
	baseDir string
	logger  *logrus.Logger
}

func NewStore(baseDir string, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return &Store{baseDir: abs, logger: logger}, nil
}

// Save writes the file under <base>/<propertyID>/<uuid><ext> and returns the
// stored path. The extension is taken from the original filename, defaulting
// to ".pdf".
func (s *Store) Save(propertyID, originalFilename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, propertyID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create property directory: %w", err)
	}

	ext := filepath.Ext(originalFilename)
	if ext == "" {
		ext = ".pdf"
	}
	path := filepath.Join(dir, uuid.NewString()+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": propertyID,
		"path":        path,
		"size":        len(data),
	}).Debug("Stored uploaded file")

	return path, nil
}

// Remove deletes a stored file. Paths outside the store's base directory are
// rejected.
func (s *Store) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(abs, s.baseDir+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the upload directory", path)
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
