package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kophyo6929/homietv/internal/config"
	"github.com/sirupsen/logrus"
)

// Store persists uploaded media files and serves them under stable
// public URLs. Files are never overwritten: a name collision surfaces
// as an upload error.
type Store struct {
	dir     string
	baseURL string
	logger  *logrus.Logger
}

// NewStore creates a new media store
func NewStore(cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}

	return &Store{
		dir:     cfg.UploadDir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:  logger,
	}, nil
}

// Upload stores data under a randomized filename preserving the original
// extension and returns the public URL of the stored file
func (s *Store) Upload(originalName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	// O_EXCL keeps overwrite disabled; a collision fails the upload
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"name":       name,
		"size_bytes": len(data),
	}).Debug("Stored uploaded file")

	return s.PublicURL(name), nil
}

// PublicURL returns the stable public URL for a stored file name
func (s *Store) PublicURL(name string) string {
	return s.baseURL + "/uploads/" + name
}

// Dir returns the directory files are stored in, for static serving
func (s *Store) Dir() string {
	return s.dir
}

// UploadedFile describes a stored file
type UploadedFile struct {
	Name    string
	ModTime time.Time
}

// ListFiles returns all stored files with their modification times
func (s *Store) ListFiles() ([]UploadedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	files := make([]UploadedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		files = append(files, UploadedFile{Name: entry.Name(), ModTime: info.ModTime()})
	}

	return files, nil
}

// Remove deletes a stored file by name
func (s *Store) Remove(name string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}
