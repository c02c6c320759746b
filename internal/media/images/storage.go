// Package images provides image validation, processing, and storage for
// book covers and user avatars.
package images

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Storage manages image filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	subdir   string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance for book covers.
// Images are stored in {basePath}/covers/.
func NewStorage(basePath string) (*Storage, error) {
	return NewStorageWithSubdir(basePath, "covers")
}

// NewStorageWithSubdir creates a new Storage instance with a custom subdirectory.
// Example: NewStorageWithSubdir("/data/images", "avatars") -> /data/images/avatars/.
func NewStorageWithSubdir(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath: storagePath,
		subdir:   subdir,
	}, nil
}

// Save stores image data under the given filename.
func (s *Storage) Save(filename string, imgData []byte) error {
	path, err := s.Resolve(filename)
	if err != nil {
		return err
	}

	if len(imgData) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}

// Get retrieves image data by filename.
func (s *Storage) Get(filename string) ([]byte, error) {
	path, err := s.Resolve(filename)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found: %s: %w", filename, err)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return data, nil
}

// Exists checks if an image exists.
func (s *Storage) Exists(filename string) bool {
	path, err := s.Resolve(filename)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err = os.Stat(path)
	return err == nil
}

// Delete removes an image.
// Idempotent: deleting a missing image is not an error.
func (s *Storage) Delete(filename string) error {
	path, err := s.Resolve(filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete image file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of an image.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(filename string) (string, error) {
	data, err := s.Get(filename)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// RelativePath returns the path of a stored image relative to the
// images root, e.g. "covers/book-xyz.jpg". Stored on domain records so
// handlers can build serving URLs.
func (s *Storage) RelativePath(filename string) string {
	return s.subdir + "/" + filename
}

// Resolve validates a filename and returns the full filesystem path.
// Rejects empty names, path separators, and traversal sequences so a
// request can never escape the storage directory.
func (s *Storage) Resolve(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	if strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}

	path := filepath.Join(s.basePath, filename)

	// Belt and braces: the joined path must stay under the base.
	if !strings.HasPrefix(path, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}

	return path, nil
}
