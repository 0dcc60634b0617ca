package receipt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage defines the interface for the folder that receives refined copies
type Storage interface {
	// Exists reports whether a file with this name is already stored
	Exists(filename string) (bool, error)

	// Copy copies srcPath into storage under filename and returns the new path
	Copy(srcPath, filename string) (string, error)

	// Remove deletes a stored file; removing a missing file is not an error
	Remove(filename string) error
}

// StorageFactory opens the storage rooted at basePath
type StorageFactory func(basePath string) (Storage, error)

// LocalStorage implements the Storage interface using local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// openLocalStorage adapts NewLocalStorage to StorageFactory
func openLocalStorage(basePath string) (Storage, error) {
	return NewLocalStorage(basePath)
}

func (l *LocalStorage) path(filename string) string {
	return filepath.Join(l.basePath, filename)
}

// Exists reports whether filename is present in storage
func (l *LocalStorage) Exists(filename string) (bool, error) {
	_, err := os.Stat(l.path(filename))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking file: %w", err)
}

// Copy copies a file into storage, keeping the source untouched and
// carrying over its modification time
func (l *LocalStorage) Copy(srcPath, filename string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("reading source file info: %w", err)
	}

	dstPath := l.path(filename)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("copying file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("writing file: %w", err)
	}

	if err := os.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("setting file times: %w", err)
	}

	return dstPath, nil
}

// Remove deletes filename from storage
func (l *LocalStorage) Remove(filename string) error {
	if err := os.Remove(l.path(filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}
