package util

import (
	"os"
)

// EnsureDir creates a directory and its parents if they don't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// TempFile creates a temporary file in dir named pattern<random>ext
func TempFile(dir, pattern, ext string) (*os.File, error) {
	return os.CreateTemp(dir, pattern+"*"+ext)
}
