//go:build windows

package download

import (
	"os"
	"path/filepath"
)

// tempPackageFile writes a hidden temp file next to the destination and renames
// it over the destination on Commit. The file mode is not used on Windows.
type tempPackageFile struct {
	*os.File

	path      string
	committed bool
}

// Commit flushes the temp file and moves it over the destination.
func (f *tempPackageFile) Commit() error {
	if err := f.Sync(); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(f.Name(), f.path); err != nil {
		return err
	}

	f.committed = true

	return nil
}

// Cleanup removes the temp file unless it was committed.
func (f *tempPackageFile) Cleanup() error {
	if f.committed {
		return nil
	}

	_ = f.Close()

	return os.Remove(f.Name())
}

func createPackageFile(path string, _ os.FileMode) (packageFile, error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}

	return &tempPackageFile{File: file, path: path}, nil
}
