//go:build !windows

package download

import (
	"os"

	"github.com/google/renameio/v2"
)

// pendingPackageFile writes through a renameio pending file in the destination folder.
type pendingPackageFile struct {
	*renameio.PendingFile
}

// Commit atomically replaces the destination.
func (f pendingPackageFile) Commit() error {
	return f.CloseAtomicallyReplace()
}

func createPackageFile(path string, mode os.FileMode) (packageFile, error) {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(mode))
	if err != nil {
		return nil, err
	}

	return pendingPackageFile{PendingFile: pending}, nil
}
