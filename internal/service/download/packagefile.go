package download

import "io"

// packageFile is a download target that replaces the destination only on Commit.
type packageFile interface {
	io.Writer

	// Commit makes the written contents visible at the destination path.
	Commit() error
	// Cleanup discards the contents unless Commit succeeded.
	Cleanup() error
}
