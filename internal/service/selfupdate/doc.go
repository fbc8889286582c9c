// Package selfupdate replaces the launcher binary with the release published
// in the update folder.
//
// The update folder hosts a YAML manifest (launcher-version.yaml) listing the
// release version and, per platform, the artifact file name with its base64
// SHA-512 checksum. A marker file in the download folder prevents two updates
// from running at once; other launcher instances are stopped before the
// binary is replaced.
package selfupdate
