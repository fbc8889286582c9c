// Package download fetches game, lobby and engine packages from the package
// server into the download folder and reports progress as setup events.
package download
