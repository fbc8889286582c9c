// Package publisher prepares a launcher release for the update folder:
// it copies platform binaries into an output directory and writes the
// checksummed manifest the self-update command reads.
package publisher
