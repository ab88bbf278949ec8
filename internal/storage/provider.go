// Package storage defines the data-directory file abstraction.
package storage

// Provider is the file-backed resource the stores persist through.
// Paths are relative to the data directory.
type Provider interface {
	// Read returns the raw bytes at path. A missing file yields an error
	// that satisfies errors.Is(err, os.ErrNotExist).
	Read(path string) ([]byte, error)
	// Write atomically replaces the content at path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Checksum returns the SHA-256 of the file at path, or "" if it does not exist.
	Checksum(path string) (string, error)
	// Abs resolves path to an absolute location inside the data directory.
	Abs(path string) (string, error)
}
