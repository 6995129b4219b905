// Package storage reads and writes the raw bytes of the snapshot document.
package storage

// Provider is the interface for snapshot file operations.
type Provider interface {
	// Read returns the current document bytes. A missing document yields an
	// error matching os.ErrNotExist.
	Read() ([]byte, error)
	// Write atomically replaces the document.
	Write(content []byte) error
	// Path is the absolute location of the document.
	Path() string
}
