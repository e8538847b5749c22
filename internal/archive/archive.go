// Package archive gives read-only, path-keyed access to the entries of a
// data dump container.
//
// A Reader is not safe for concurrent use. Callers that read entries from
// more than one goroutine must serialize access themselves.
package archive

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a path has no entry in the archive.
var ErrNotFound = errors.New("archive entry not found")

// ErrClosed is returned by reads on a closed archive.
var ErrClosed = errors.New("archive closed")

// Entry is the metadata of a single archive entry.
type Entry struct {
	Name           string
	Size           int64 // uncompressed
	CompressedSize int64
	Modified       time.Time
	CRC32          uint32
	Dir            bool
}

type Reader interface {
	// Names lists every entry name in archive order.
	Names() []string
	// Open streams the bytes of the named entry.
	Open(name string) (io.ReadCloser, error)
	// Stat returns the metadata of the named entry.
	Stat(name string) (Entry, error)
	// IsDir reports whether name is an explicit directory entry.
	IsDir(name string) bool
	io.Closer
}
